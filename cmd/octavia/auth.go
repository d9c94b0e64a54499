package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"octavia/internal/client"
	"octavia/internal/config"
)

// gatewayFlags - общие флаги команд, которые обращаются к запущенному шлюзу
type gatewayFlags struct {
	url string
}

func (f *gatewayFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "gateway", "", "gateway base URL (default http://localhost:$PORT)")
}

func (f *gatewayFlags) gateway() (*client.Gateway, error) {
	url := f.url
	if url == "" {
		config.LoadEnvFiles()
		cfg, err := config.FromEnv()
		if err != nil {
			return nil, err
		}
		url = "http://localhost:" + cfg.Port
	}
	return client.NewGateway(url)
}

func loginCmd() *cobra.Command {
	var (
		gf       gatewayFlags
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in through the gateway and print the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := gf.gateway()
			if err != nil {
				return err
			}
			return submitForm(cmd.Context(), client.NewLoginForm(g), g, client.Values{
				Email:    email,
				Password: passwordOrEnv(password),
			})
		},
	}

	gf.register(cmd)
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (or OCTAVIA_PASSWORD)")

	return cmd
}

func signupCmd() *cobra.Command {
	var (
		gf       gatewayFlags
		email    string
		password string
		name     string
	)

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account through the gateway and print the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := gf.gateway()
			if err != nil {
				return err
			}
			return submitForm(cmd.Context(), client.NewSignupForm(g), g, client.Values{
				Email:    email,
				Password: passwordOrEnv(password),
				Name:     name,
			})
		},
	}

	gf.register(cmd)
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (or OCTAVIA_PASSWORD)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name")

	return cmd
}

func logoutCmd() *cobra.Command {
	var (
		gf    gatewayFlags
		token string
	)

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "End a session through the gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := gf.gateway()
			if err != nil {
				return err
			}
			if token == "" {
				token = os.Getenv("OCTAVIA_SESSION")
			}
			if token != "" {
				g.SetSessionToken(token)
			}
			resp, err := g.Logout(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Signed out, redirect to %s\n", resp.Redirect)
			return nil
		},
	}

	gf.register(cmd)
	cmd.Flags().StringVarP(&token, "session", "s", "", "session token (or OCTAVIA_SESSION)")

	return cmd
}

func passwordOrEnv(p string) string {
	if p == "" {
		return os.Getenv("OCTAVIA_PASSWORD")
	}
	return p
}

func submitForm(ctx context.Context, form *client.Form, g *client.Gateway, v client.Values) error {
	form.RedirectDelay = 0
	form.OnRedirect = func(target string) {
		fmt.Printf("Redirect to %s\n", target)
	}
	form.SetValues(v)

	if err := form.Submit(ctx); err != nil {
		var verr *client.ValidationError
		if errors.As(err, &verr) {
			for _, fe := range verr.Fields {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", fe.Field, fe.Message)
			}
		}
		return err
	}

	fmt.Println(form.State().Success)
	if token := g.SessionToken(); token != "" {
		fmt.Printf("Session: %s\n", token)
	}
	return nil
}
