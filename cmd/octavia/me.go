package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"octavia/internal/backend"
	"octavia/internal/client"
	"octavia/internal/config"
	"octavia/internal/models"
)

func meCmd() *cobra.Command {
	var (
		baseURL string
		token   string
	)

	cmd := &cobra.Command{
		Use:   "me",
		Short: "Print the current user straight from the backend API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if baseURL == "" {
				config.LoadEnvFiles()
				cfg, err := config.FromEnv()
				if err != nil {
					return err
				}
				baseURL = cfg.PublicBackendURL
				if baseURL == "" {
					baseURL = cfg.BackendURL
				}
			}
			if baseURL == "" {
				return errors.New("NEXT_PUBLIC_BACKEND_URL is not set, pass --backend")
			}
			if token == "" {
				token = os.Getenv("OCTAVIA_SESSION")
			}

			user, err := fetchMe(cmd.Context(), baseURL, token)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(user)
		},
	}

	cmd.Flags().StringVar(&baseURL, "backend", "", "backend base URL (default $NEXT_PUBLIC_BACKEND_URL)")
	cmd.Flags().StringVarP(&token, "session", "s", "", "session token (or OCTAVIA_SESSION)")

	return cmd
}

// fetchMe запрашивает текущего пользователя по токену сессии
func fetchMe(ctx context.Context, baseURL, token string) (models.User, error) {
	var user models.User
	if err := client.NewAPIClient(baseURL, token).Do(ctx, http.MethodGet, backend.MePath, nil, &user); err != nil {
		return nil, fmt.Errorf("fetch current user: %w", err)
	}
	return user, nil
}
