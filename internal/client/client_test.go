package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"octavia/internal/models"
	"octavia/internal/session"
)

// gatewayStub имитирует /api/auth/* шлюза
func gatewayStub(t *testing.T, release <-chan struct{}) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if release != nil {
			<-release
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/auth/login":
			var req models.LoginRequest
			json.NewDecoder(r.Body).Decode(&req)
			if req.Password != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"Invalid email or password"}`))
				return
			}
			http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "abc123", Path: "/"})
			w.Write([]byte(`{"success":true,"user":{"id":"u1","email":"user@example.com"},"redirect":"/dashboard"}`))
		case "/api/auth/signup":
			w.Write([]byte(`{"success":true,"user":{"id":"u2"},"redirect":"/dashboard"}`))
		case "/api/auth/logout":
			if session.FromRequest(r) == "" {
				t.Error("logout without session cookie")
			}
			http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "", Path: "/", MaxAge: -1})
			w.Write([]byte(`{"success":true,"redirect":"/"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestLoginFormSuccess(t *testing.T) {
	srv, _ := gatewayStub(t, nil)
	g, err := NewGateway(srv.URL)
	if err != nil {
		t.Fatal(err)
	}

	var redirected string
	form := NewLoginForm(g)
	form.RedirectDelay = 10 * time.Millisecond
	form.OnRedirect = func(target string) { redirected = target }
	form.SetValues(Values{Email: "user@example.com", Password: "secret"})

	if err := form.Submit(context.Background()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	st := form.State()
	if st.IsLoading || st.Error != "" || st.Success == "" {
		t.Errorf("state = %+v", st)
	}
	if form.Values() != (Values{}) {
		t.Errorf("values not reset: %+v", form.Values())
	}
	if redirected != "/dashboard" {
		t.Errorf("redirected to %q", redirected)
	}
	if g.SessionToken() != "abc123" {
		t.Errorf("session token = %q", g.SessionToken())
	}

	resp, err := g.Logout(context.Background())
	if err != nil || !resp.Success || resp.Redirect != "/" {
		t.Errorf("Logout() = %+v, %v", resp, err)
	}
	if g.SessionToken() != "" {
		t.Error("session cookie not cleared after logout")
	}
}

func TestLoginFormBackendError(t *testing.T) {
	srv, _ := gatewayStub(t, nil)
	g, _ := NewGateway(srv.URL)

	form := NewLoginForm(g)
	form.SetValues(Values{Email: "user@example.com", Password: "wrong"})

	err := form.Submit(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("Submit() error = %v, want 401 APIError", err)
	}
	if st := form.State(); st.Error != "Invalid email or password" || st.IsLoading || st.Success != "" {
		t.Errorf("state = %+v", st)
	}
	if form.Values().Password != "wrong" {
		t.Error("values must be kept on failure")
	}
}

func TestFormValidatesLocally(t *testing.T) {
	srv, calls := gatewayStub(t, nil)
	g, _ := NewGateway(srv.URL)

	form := NewSignupForm(g)
	form.SetValues(Values{Email: "user@example.com", Password: "alllowercase1", Name: "Ada"})

	err := form.Submit(context.Background())
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Submit() error = %v, want ValidationError", err)
	}
	if verr.Fields[0].Field != "password" {
		t.Errorf("fields = %+v", verr.Fields)
	}
	if calls.Load() != 0 {
		t.Errorf("gateway called %d times for an invalid form", calls.Load())
	}
}

func TestFormRejectsConcurrentSubmit(t *testing.T) {
	release := make(chan struct{})
	srv, calls := gatewayStub(t, release)
	g, _ := NewGateway(srv.URL)

	form := NewSignupForm(g)
	form.SetValues(Values{Email: "user@example.com", Password: "Secret123", Name: "Ada"})

	done := make(chan error, 1)
	go func() { done <- form.Submit(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for !form.State().IsLoading {
		if time.Now().After(deadline) {
			t.Fatal("first submission never started")
		}
		time.Sleep(time.Millisecond)
	}

	if err := form.Submit(context.Background()); !errors.Is(err, ErrSubmitInFlight) {
		t.Errorf("second Submit() error = %v, want ErrSubmitInFlight", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("gateway calls = %d, want 1", calls.Load())
	}
}

func TestRedirectCancelled(t *testing.T) {
	srv, _ := gatewayStub(t, nil)
	g, _ := NewGateway(srv.URL)

	form := NewLoginForm(g)
	form.RedirectDelay = time.Hour
	form.OnRedirect = func(string) { t.Error("redirect should not happen after cancel") }
	form.SetValues(Values{Email: "user@example.com", Password: "secret"})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for form.State().Success == "" {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()

	if err := form.Submit(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Submit() error = %v, want context.Canceled", err)
	}
}

func TestAPIClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/me":
			if session.FromRequest(r) != "tok" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"message":"No session cookie found"}`))
				return
			}
			w.Write([]byte(`{"id":"u1","email":"user@example.com"}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	var user models.User
	if err := NewAPIClient(srv.URL+"/", "tok").Do(context.Background(), http.MethodGet, "/api/v1/auth/me", nil, &user); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if user["id"] != "u1" {
		t.Errorf("user = %+v", user)
	}

	err := NewAPIClient(srv.URL, "").Do(context.Background(), http.MethodGet, "/api/v1/auth/me", nil, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "No session cookie found" {
		t.Errorf("Do() error = %v, want backend message", err)
	}

	err = NewAPIClient(srv.URL, "tok").Do(context.Background(), http.MethodGet, "/other", nil, nil)
	if !errors.As(err, &apiErr) || apiErr.Message != "Bad Gateway" {
		t.Errorf("Do() error = %v, want status text", err)
	}
}
