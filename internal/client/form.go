package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"octavia/internal/models"
	"octavia/internal/validation"
)

// DefaultRedirectDelay - пауза перед переходом после успешной отправки
const DefaultRedirectDelay = time.Second

var ErrSubmitInFlight = errors.New("form submission already in progress")

// Kind - тип формы
type Kind int

const (
	LoginForm Kind = iota
	SignupForm
)

// Values - поля формы
type Values struct {
	Email    string
	Password string
	Name     string
}

// State - состояние формы, которое видит пользователь
type State struct {
	IsLoading bool
	Error     string
	Success   string
}

// ValidationError - форма не прошла локальную проверку
type ValidationError struct {
	Fields []models.FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return e.Fields[0].Message
}

// Form - клиентская форма входа или регистрации. Одновременно может
// выполняться только одна отправка.
type Form struct {
	kind    Kind
	gateway *Gateway

	// RedirectDelay - пауза перед вызовом OnRedirect
	RedirectDelay time.Duration
	// OnRedirect получает адрес перехода после успешной отправки
	OnRedirect func(target string)

	mu     sync.Mutex
	values Values
	state  State
}

func NewLoginForm(g *Gateway) *Form {
	return &Form{kind: LoginForm, gateway: g, RedirectDelay: DefaultRedirectDelay}
}

func NewSignupForm(g *Gateway) *Form {
	return &Form{kind: SignupForm, gateway: g, RedirectDelay: DefaultRedirectDelay}
}

// SetValues заполняет поля формы
func (f *Form) SetValues(v Values) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = v
}

func (f *Form) Values() Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Submit проверяет поля той же схемой, что и шлюз, и отправляет форму.
// Пока предыдущая отправка не завершилась, возвращает ErrSubmitInFlight.
// После успеха поля очищаются, а через RedirectDelay вызывается OnRedirect.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.state.IsLoading {
		f.mu.Unlock()
		return ErrSubmitInFlight
	}
	f.state = State{IsLoading: true}
	values := f.values
	f.mu.Unlock()

	resp, err := f.send(ctx, values)

	f.mu.Lock()
	f.state.IsLoading = false
	if err != nil {
		f.state.Error = err.Error()
		f.mu.Unlock()
		return err
	}
	f.state.Success = f.successMessage()
	f.values = Values{}
	f.mu.Unlock()

	target := resp.Redirect
	if target == "" {
		target = "/dashboard"
	}
	return f.redirect(ctx, target)
}

func (f *Form) send(ctx context.Context, v Values) (*models.AuthResponse, error) {
	switch f.kind {
	case SignupForm:
		req := models.SignupRequest{Email: v.Email, Password: v.Password, Name: v.Name}
		if err := checkFields(validation.Signup(req)); err != nil {
			return nil, err
		}
		return f.gateway.Signup(ctx, req)
	default:
		req := models.LoginRequest{Email: v.Email, Password: v.Password}
		if err := checkFields(validation.Login(req)); err != nil {
			return nil, err
		}
		return f.gateway.Login(ctx, req)
	}
}

func checkFields(fields []models.FieldError, err error) error {
	if err != nil {
		return err
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (f *Form) successMessage() string {
	if f.kind == SignupForm {
		return "Account created! Redirecting to dashboard..."
	}
	return "Successfully signed in! Redirecting to dashboard..."
}

func (f *Form) redirect(ctx context.Context, target string) error {
	if f.OnRedirect == nil {
		return nil
	}
	if f.RedirectDelay > 0 {
		timer := time.NewTimer(f.RedirectDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	f.OnRedirect(target)
	return nil
}
