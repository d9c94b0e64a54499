package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"octavia/internal/models"
)

// Сообщения для пользователя по ключу "поле.тег"
var messages = map[string]string{
	"email.required":    "Invalid email address",
	"email.email":       "Invalid email address",
	"password.required": "Password is required",
	"password.min":      "Password must be at least 8 characters long",
	"password.hasupper": "Password must contain at least one uppercase letter",
	"password.haslower": "Password must contain at least one lowercase letter",
	"password.hasdigit": "Password must contain at least one number",
	"name.min":          "Name must be at least 2 characters long",
	"name.max":          "Name cannot exceed 50 characters",
}

// Validator проверяет формы входа и регистрации. Один экземпляр
// используется и обработчиками шлюза, и клиентскими формами.
type Validator struct {
	validate *validator.Validate
}

// New создает валидатор с правилами для паролей
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// ошибки адресуются по json-именам полей
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	mustRegister(v, "hasupper", containsAny("ABCDEFGHIJKLMNOPQRSTUVWXYZ"))
	mustRegister(v, "haslower", containsAny("abcdefghijklmnopqrstuvwxyz"))
	mustRegister(v, "hasdigit", containsAny("0123456789"))

	return &Validator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tag, err))
	}
}

func containsAny(chars string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return strings.ContainsAny(fl.Field().String(), chars)
	}
}

// Struct проверяет форму и возвращает ошибки по полям.
// Пустой срез означает, что форма валидна.
func (v *Validator) Struct(form any) ([]models.FieldError, error) {
	err := v.validate.Struct(form)
	if err == nil {
		return nil, nil
	}

	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return nil, fmt.Errorf("validate form: %w", err)
	}

	fields := make([]models.FieldError, 0, len(invalid))
	for _, fe := range invalid {
		fields = append(fields, models.FieldError{
			Field:   fe.Field(),
			Message: message(fe.Field(), fe.Tag()),
		})
	}
	return fields, nil
}

func message(field, tag string) string {
	if msg, ok := messages[field+"."+tag]; ok {
		return msg
	}
	return fmt.Sprintf("Invalid %s", field)
}

var std = New()

// Login проверяет форму входа
func Login(req models.LoginRequest) ([]models.FieldError, error) {
	return std.Struct(req)
}

// Signup проверяет форму регистрации
func Signup(req models.SignupRequest) ([]models.FieldError, error) {
	return std.Struct(req)
}
