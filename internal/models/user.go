package models

// User - данные пользователя, которые бэкенд возвращает при входе и регистрации.
// Набор полей определяет бэкенд, шлюз передает их клиенту без изменений.
type User map[string]any

// LoginRequest представляет запрос на вход в систему
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest представляет запрос на регистрацию
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=8,hasupper,haslower,hasdigit"`
	Name     string `json:"name" validate:"min=2,max=50"`
}

// AuthResponse - ответ шлюза после успешного входа, регистрации или выхода
type AuthResponse struct {
	Success  bool   `json:"success"`
	User     User   `json:"user,omitempty"`
	Redirect string `json:"redirect"`
}
