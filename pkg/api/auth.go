package api

// RegisterRequest представляет запрос на регистрацию нового пользователя
type RegisterRequest struct {
	Name     string `json:"name"`           // отображаемое имя
	Email    string `json:"email"`          // email, используется как логин
	Password string `json:"password"`       // пароль в открытом виде (только по TLS)
	Role     string `json:"role,omitempty"` // USER или MANAGER; пусто означает USER
}

// AuthenticateRequest представляет запрос на аутентификацию
type AuthenticateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse представляет ответ с токенами доступа
type TokenResponse struct {
	AccessToken  string `json:"access_token"`         // JWT access token
	RefreshToken string `json:"refresh_token"`        // JWT refresh token
	TokenType    string `json:"token_type,omitempty"` // всегда BEARER
	ExpiresIn    int64  `json:"expires_in,omitempty"` // время жизни access token в секундах
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
