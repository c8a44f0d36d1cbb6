package api

// UserResponse профиль текущего пользователя
type UserResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// MessageResponse ответ демонстрационных ресурсов
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse ответ проверки состояния
type HealthResponse struct {
	Status string `json:"status"`
}
