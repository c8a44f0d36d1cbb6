package models

import "time"

// TokenType тип выданного токена
const TokenType = "BEARER"

// TokenRecord хранит состояние пары access/refresh токенов.
// Флаги записи являются единственным источником истины об отзыве:
// подписанный срок действия токена необходим, но не достаточен.
// Записи не удаляются, а только помечаются.
type TokenRecord struct {
	CreatedAt      time.Time `json:"created_at"`      // время выпуска
	ID             string    `json:"id"`              // UUID записи
	UserID         string    `json:"user_id"`         // владелец пары
	AccessToken    string    `json:"access_token"`    // подписанный access token
	RefreshToken   string    `json:"refresh_token"`   // подписанный refresh token
	TokenType      string    `json:"token_type"`      // всегда BEARER
	Expired        bool      `json:"expired"`         // access token просрочен принудительно
	Revoked        bool      `json:"revoked"`         // access token отозван
	RefreshRevoked bool      `json:"refresh_revoked"` // refresh token уже использован или отозван
}

// Active сообщает, может ли access token этой записи пройти проверку
func (r *TokenRecord) Active() bool {
	return !r.Expired && !r.Revoked
}
