package auth

import "strings"

const bearerPrefix = "Bearer "

// BearerToken извлекает токен из значения заголовка Authorization.
// Возвращает false, если заголовок пустой, без префикса "Bearer " или токен пустой.
func BearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
