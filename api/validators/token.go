package validators

import "strings"

// BearerToken extracts the credential from an Authorization header value.
func BearerToken(header string) string {
	token := strings.TrimSpace(header)
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return ""
}
