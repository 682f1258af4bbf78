package validators

import (
	"net/http"
	"strings"
)

const accessTokenQueryParam = "access_token"

// BearerToken returns the access token of r, or "" when none was sent.
// Websocket clients that cannot set headers pass it as access_token.
func BearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return strings.TrimSpace(r.URL.Query().Get(accessTokenQueryParam))
	}
	if len(raw) >= 7 && strings.EqualFold(raw[:7], "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}
