package instance

import (
	"os"

	"github.com/smartcart/smartcart-backend/pkg/env"
)

// GetID identifies this process in logs. SMARTCART_INSTANCE_ID wins, then the
// hostname, then "<kind>-0".
func GetID(kind string) string {
	if id := env.Get("SMARTCART_INSTANCE_ID", ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return kind + "-0"
}
