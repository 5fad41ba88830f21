package instance

import (
	"os"

	"github.com/angelmondragon/backoffice/pkg/env"
)

// GetID names the running process for logs: the platform dyno, then the host
// name, then "local".
func GetID() string {
	if id := env.Get("DYNO", ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
