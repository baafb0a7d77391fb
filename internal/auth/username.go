package auth

import (
	"strings"

	"github.com/google/uuid"
)

const usernamePrefix = "user-"

// GenerateUsername returns a random system-assigned username such as
// "user-3f9c01ab7d42". Collisions are improbable but the registration
// flow still retries once against the unique index.
func GenerateUsername() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
	return usernamePrefix + suffix[:12]
}
