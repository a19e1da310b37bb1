package auth

import (
	"testing"

	"github.com/google/uuid"
)

// GetAccessToken is a helper for tests to obtain a signed access token for a
// seeded user without going through a login flow.
func GetAccessToken(t *testing.T, userID uuid.UUID) (string, error) {
	t.Helper()
	return GenerateAccessToken(userID)
}
