package utils

import "github.com/google/uuid"

// GenerateID returns a random UUID v4 string, used as the jti claim on
// issued session tokens. Returns "" if the system entropy source fails.
func GenerateID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return ""
	}
	return id.String()
}
