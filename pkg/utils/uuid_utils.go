package utils

import "github.com/google/uuid"

// GenerateUUIDv7 returns a time-ordered id. Settlement requests, transfers
// and alerts all sort by creation time, so v7 keeps index pages hot.
func GenerateUUIDv7() uuid.UUID {
	if id, err := uuid.NewV7(); err == nil {
		return id
	}
	return uuid.New()
}
