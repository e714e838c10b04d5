package models

import "github.com/google/uuid"

// NewID issues a time-ordered UUIDv7 so that id is a usable tiebreak after created_at.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// IsID reports whether s looks like an identifier issued by NewID.
func IsID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func ensureID(id *string) {
	if *id == "" {
		*id = NewID()
	}
}
