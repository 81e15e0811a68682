package common

import (
	"github.com/google/uuid"
)

// NewRevisionID generates a unique revision ID with the "rev_" prefix
// Format: rev_<uuid>
func NewRevisionID() string {
	return "rev_" + uuid.New().String()
}
