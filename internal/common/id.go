package common

import (
	"github.com/google/uuid"
)

// NewRunID generates a unique catalog rebuild ID with the "rebuild_" prefix
// Format: rebuild_<uuid>
func NewRunID() string {
	return "rebuild_" + uuid.New().String()
}
