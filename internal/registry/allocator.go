package registry

import (
	"crypto/rand"
	"fmt"

	"github.com/mpruett/chatrelay/internal/database"
)

const (
	codeLength   = 6
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Allocator produces room codes that are unoccupied in the store.
type Allocator struct {
	db database.ChatRepository
}

func NewAllocator(db database.ChatRepository) *Allocator {
	return &Allocator{db: db}
}

// Allocate draws random codes until one is free. There is no retry
// cap: with 36^6 possible codes, repeated collisions are not an
// observable condition under normal load. Store errors abort the
// loop.
func (a *Allocator) Allocate() (string, error) {
	for {
		code, err := randomCode()
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}

		exists, err := a.db.RoomExists(code)
		if err != nil {
			return "", fmt.Errorf("check code %q: %w", code, err)
		}

		if !exists {
			return code, nil
		}
	}
}

func randomCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	for i := range buf {
		buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}

	return string(buf), nil
}
