package session

import (
	"context"
	"encoding/json"
	"fmt"
)

const flashKey = "flash"

// Flash levels.
const (
	FlashError   = "error"
	FlashWarning = "warning"
	FlashInfo    = "info"
)

// Flash is a message shown to the user once, on the next page.
type Flash struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// AddFlash queues a flash message.
func (s *Session) AddFlash(ctx context.Context, level, message string) error {
	flashes, err := s.flashes(ctx)
	if err != nil {
		return err
	}

	encoded, err := json.Marshal(append(flashes, Flash{Level: level, Message: message}))
	if err != nil {
		return fmt.Errorf("error in json.Marshal call: %w", err)
	}

	return s.Put(ctx, flashKey, string(encoded))
}

// PopFlashes returns all queued flash messages and removes them from the session.
func (s *Session) PopFlashes(ctx context.Context) ([]Flash, error) {
	flashes, err := s.flashes(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.Forget(ctx, flashKey); err != nil {
		return nil, err
	}

	return flashes, nil
}

func (s *Session) flashes(ctx context.Context) ([]Flash, error) {
	encoded, err := s.Get(ctx, flashKey, "")
	if err != nil || encoded == "" {
		return nil, err
	}

	var flashes []Flash
	if err := json.Unmarshal([]byte(encoded), &flashes); err != nil {
		return nil, fmt.Errorf("error in json.Unmarshal call: %w", err)
	}

	return flashes, nil
}
