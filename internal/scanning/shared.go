package scanning

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var errRecognizerClosed = errors.New("recognizer closed")

// Shared builds a recognizer on first use and hands the same instance to
// every caller afterwards. A failed construction is remembered and returned
// on every call. Once closed, it rejects every call.
type Shared struct {
	build func() (Recognizer, error)

	mu         sync.RWMutex
	built      bool
	closed     bool
	recognizer Recognizer
	err        error
}

// NewShared returns a Shared that will call build at most once
func NewShared(build func() (Recognizer, error)) *Shared {
	return &Shared{build: build}
}

func (s *Shared) ensureBuilt() {
	s.mu.RLock()
	done := s.built || s.closed
	s.mu.RUnlock()
	if done {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.built || s.closed {
		return
	}
	s.built = true
	s.recognizer, s.err = s.build()
	if s.err != nil {
		s.err = fmt.Errorf("initializing recognizer: %w", s.err)
	}
}

// Recognize initializes the underlying recognizer if needed and delegates to it.
// Close waits for in-flight calls.
func (s *Shared) Recognize(ctx context.Context, imageData []byte, contentType string) ([]string, error) {
	s.ensureBuilt()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errRecognizerClosed
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.recognizer.Recognize(ctx, imageData, contentType)
}

// Close closes the underlying recognizer if it was ever built. Closing twice
// is a no-op.
func (s *Shared) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.recognizer == nil {
		return nil
	}
	return s.recognizer.Close()
}
