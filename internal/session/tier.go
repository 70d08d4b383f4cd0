package session

import (
	"sync"

	"golang.org/x/oauth2"
)

// MemoryTier is the ephemeral durability tier: the token pair lives for
// the process lifetime only.
type MemoryTier struct {
	mu  sync.Mutex
	tok *oauth2.Token
}

// NewMemoryTier creates an empty ephemeral tier.
func NewMemoryTier() *MemoryTier {
	return &MemoryTier{}
}

func (t *MemoryTier) Read() (*oauth2.Token, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tok == nil {
		return nil, nil
	}
	cp := *t.tok
	return &cp, nil
}

func (t *MemoryTier) Write(tok *oauth2.Token) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	cp := *tok
	t.tok = &cp
	return nil
}

func (t *MemoryTier) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tok = nil
	return nil
}
