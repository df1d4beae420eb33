package storage

import (
	"encoding/json"
	"strings"
	"sync"
)

// MemoryGateway keeps slots in process memory. It backs tests and the
// ephemeral mode of the CLI.
type MemoryGateway struct {
	mu    sync.RWMutex
	slots map[string]string
}

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{slots: map[string]string{}}
}

func (g *MemoryGateway) Get(key string, out any) bool {
	g.mu.RLock()
	raw, ok := g.slots[key]
	g.mu.RUnlock()
	if !ok {
		return false
	}
	return decodeSlot(raw, out)
}

func (g *MemoryGateway) Set(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	g.mu.Lock()
	g.slots[key] = string(b)
	g.mu.Unlock()
	return nil
}

// decodeSlot treats blank and explicit-null content as absent, and corrupt
// content as absent rather than an error.
func decodeSlot(raw string, out any) bool {
	s := strings.TrimSpace(raw)
	if s == "" || s == "null" {
		return false
	}
	return json.Unmarshal([]byte(s), out) == nil
}
