package testutil

import (
	"fmt"
	"sync"
)

// SequentialTokens generates predictable operation tokens
// ("op-0001", "op-0002", ...) so log and marker assertions are stable.
type SequentialTokens struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialTokens creates a generator. An empty prefix defaults to "op".
func NewSequentialTokens(prefix string) *SequentialTokens {
	if prefix == "" {
		prefix = "op"
	}
	return &SequentialTokens{prefix: prefix}
}

// Next returns the next token.
func (g *SequentialTokens) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
