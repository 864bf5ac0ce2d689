package logging

import (
	"log/slog"
	"sync"
)

// MatchContext tracks which match and round is in progress so every log
// record can be tagged with them. Use Attrs as a ContextProvider.
type MatchContext struct {
	mu      sync.RWMutex
	matchID string
	mode    string
	round   int
}

// NewMatchContext starts at round 0.
func NewMatchContext(matchID, mode string) *MatchContext {
	return &MatchContext{matchID: matchID, mode: mode}
}

// SetRound records the round currently being played.
func (c *MatchContext) SetRound(round int) {
	c.mu.Lock()
	c.round = round
	c.mu.Unlock()
}

// MatchID returns the id the context was created with.
func (c *MatchContext) MatchID() string {
	return c.matchID
}

// Attrs returns the current match attributes.
func (c *MatchContext) Attrs() []slog.Attr {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return []slog.Attr{
		slog.String("match", c.matchID),
		slog.String("mode", c.mode),
		slog.Int("round", c.round),
	}
}
