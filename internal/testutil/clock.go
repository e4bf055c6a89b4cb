package testutil

import (
	"fmt"
	"sync"
	"time"
)

var sessionStart = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

// StubClock is a settable clock. With a non-zero step every reading moves it
// forward by step, so consecutive writes get distinct timestamps.
type StubClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewStubClock creates a StubClock at start that moves step per reading.
func NewStubClock(start time.Time, step time.Duration) *StubClock {
	return &StubClock{now: start, step: step}
}

// FixedClock returns a clock stopped at 2025-03-01 09:00:00 UTC.
func FixedClock() *StubClock {
	return NewStubClock(sessionStart, 0)
}

// TickingClock returns a clock starting at 2025-03-01 09:00:00 UTC that
// advances one second per reading.
func TickingClock() *StubClock {
	return NewStubClock(sessionStart, time.Second)
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Advance moves the clock forward by d.
func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// StubIDGenerator hands out "id-1", "id-2", ... and remembers them.
// One generator serves every table, so keys never collide across tables.
type StubIDGenerator struct {
	mu     sync.Mutex
	issued []string
}

func NewStubIDGenerator() *StubIDGenerator {
	return &StubIDGenerator{}
}

func (g *StubIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := fmt.Sprintf("id-%d", len(g.issued)+1)
	g.issued = append(g.issued, id)
	return id
}

// Issued returns every ID handed out so far, oldest first.
func (g *StubIDGenerator) Issued() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.issued...)
}
