// Package idgen produces millisecond-epoch string identifiers compatible with
// the ids patron clients already carry. Ids generated inside the same
// millisecond get a counter suffix so they never collide within a process.
package idgen

import (
	"strconv"
	"sync"
	"time"
)

// Generator hands out unique, time-ordered string ids.
type Generator struct {
	mu      sync.Mutex
	now     func() time.Time
	lastMS  int64
	counter int
}

// New builds a Generator using the wall clock.
func New() *Generator {
	return NewWithClock(time.Now)
}

// NewWithClock builds a Generator with an injectable clock for tests.
func NewWithClock(now func() time.Time) *Generator {
	return &Generator{now: now}
}

// Next returns the next id. The base is the current unix millisecond; when two
// calls land in the same millisecond the second and later ids get a "-n"
// suffix, keeping lexical grouping while guaranteeing uniqueness.
func (g *Generator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms == g.lastMS {
		g.counter++
		return strconv.FormatInt(ms, 10) + "-" + strconv.Itoa(g.counter)
	}
	g.lastMS = ms
	g.counter = 0
	return strconv.FormatInt(ms, 10)
}
