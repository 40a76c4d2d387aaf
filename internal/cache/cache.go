// Package cache keeps each user's rendered check-in statistics so repeated
// reads skip the store. The writer picks an absolute deadline per entry and a
// new check-in drops the entry early.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"github.com/zeebo/xxh3"

	"github.com/silema/silema/internal/clock"
)

// MaxStatsAge bounds how long statistics are served from memory.
const MaxStatsAge = 5 * time.Minute

const sweepInterval = 5 * time.Minute

// Entry is one user's statistics body and its validator.
type Entry struct {
	Data      []byte
	ETag      string
	ExpiresAt time.Time
}

// Stats is what the cache health endpoint reports.
type Stats struct {
	Enabled bool `json:"enabled"`
	Entries int  `json:"entries"`
	Expired int  `json:"expired"`
}

// Cache maps user IDs to entries. A disabled cache stores nothing but still
// computes ETags.
type Cache struct {
	entries *xsync.Map[int64, Entry]
	enabled bool
	clock   clock.Clock
}

// New creates a Cache. A nil clock means the system clock.
func New(enabled bool, clk clock.Clock) *Cache {
	if clk == nil {
		clk = clock.System{}
	}
	return &Cache{
		entries: xsync.NewMap[int64, Entry](),
		enabled: enabled,
		clock:   clk,
	}
}

// Get returns the user's entry unless it is missing or past its deadline.
func (c *Cache) Get(userID int64) (Entry, bool) {
	if !c.enabled {
		return Entry{}, false
	}
	e, ok := c.entries.Load(userID)
	if !ok || !c.clock.Now().Before(e.ExpiresAt) {
		return Entry{}, false
	}
	return e, true
}

// Put stores data for the user until expiresAt.
func (c *Cache) Put(userID int64, data []byte, expiresAt time.Time) Entry {
	e := Entry{Data: data, ETag: ETag(data), ExpiresAt: expiresAt}
	if c.enabled {
		c.entries.Store(userID, e)
	}
	return e
}

// Drop forgets the user's entry.
func (c *Cache) Drop(userID int64) {
	c.entries.Delete(userID)
}

// MaxAge is how many whole seconds a client may reuse e.
func (c *Cache) MaxAge(e Entry) int {
	left := e.ExpiresAt.Sub(c.clock.Now())
	if left <= 0 {
		return 0
	}
	return int(left / time.Second)
}

func (c *Cache) Stats() Stats {
	st := Stats{Enabled: c.enabled}
	now := c.clock.Now()
	c.entries.Range(func(_ int64, e Entry) bool {
		st.Entries++
		if !now.Before(e.ExpiresAt) {
			st.Expired++
		}
		return true
	})
	return st
}

// Run sweeps expired entries until ctx is cancelled.
func (c *Cache) Run(ctx context.Context) {
	if !c.enabled {
		return
	}
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-ctx.Done():
			return
		}
	}
}

func (c *Cache) sweep() {
	now := c.clock.Now()
	c.entries.Range(func(id int64, e Entry) bool {
		if !now.Before(e.ExpiresAt) {
			c.entries.Delete(id)
		}
		return true
	})
}

// ETag returns a weak validator for data.
func ETag(data []byte) string {
	return fmt.Sprintf(`W/"%016x"`, xxh3.Hash(data))
}

// Matches reports whether an If-None-Match header value names etag. The
// header may list several validators; weak comparison applies.
func Matches(ifNoneMatch, etag string) bool {
	for _, v := range strings.Split(ifNoneMatch, ",") {
		switch v = strings.TrimSpace(v); {
		case v == "":
		case v == "*", weak(v) == weak(etag):
			return true
		}
	}
	return false
}

func weak(tag string) string {
	return strings.TrimPrefix(tag, "W/")
}
