// Package throttle limits repeated failed logins for the same client and
// account.
package throttle

import (
	"context"
	"encoding/binary"
	"strconv"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/cespare/xxhash/v2"
)

// entry layout: 8 bytes window start (unix nanos), 4 bytes failure count.
const entrySize = 12

// LoginThrottle counts failures per (client, email) pair inside a fixed
// window that opens with the first failure.
type LoginThrottle struct {
	mu     sync.Mutex
	cache  *bigcache.BigCache
	max    int
	window time.Duration
	now    func() time.Time
}

// New returns a throttle that refuses logins after maxAttempts failures
// within window. A non-positive maxAttempts disables throttling.
func New(ctx context.Context, maxAttempts int, window time.Duration) (*LoginThrottle, error) {
	if window <= 0 {
		window = time.Minute
	}
	cfg := bigcache.DefaultConfig(window)
	cfg.CleanWindow = max(window, time.Second)
	cfg.Shards = 64
	cfg.Verbose = false

	cache, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &LoginThrottle{cache: cache, max: maxAttempts, window: window, now: time.Now}, nil
}

func key(client, email string) string {
	return strconv.FormatUint(xxhash.Sum64String(client+"\x00"+email), 16)
}

// load returns the live failure count and window start for k.
func (t *LoginThrottle) load(k string) (int, time.Time) {
	buf, err := t.cache.Get(k)
	if err != nil || len(buf) != entrySize {
		return 0, time.Time{}
	}
	start := time.Unix(0, int64(binary.BigEndian.Uint64(buf[:8])))
	if t.now().Sub(start) >= t.window {
		return 0, time.Time{}
	}
	return int(binary.BigEndian.Uint32(buf[8:])), start
}

// Allowed reports whether another login attempt may be made.
func (t *LoginThrottle) Allowed(client, email string) bool {
	if t == nil || t.max <= 0 {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	n, _ := t.load(key(client, email))
	return n < t.max
}

// Fail records a failed attempt.
func (t *LoginThrottle) Fail(client, email string) {
	if t == nil || t.max <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	k := key(client, email)
	n, start := t.load(k)
	if n == 0 {
		start = t.now()
	}

	buf := make([]byte, entrySize)
	binary.BigEndian.PutUint64(buf[:8], uint64(start.UnixNano()))
	binary.BigEndian.PutUint32(buf[8:], uint32(n+1))
	_ = t.cache.Set(k, buf)
}

// Reset forgets the failures of the pair, typically after a successful login.
func (t *LoginThrottle) Reset(client, email string) {
	if t == nil || t.max <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_ = t.cache.Delete(key(client, email))
}

func (t *LoginThrottle) Close() error {
	if t == nil {
		return nil
	}
	return t.cache.Close()
}
