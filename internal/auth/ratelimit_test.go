package auth

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoginLimiterWindow(t *testing.T) {
	l := NewLoginLimiter(time.Minute, 3, 100)
	now := time.Now()

	assert.True(t, l.Allow("1.2.3.4|a@example.com", now))
	assert.True(t, l.Allow("1.2.3.4|a@example.com", now.Add(time.Second)))
	assert.True(t, l.Allow("1.2.3.4|a@example.com", now.Add(2*time.Second)))
	assert.False(t, l.Allow("1.2.3.4|a@example.com", now.Add(3*time.Second)))

	// Separate key is unaffected.
	assert.True(t, l.Allow("5.6.7.8|a@example.com", now.Add(3*time.Second)))

	// Window slides: the earliest attempts expire.
	assert.True(t, l.Allow("1.2.3.4|a@example.com", now.Add(62*time.Second)))
}

func TestLoginLimiterBounded(t *testing.T) {
	l := NewLoginLimiter(time.Minute, 3, 10)
	now := time.Now()

	for i := 0; i < 50; i++ {
		l.Allow(fmt.Sprintf("key-%d", i), now)
	}

	// Past the cap only keys with live windows survive the sweep.
	later := now.Add(2 * time.Minute)
	assert.True(t, l.Allow("fresh", later))
	l.mu.Lock()
	size := len(l.attempts)
	l.mu.Unlock()
	assert.LessOrEqual(t, size, 11)
}
