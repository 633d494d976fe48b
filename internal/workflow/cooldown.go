package workflow

import (
	"sync"
	"time"
)

// Cooldowns tracks per-channel cooldown deadlines, used to rate limit
// the notify-team control. Safe for concurrent use
type Cooldowns struct {
	mu        sync.Mutex
	duration  time.Duration
	deadlines map[string]time.Time
	now       func() time.Time
}

func NewCooldowns(duration time.Duration) *Cooldowns {
	return &Cooldowns{
		duration:  duration,
		deadlines: map[string]time.Time{},
		now:       time.Now,
	}
}

// Try attempts to use the control for a channel. On success the cooldown
// is armed and ok is true. While blocked, ok is false and remaining holds
// the wait rounded up to whole minutes, never less than one
func (c *Cooldowns) Try(channelID string) (remaining int, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if deadline, found := c.deadlines[channelID]; found && now.Before(deadline) {
		wait := deadline.Sub(now)
		minutes := int(wait / time.Minute)
		if wait%time.Minute != 0 || minutes == 0 {
			minutes++
		}
		return minutes, false
	}
	c.deadlines[channelID] = now.Add(c.duration)
	return 0, true
}

// Forget drops the deadline for a channel, e.g. when its ticket is deleted
func (c *Cooldowns) Forget(channelID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.deadlines, channelID)
}
