package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCooldownArmsOnFirstUse(t *testing.T) {
	cooldowns := NewCooldowns(15 * time.Minute)
	remaining, ok := cooldowns.Try("channel")
	assert.True(t, ok)
	assert.Zero(t, remaining)
}

func TestCooldownBlocksAndRoundsUp(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	cooldowns := NewCooldowns(15 * time.Minute)
	cooldowns.now = func() time.Time { return now }

	_, ok := cooldowns.Try("channel")
	assert.True(t, ok)

	// 30 seconds in: 14.5 minutes left, reported as 15
	now = now.Add(30 * time.Second)
	remaining, ok := cooldowns.Try("channel")
	assert.False(t, ok)
	assert.Equal(t, 15, remaining)

	// just before expiry the wait is still reported as one minute
	now = now.Add(14*time.Minute + 29*time.Second)
	remaining, ok = cooldowns.Try("channel")
	assert.False(t, ok)
	assert.Equal(t, 1, remaining)

	// after expiry the control re-arms
	now = now.Add(2 * time.Second)
	_, ok = cooldowns.Try("channel")
	assert.True(t, ok)
}

func TestCooldownIsPerChannel(t *testing.T) {
	cooldowns := NewCooldowns(15 * time.Minute)
	_, ok := cooldowns.Try("a")
	assert.True(t, ok)
	_, ok = cooldowns.Try("b")
	assert.True(t, ok)
	_, ok = cooldowns.Try("a")
	assert.False(t, ok)
}

func TestForgetClearsDeadline(t *testing.T) {
	cooldowns := NewCooldowns(15 * time.Minute)
	cooldowns.Try("channel")
	cooldowns.Forget("channel")
	_, ok := cooldowns.Try("channel")
	assert.True(t, ok)
}
