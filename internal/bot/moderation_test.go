package bot

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JelacicBan/OlujaBot/internal/store"
)

func TestAutoUnmuteWritesSingleAutoRecord(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	b := &Bot{store: st}
	b.recordAutoUnmute(&discordgo.User{ID: "1001", Username: "Marko"})

	entries, err := st.ModerationLogs("1001")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, store.ACTION_UNMUTE_AUTO, entries[0].Action)
	assert.Equal(t, "System", entries[0].HandledBy)
}

func TestHasRole(t *testing.T) {
	member := &discordgo.Member{Roles: []string{"r1", "r2"}}
	assert.True(t, hasRole(member, "r2"))
	assert.False(t, hasRole(member, "r3"))
	assert.False(t, hasRole(nil, "r1"))
}
