package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JelacicBan/OlujaBot/internal/operr"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestApplicationsRoundTrip(t *testing.T) {
	st := openTestStore(t)

	require.NoError(t, st.AddApplication(Application{
		ApplicantName: "Marko",
		ApplicantID:   "1001",
		ApplyType:     "Mitglieder-Bewerbung",
		PlayerTag:     "#LJC8V0GCJ",
		Strategies:    "QC Lalo",
		TownhallLevel: "TH15",
		Status:        STATUS_ACCEPTED,
		HandledBy:     "Admin",
	}))
	require.NoError(t, st.AddApplication(Application{
		ApplicantName: "Iva",
		ApplicantID:   "1002",
		ApplyType:     "Mitglieder-Bewerbung",
		Status:        STATUS_DENIED,
		Reason:        "TH zu niedrig",
		HandledBy:     "Admin",
	}))

	all, err := st.Applications("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	accepted, err := st.Applications(STATUS_ACCEPTED)
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, "Marko", accepted[0].ApplicantName)
	assert.Equal(t, "#LJC8V0GCJ", accepted[0].PlayerTag)
	assert.False(t, accepted[0].Date.IsZero())
}

func TestModerationLogs(t *testing.T) {
	st := openTestStore(t)

	require.NoError(t, st.AddModerationLog(ModerationLog{
		UserID:    "1001",
		UserName:  "Marko",
		Action:    ACTION_MUTE,
		Reason:    "Spam",
		Duration:  30,
		HandledBy: "Admin",
	}))
	require.NoError(t, st.AddModerationLog(ModerationLog{
		UserID:    "1001",
		UserName:  "Marko",
		Action:    ACTION_WARN,
		HandledBy: "Admin",
	}))

	entries, err := st.ModerationLogs("1001")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ACTION_MUTE, entries[0].Action)
	assert.Equal(t, 30, entries[0].Duration)
	// The warn carries no duration
	assert.Zero(t, entries[1].Duration)

	entries, err = st.ModerationLogs("9999")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMemberEventCounts(t *testing.T) {
	st := openTestStore(t)

	for _, event := range []string{EVENT_JOIN, EVENT_LEAVE, EVENT_JOIN} {
		require.NoError(t, st.AddMemberEvent(MemberEvent{
			UserID: "1001", UserName: "Marko", Event: event,
		}))
	}

	joins, leaves, err := st.MemberEventCounts("1001")
	require.NoError(t, err)
	assert.Equal(t, 2, joins)
	assert.Equal(t, 1, leaves)
}

func TestUpsertPollOverwrites(t *testing.T) {
	st := openTestStore(t)

	require.NoError(t, st.UpsertPoll(PollRecord{
		PollID: "p1", ChannelID: "c1", ChannelName: "cwl", Duration: 60,
		YesCount: 1, NoCount: 0,
	}))
	require.NoError(t, st.UpsertPoll(PollRecord{
		PollID: "p1", ChannelID: "c1", ChannelName: "cwl", Duration: 60,
		YesCount: 5, NoCount: 2, Date: time.Now().UTC(),
	}))

	poll, err := st.Poll("p1")
	require.NoError(t, err)
	assert.Equal(t, 5, poll.YesCount)
	assert.Equal(t, 2, poll.NoCount)
}

func TestPollNotFound(t *testing.T) {
	st := openTestStore(t)
	_, err := st.Poll("ghost")
	require.Error(t, err)
	kind, ok := operr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, operr.KIND_NOT_FOUND, kind)
}
