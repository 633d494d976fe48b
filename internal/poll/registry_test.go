package poll

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRejectsNonPositiveDuration(t *testing.T) {
	registry := NewRegistry()
	assert.Error(t, registry.Open("p1", "c1", "cwl", 0, nil))
	assert.Error(t, registry.Open("p1", "c1", "cwl", -5, nil))
	assert.Equal(t, 0, registry.Len())
}

func TestLastChoiceWins(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Open("p1", "c1", "cwl", 10, nil))

	// A votes yes, B votes no, then A changes to no
	registry.SetResponse("p1", "A", CHOICE_YES)
	registry.SetResponse("p1", "B", CHOICE_NO)
	registry.SetResponse("p1", "A", CHOICE_NO)

	tally, ok := registry.Tally("p1")
	require.True(t, ok)
	assert.Equal(t, 0, tally.Yes)
	assert.Equal(t, 2, tally.No)
}

func TestClearResponseDropsVoter(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Open("p1", "c1", "cwl", 10, nil))

	registry.SetResponse("p1", "a", CHOICE_YES)
	registry.SetResponse("p1", "b", CHOICE_NO)
	registry.ClearResponse("p1", "a", CHOICE_YES)

	tally, ok := registry.Tally("p1")
	require.True(t, ok)
	assert.Equal(t, 0, tally.Yes)
	assert.Equal(t, 1, tally.No)
}

func TestVoteSwitchSurvivesStaleRetraction(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Open("p1", "c1", "cwl", 10, nil))

	// A votes yes, B votes no, A switches to no; afterwards the platform
	// still reports A's old yes reaction disappearing
	registry.SetResponse("p1", "A", CHOICE_YES)
	registry.SetResponse("p1", "B", CHOICE_NO)
	registry.SetResponse("p1", "A", CHOICE_NO)
	registry.ClearResponse("p1", "A", CHOICE_YES)

	tally, ok := registry.Tally("p1")
	require.True(t, ok)
	assert.Equal(t, 0, tally.Yes)
	assert.Equal(t, 2, tally.No)

	// retracting the recorded choice still removes the voter
	registry.ClearResponse("p1", "A", CHOICE_NO)
	tally, _ = registry.Tally("p1")
	assert.Equal(t, 1, tally.No)
}

func TestResponsesForUnknownPollAreIgnored(t *testing.T) {
	registry := NewRegistry()
	registry.SetResponse("ghost", "voter", CHOICE_YES)
	registry.ClearResponse("ghost", "voter", CHOICE_YES)

	_, ok := registry.Tally("ghost")
	assert.False(t, ok)
	assert.False(t, registry.Tracks("ghost"))
}

func TestRemoveIsIdempotent(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Open("p1", "c1", "cwl", 10, nil))
	registry.SetResponse("p1", "a", CHOICE_YES)

	tally, ok := registry.Remove("p1")
	require.True(t, ok)
	assert.Equal(t, 1, tally.Yes)

	// Second removal reports the poll as already gone
	_, ok = registry.Remove("p1")
	assert.False(t, ok)
	assert.Equal(t, 0, registry.Len())
}

func TestSnapshotCoversAllOpenPolls(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Open("p1", "c1", "cwl-1", 10, nil))
	require.NoError(t, registry.Open("p2", "c2", "cwl-2", 20, nil))
	registry.SetResponse("p1", "a", CHOICE_YES)
	registry.SetResponse("p2", "a", CHOICE_NO)
	registry.SetResponse("p2", "b", CHOICE_NO)

	tallies := registry.Snapshot()
	require.Len(t, tallies, 2)

	byID := map[string]Tally{}
	for _, tally := range tallies {
		byID[tally.PollID] = tally
	}
	assert.Equal(t, 1, byID["p1"].Yes)
	assert.Equal(t, 2, byID["p2"].No)
	assert.Equal(t, 20, byID["p2"].Duration)
}

func TestPercentages(t *testing.T) {
	yes, no := Tally{Yes: 3, No: 1}.Percentages()
	assert.InDelta(t, 75.0, yes, 0.001)
	assert.InDelta(t, 25.0, no, 0.001)

	yes, no = Tally{}.Percentages()
	assert.Zero(t, yes)
	assert.Zero(t, no)
}
