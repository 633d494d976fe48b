package oplog

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasErrors(t *testing.T) {
	collector := New("Test", "1001", "Marko", "c1")
	collector.AddEvent(INFO, "started")
	assert.False(t, collector.HasErrors())

	collector.AddEvent(WARNING, "something odd")
	assert.True(t, collector.HasErrors())
}

func TestSummaryContainsEveryEvent(t *testing.T) {
	collector := New("Bewerbungsprozess", "1001", "Marko", "c1")
	collector.AddEvent(INFO, "Bewerbung gestartet")
	collector.AddEvent(ERROR, "DM fehlgeschlagen")

	summary := collector.Summary("Abgebrochen", ColorFailure)
	assert.Equal(t, "📋 Bewerbungsprozess - Abgebrochen", summary.Title)
	assert.Equal(t, ColorFailure, summary.Color)
	assert.Contains(t, summary.Description, "[INFO] Bewerbung gestartet")
	assert.Contains(t, summary.Description, "[ERROR] DM fehlgeschlagen")
	require.NotNil(t, summary.Author)
	assert.Contains(t, summary.Author.Name, "Marko")

	// channel field plus duration field
	require.Len(t, summary.Fields, 2)
	assert.Equal(t, "Kanal", summary.Fields[0].Name)
}

func TestSummaryWithoutSubjectOrChannel(t *testing.T) {
	collector := New("Hintergrundjob", "", "", "")
	collector.AddEvent(INFO, "done")

	summary := collector.Summary("Abgeschlossen", ColorSuccess)
	assert.Nil(t, summary.Author)
	require.Len(t, summary.Fields, 1)
	assert.Equal(t, "Dauer", summary.Fields[0].Name)
}

func TestFlushPostsExactlyOnce(t *testing.T) {
	collector := New("Test", "1001", "Marko", "c1")
	collector.AddEvent(INFO, "event")

	posted := 0
	collector.Flush("Abgeschlossen", ColorSuccess, func(e *discordgo.MessageEmbed) error {
		posted++
		return nil
	})
	assert.Equal(t, 1, posted)
}

func TestFlushSkipsEmptyCollector(t *testing.T) {
	collector := New("Test", "1001", "Marko", "c1")

	posted := 0
	collector.Flush("Abgeschlossen", ColorSuccess, func(e *discordgo.MessageEmbed) error {
		posted++
		return nil
	})
	assert.Zero(t, posted)
}
