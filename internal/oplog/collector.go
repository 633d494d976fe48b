package oplog

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Level int

const (
	INFO Level = iota
	WARNING
	ERROR
)

var levelNames = map[Level]string{
	INFO:    "INFO",
	WARNING: "WARNING",
	ERROR:   "ERROR",
}

func (l Level) String() string {
	return levelNames[l]
}

// Status colors for the summary embed
const (
	ColorSuccess = 0x57F287
	ColorWarning = 0xFEE75C
	ColorFailure = 0xED4245
)

type event struct {
	level Level
	text  string
}

// Collector accumulates the events of one logical operation
// (one application run, one poll, one moderation action) and flushes
// them as a single audit report when the operation ends
type Collector struct {
	ID          uuid.UUID
	Process     string
	SubjectID   string
	SubjectName string
	ChannelID   string
	start       time.Time
	events      []event
}

// New creates a collector for one operation. Subject and channel
// may be left empty for background jobs
func New(process string, subjectID, subjectName, channelID string) *Collector {
	return &Collector{
		ID:          uuid.New(),
		Process:     process,
		SubjectID:   subjectID,
		SubjectName: subjectName,
		ChannelID:   channelID,
		start:       time.Now().UTC(),
	}
}

// AddEvent records one event and mirrors it to the process log
func (c *Collector) AddEvent(level Level, format string, args ...interface{}) {
	text := fmt.Sprintf(format, args...)
	c.events = append(c.events, event{level, text})

	var zl zerolog.Level
	switch level {
	case WARNING:
		zl = zerolog.WarnLevel
	case ERROR:
		zl = zerolog.ErrorLevel
	default:
		zl = zerolog.InfoLevel
	}
	log.WithLevel(zl).Str("process", c.Process).Str("op", c.ID.String()).Msg(text)
}

// HasErrors reports whether any warning or error was collected
func (c *Collector) HasErrors() bool {
	for _, e := range c.events {
		if e.level == WARNING || e.level == ERROR {
			return true
		}
	}
	return false
}

// Len returns the number of collected events
func (c *Collector) Len() int {
	return len(c.events)
}

// Summary renders the collected events as one report embed
func (c *Collector) Summary(status string, color int) *discordgo.MessageEmbed {
	var lines []string
	for _, e := range c.events {
		lines = append(lines, fmt.Sprintf("[%s] %s", e.level, e.text))
	}
	now := time.Now().UTC()

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("📋 %s - %s", c.Process, status),
		Description: "**Prozesszusammenfassung:**\n\n" + strings.Join(lines, "\n"),
		Color:       color,
		Timestamp:   now.Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Operation-Oluja | %s", now.Format("02.01.2006 15:04 UTC")),
		},
	}
	if c.SubjectName != "" {
		embed.Author = &discordgo.MessageEmbedAuthor{
			Name: fmt.Sprintf("%s (ID: %s)", c.SubjectName, c.SubjectID),
		}
	}
	if c.ChannelID != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Kanal",
			Value:  fmt.Sprintf("<#%s> (ID: %s)", c.ChannelID, c.ChannelID),
			Inline: true,
		})
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "Dauer",
		Value:  fmt.Sprintf("%d Sekunden", int(now.Sub(c.start).Seconds())),
		Inline: true,
	})
	return embed
}

// Flush posts the summary report through the provided poster.
// Every operation flushes exactly once, whatever its outcome;
// a collector without events is skipped
func (c *Collector) Flush(status string, color int, post func(*discordgo.MessageEmbed) error) {
	if len(c.events) == 0 {
		log.Warn().Msgf("No events to report for %s", c.Process)
		return
	}
	if post == nil {
		log.Warn().Msgf("No log poster configured for %s", c.Process)
		return
	}
	if err := post(c.Summary(status, color)); err != nil {
		log.Error().Msgf("Could not post summary for %s: %s", c.Process, err)
	}
}
