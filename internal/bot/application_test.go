package bot

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textChannel(name string) *discordgo.Channel {
	return &discordgo.Channel{Name: name, Type: discordgo.ChannelTypeGuildText}
}

func TestFindTicketChannelBlocksOpenTicket(t *testing.T) {
	channels := []*discordgo.Channel{
		textChannel("general"),
		textChannel("bewerbung-marko"),
	}
	found := findTicketChannel(channels, "marko")
	require.NotNil(t, found)
	assert.Equal(t, "bewerbung-marko", found.Name)
}

func TestFindTicketChannelBlocksAcceptedTicket(t *testing.T) {
	channels := []*discordgo.Channel{textChannel("angenommen-marko")}
	assert.NotNil(t, findTicketChannel(channels, "marko"))
}

func TestFindTicketChannelAllowsFreshApplicant(t *testing.T) {
	channels := []*discordgo.Channel{
		textChannel("bewerbung-iva"),
		textChannel("angenommen-luka"),
		{Name: "bewerbung-marko", Type: discordgo.ChannelTypeGuildVoice},
	}
	assert.Nil(t, findTicketChannel(channels, "marko"))
}

func TestFindTicketChannelTruncatesLongNames(t *testing.T) {
	username := "einsehrlangernutzername42"
	channels := []*discordgo.Channel{
		textChannel(ticketPrefix + truncateName(username)),
	}
	assert.NotNil(t, findTicketChannel(channels, username))
}

func TestSelectedValue(t *testing.T) {
	_, ok := selectedValue(discordgo.MessageComponentInteractionData{})
	assert.False(t, ok)

	value, ok := selectedValue(discordgo.MessageComponentInteractionData{
		Values: []string{"Mitglieder-Bewerbung"},
	})
	assert.True(t, ok)
	assert.Equal(t, "Mitglieder-Bewerbung", value)
}
