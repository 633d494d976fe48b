package bot

import (
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Embed colors, matching the discord palette
const (
	colorGold    = 0xF1C40F
	colorBlue    = 0x3498DB
	colorGreen   = 0x57F287
	colorRed     = 0xED4245
	colorOrange  = 0xE67E22
	colorPurple  = 0x9B59B6
	colorBlurple = 0x5865F2
)

const brandFooter = "Operation-Oluja"

const clanLogoURL = "https://cdn.discordapp.com/attachments/1128712101349038160/1226579502036989992/oluja_logo.png"

func embed(title, description string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Footer:      &discordgo.MessageEmbedFooter{Text: brandFooter},
	}
}

// respondEmbed answers an interaction with a single embed,
// optionally visible only to the caller
func (b *Bot) respondEmbed(i *discordgo.InteractionCreate, e *discordgo.MessageEmbed, ephemeral bool) {
	data := &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{e},
	}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := b.discord.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		log.Error().Msgf("Could not respond to interaction: %s", err)
	}
}

// respondText answers an interaction with plain text
func (b *Bot) respondText(i *discordgo.InteractionCreate, content string, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := b.discord.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		log.Error().Msgf("Could not respond to interaction: %s", err)
	}
}

// deferEphemeral acknowledges an interaction so the handler can take
// its time and follow up later
func (b *Bot) deferEphemeral(i *discordgo.InteractionCreate) {
	err := b.discord.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		log.Error().Msgf("Could not defer interaction: %s", err)
	}
}

// followupEmbed continues a deferred interaction with one embed
func (b *Bot) followupEmbed(i *discordgo.InteractionCreate, e *discordgo.MessageEmbed) {
	_, err := b.discord.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{e},
		Flags:  discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Error().Msgf("Could not send followup: %s", err)
	}
}

// denyUnauthorized reports the localized permission failure
func (b *Bot) denyUnauthorized(i *discordgo.InteractionCreate) {
	b.respondEmbed(i, embed("❌ Keine Berechtigung", "Nur Teammitglieder dürfen das!", colorRed), true)
}

// interactionUser resolves the acting user for guild and DM interactions
func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}
