package bot

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/JelacicBan/OlujaBot/internal/config"
	"github.com/JelacicBan/OlujaBot/internal/store"
)

// onMemberJoin records the join and greets the member in the log channel
func (b *Bot) onMemberJoin(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.User == nil || m.User.Bot {
		return
	}
	if err := b.store.AddMemberEvent(store.MemberEvent{
		UserID:   m.User.ID,
		UserName: m.User.Username,
		Event:    store.EVENT_JOIN,
	}); err != nil {
		log.Error().Msgf("Could not record join of %s: %s", m.User.Username, err)
	}

	if channel, err := b.channelByName(m.GuildID, b.cfg.LogChannelName); err == nil {
		b.discord.ChannelMessageSendEmbed(channel.ID, embed("👋 Neues Mitglied",
			fmt.Sprintf("<@%s> ist dem Server beigetreten.", m.User.ID), colorGreen))
	}
}

// onMemberLeave records the departure
func (b *Bot) onMemberLeave(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	if m.User == nil || m.User.Bot {
		return
	}
	if err := b.store.AddMemberEvent(store.MemberEvent{
		UserID:   m.User.ID,
		UserName: m.User.Username,
		Event:    store.EVENT_LEAVE,
	}); err != nil {
		log.Error().Msgf("Could not record leave of %s: %s", m.User.Username, err)
	}

	if channel, err := b.channelByName(m.GuildID, b.cfg.LogChannelName); err == nil {
		b.discord.ChannelMessageSendEmbed(channel.ID, embed("🚪 Mitglied gegangen",
			fmt.Sprintf("**%s** hat den Server verlassen.", m.User.Username), colorRed))
	}
}

// maybeAnswerFAQ answers the most common question directly in ticket
// channels without waiting for a staff member
func (b *Bot) maybeAnswerFAQ(s *discordgo.Session, m *discordgo.MessageCreate) {
	channel, err := s.Channel(m.ChannelID)
	if err != nil || !strings.HasPrefix(channel.Name, ticketPrefix) {
		return
	}
	if !strings.Contains(strings.ToLower(m.Content), "wie lange dauert") {
		return
	}
	_, err = s.ChannelMessageSendEmbed(m.ChannelID, embed("❓ Gute Frage!",
		config.FAQText, colorBlue))
	if err != nil {
		log.Debug().Msgf("Could not post FAQ auto-reply: %s", err)
	}
}
