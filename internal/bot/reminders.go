package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

const (
	applicationReminderInterval = 6 * time.Hour
	warReminderInterval         = 12 * time.Hour
)

// applicationReminderLoop nudges the staff about tickets that are still
// waiting for a decision
func (b *Bot) applicationReminderLoop() {
	ticker := time.NewTicker(applicationReminderInterval)
	defer ticker.Stop()
	for {
		select {
		case <-b.done:
			return
		case <-ticker.C:
			b.remindOpenApplications()
		}
	}
}

func (b *Bot) remindOpenApplications() {
	threshold := time.Duration(b.cfg.ReminderHours) * time.Hour
	for _, guild := range b.discord.State.Guilds {
		channels, err := b.discord.GuildChannels(guild.ID)
		if err != nil {
			log.Warn().Msgf("Reminder scan failed for guild %s: %s", guild.ID, err)
			continue
		}
		var open []string
		for _, ch := range channels {
			if ch.Type != discordgo.ChannelTypeGuildText || !strings.HasPrefix(ch.Name, ticketPrefix) {
				continue
			}
			// The channel id carries its creation time
			created, err := discordgo.SnowflakeTimestamp(ch.ID)
			if err != nil || time.Since(created) < threshold {
				continue
			}
			open = append(open, fmt.Sprintf("<#%s>", ch.ID))
		}
		if len(open) == 0 {
			continue
		}

		logChannel, err := b.channelByName(guild.ID, b.cfg.LogChannelName)
		if err != nil {
			log.Warn().Msgf("Reminder skipped, no log channel: %s", err)
			continue
		}
		reminder := embed("⏰ Offene Bewerbungen",
			fmt.Sprintf("Es warten noch **%d** Bewerbung(en) auf eine Entscheidung:\n%s",
				len(open), strings.Join(open, "\n")), colorOrange)
		if _, err := b.discord.ChannelMessageSendEmbed(logChannel.ID, reminder); err != nil {
			log.Warn().Msgf("Could not post application reminder: %s", err)
		}
	}
}

// warReminderLoop posts the recurring war attack reminder
func (b *Bot) warReminderLoop() {
	ticker := time.NewTicker(warReminderInterval)
	defer ticker.Stop()
	for {
		select {
		case <-b.done:
			return
		case <-ticker.C:
			b.postWarReminder()
		}
	}
}

func (b *Bot) postWarReminder() {
	for _, guild := range b.discord.State.Guilds {
		logChannel, err := b.channelByName(guild.ID, b.cfg.LogChannelName)
		if err != nil {
			continue
		}
		reminder := embed("⚔️ Kriegserinnerung",
			"Denkt an eure Kriegsangriffe! Beide Angriffe zählen. 💪", colorBlurple)
		if _, err := b.discord.ChannelMessageSendEmbed(logChannel.ID, reminder); err != nil {
			log.Warn().Msgf("Could not post war reminder: %s", err)
		}
	}
}
