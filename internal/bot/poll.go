package bot

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/JelacicBan/OlujaBot/internal/oplog"
	"github.com/JelacicBan/OlujaBot/internal/poll"
	"github.com/JelacicBan/OlujaBot/internal/store"
)

const (
	reactionYes = "✅"
	reactionNo  = "❌"
)

// handlePollRequest opens a CWL participation poll in the target channel.
// The poll message id doubles as the poll id
func (b *Bot) handlePollRequest(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)
	collector := oplog.New("CWL-Umfrage", user.ID, user.Username, i.ChannelID)
	collector.AddEvent(oplog.INFO, "Umfrage angefordert")

	if !b.isStaff(i.GuildID, i.Member) {
		b.denyUnauthorized(i)
		collector.AddEvent(oplog.WARNING, "Unbefugter Zugriff")
		collector.Flush("Abgebrochen", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}

	options := optionMap(i)
	duration := int(options["duration"].IntValue())
	channelID := i.ChannelID
	if opt, ok := options["channel"]; ok {
		channelID = opt.ChannelValue(s).ID
	}
	if duration <= 0 {
		b.respondEmbed(i, embed("⚠️ Ungültige Dauer", "Die Dauer muss eine positive Minutenzahl sein.", colorOrange), true)
		collector.AddEvent(oplog.WARNING, "Ungültige Dauer: %d", duration)
		collector.Flush("Abgebrochen", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}

	channel, err := s.Channel(channelID)
	if err != nil {
		b.respondEmbed(i, embed("⚠️ Fehler", "Zielkanal nicht gefunden.", colorOrange), true)
		collector.AddEvent(oplog.ERROR, "Zielkanal nicht gefunden: %s", err)
		collector.Flush("Abgebrochen", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}

	pollEmbed := &discordgo.MessageEmbed{
		Title: "⚔️ CWL-Teilnahme-Umfrage",
		Description: fmt.Sprintf("@everyone\nNimmst du an der kommenden CWL teil?\n\n"+
			"%s Ja, ich bin dabei!\n%s Nein, diesmal nicht.\n\n"+
			"⏰ Die Umfrage läuft **%d Minute(n)**.", reactionYes, reactionNo, duration),
		Color:  colorPurple,
		Footer: &discordgo.MessageEmbedFooter{Text: brandFooter},
	}
	msg, err := s.ChannelMessageSendComplex(channel.ID, &discordgo.MessageSend{
		Content: "@everyone",
		Embeds:  []*discordgo.MessageEmbed{pollEmbed},
	})
	if err != nil {
		b.respondEmbed(i, embed("⚠️ Fehler", "Die Umfrage konnte nicht gesendet werden.", colorOrange), true)
		collector.AddEvent(oplog.ERROR, "Umfrage konnte nicht gesendet werden: %s", err)
		collector.Flush("Abgebrochen", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}

	s.MessageReactionAdd(channel.ID, msg.ID, reactionYes)
	s.MessageReactionAdd(channel.ID, msg.ID, reactionNo)

	guildID := i.GuildID
	err = b.polls.Open(msg.ID, channel.ID, channel.Name, duration, func(pollID string) {
		b.finalizePoll(guildID, pollID)
	})
	if err != nil {
		b.respondEmbed(i, embed("⚠️ Fehler", "Die Umfrage konnte nicht registriert werden.", colorOrange), true)
		collector.AddEvent(oplog.ERROR, "Registrierung fehlgeschlagen: %s", err)
		collector.Flush("Abgebrochen", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}

	// Seed the poll row so a crash before the first checkpoint still
	// leaves a trace
	if err := b.store.UpsertPoll(store.PollRecord{
		PollID:      msg.ID,
		ChannelID:   channel.ID,
		ChannelName: channel.Name,
		Duration:    duration,
	}); err != nil {
		log.Warn().Msgf("Could not seed poll row: %s", err)
	}

	b.respondEmbed(i, embed("✅ Umfrage gestartet",
		fmt.Sprintf("Die CWL-Umfrage läuft in <#%s> für %d Minute(n).", channel.ID, duration), colorGreen), true)
	collector.AddEvent(oplog.INFO, "Umfrage gestartet in %s für %d Minuten", channel.Name, duration)
	collector.Flush("Gestartet", oplog.ColorSuccess, b.logPoster(i.GuildID))
}

// onReactionAdd records votes on open polls. A new reaction overwrites
// the voter's previous choice
func (b *Bot) onReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.UserID == s.State.User.ID {
		return
	}
	if !b.polls.Tracks(r.MessageID) {
		return
	}
	switch r.Emoji.Name {
	case reactionYes:
		b.polls.SetResponse(r.MessageID, r.UserID, poll.CHOICE_YES)
	case reactionNo:
		b.polls.SetResponse(r.MessageID, r.UserID, poll.CHOICE_NO)
	default:
		return
	}
	// Keep one visible reaction per voter so the message mirrors the tally
	for _, emoji := range []string{reactionYes, reactionNo} {
		if emoji == r.Emoji.Name {
			continue
		}
		if err := s.MessageReactionRemove(r.ChannelID, r.MessageID, emoji, r.UserID); err != nil {
			log.Debug().Msgf("Could not remove stale reaction: %s", err)
		}
	}
}

// onReactionRemove drops the voter's contribution when their current
// reaction disappears
func (b *Bot) onReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	if r.UserID == s.State.User.ID {
		return
	}
	if !b.polls.Tracks(r.MessageID) {
		return
	}
	switch r.Emoji.Name {
	case reactionYes:
		b.polls.ClearResponse(r.MessageID, r.UserID, poll.CHOICE_YES)
	case reactionNo:
		b.polls.ClearResponse(r.MessageID, r.UserID, poll.CHOICE_NO)
	}
}

// checkpointLoop persists every open poll's tally periodically so a
// restart loses at most one interval of votes
func (b *Bot) checkpointLoop() {
	ticker := time.NewTicker(b.cfg.CheckpointInterval)
	defer ticker.Stop()
	for {
		select {
		case <-b.done:
			return
		case <-ticker.C:
			b.checkpointPolls()
		}
	}
}

func (b *Bot) checkpointPolls() {
	for _, tally := range b.polls.Snapshot() {
		err := b.store.UpsertPoll(store.PollRecord{
			PollID:      tally.PollID,
			ChannelID:   tally.ChannelID,
			ChannelName: tally.ChannelName,
			Duration:    tally.Duration,
			YesCount:    tally.Yes,
			NoCount:     tally.No,
		})
		if err == nil {
			continue
		}
		log.Warn().Msgf("Poll checkpoint failed, reconnecting: %s", err)
		if err := b.store.Reconnect(); err != nil {
			log.Error().Msgf("Database reconnect failed: %s", err)
			continue
		}
		if err := b.store.UpsertPoll(store.PollRecord{
			PollID:      tally.PollID,
			ChannelID:   tally.ChannelID,
			ChannelName: tally.ChannelName,
			Duration:    tally.Duration,
			YesCount:    tally.Yes,
			NoCount:     tally.No,
		}); err != nil {
			log.Error().Msgf("Poll checkpoint failed after reconnect: %s", err)
		}
	}
}

// finalizePoll closes a poll, posts the result and reports it to the
// configured admin by DM. Safe against double invocation
func (b *Bot) finalizePoll(guildID, pollID string) {
	tally, ok := b.polls.Remove(pollID)
	if !ok {
		log.Warn().Msgf("Poll %s is no longer open, nothing to finalize", pollID)
		return
	}

	collector := oplog.New("CWL-Umfrage-Abschluss", pollID, tally.ChannelName, tally.ChannelID)

	if err := b.store.UpsertPoll(store.PollRecord{
		PollID:      tally.PollID,
		ChannelID:   tally.ChannelID,
		ChannelName: tally.ChannelName,
		Duration:    tally.Duration,
		YesCount:    tally.Yes,
		NoCount:     tally.No,
	}); err != nil {
		collector.AddEvent(oplog.ERROR, "Endstand konnte nicht gespeichert werden: %s", err)
	} else {
		collector.AddEvent(oplog.INFO, "Endstand gespeichert")
	}

	yesPct, noPct := tally.Percentages()
	result := &discordgo.MessageEmbed{
		Title: "📊 CWL-Umfrage beendet",
		Description: fmt.Sprintf("Die Umfrage in **#%s** ist abgeschlossen!\n\n"+
			"%s **Ja:** %d (%.1f%%)\n%s **Nein:** %d (%.1f%%)",
			tally.ChannelName, reactionYes, tally.Yes, yesPct, reactionNo, tally.No, noPct),
		Color:  colorPurple,
		Footer: &discordgo.MessageEmbedFooter{Text: brandFooter},
	}
	if _, err := b.discord.ChannelMessageSendEmbed(tally.ChannelID, result); err != nil {
		collector.AddEvent(oplog.ERROR, "Ergebnis konnte nicht gesendet werden: %s", err)
	} else {
		collector.AddEvent(oplog.INFO, "Ergebnis veröffentlicht: Ja=%d Nein=%d", tally.Yes, tally.No)
	}

	if b.cfg.AdminUserID != "" {
		if err := b.sendDM(b.cfg.AdminUserID, result, nil); err != nil {
			collector.AddEvent(oplog.WARNING, "Admin-DM konnte nicht gesendet werden")
		} else {
			collector.AddEvent(oplog.INFO, "Admin per DM informiert")
		}
	}

	status := "Abgeschlossen"
	color := oplog.ColorSuccess
	if collector.HasErrors() {
		status = "Fehler"
		color = oplog.ColorFailure
	}
	collector.Flush(status, color, b.logPoster(guildID))
}
