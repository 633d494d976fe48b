package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"

	"github.com/JelacicBan/OlujaBot/internal/store"
)

// handleClanStats summarizes the application history of the server
func (b *Bot) handleClanStats(s *discordgo.Session, i *discordgo.InteractionCreate) {
	apps, err := b.store.Applications("")
	if err != nil {
		b.respondEmbed(i, embed("⚠️ Fehler", "Die Statistiken konnten nicht geladen werden.", colorOrange), true)
		return
	}

	var accepted, denied int
	for _, app := range apps {
		switch app.Status {
		case store.STATUS_ACCEPTED:
			accepted++
		case store.STATUS_DENIED:
			denied++
		}
	}
	total := len(apps)
	rate := 0.0
	if total > 0 {
		rate = float64(accepted) / float64(total) * 100
	}

	guild, err := s.State.Guild(i.GuildID)
	memberCount := 0
	if err == nil {
		memberCount = guild.MemberCount
	}

	stats := &discordgo.MessageEmbed{
		Title: "📊 Clan-Statistiken",
		Color: colorBlurple,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Servermitglieder", Value: humanize.Comma(int64(memberCount)), Inline: true},
			{Name: "Bewerbungen gesamt", Value: humanize.Comma(int64(total)), Inline: true},
			{Name: "Angenommen", Value: humanize.Comma(int64(accepted)), Inline: true},
			{Name: "Abgelehnt", Value: humanize.Comma(int64(denied)), Inline: true},
			{Name: "Annahmequote", Value: fmt.Sprintf("%.1f%%", rate), Inline: true},
			{Name: "Clan-Tag", Value: b.cfg.ClanTag, Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: brandFooter},
	}
	b.respondEmbed(i, stats, false)
}

// handleMemberStats shows one member's application, moderation and
// join/leave history
func (b *Bot) handleMemberStats(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.isStaff(i.GuildID, i.Member) {
		b.denyUnauthorized(i)
		return
	}

	options := optionMap(i)
	target := options["member"].UserValue(s)

	apps, err := b.store.Applications("")
	if err != nil {
		b.respondEmbed(i, embed("⚠️ Fehler", "Die Statistiken konnten nicht geladen werden.", colorOrange), true)
		return
	}
	var lastApp *store.Application
	for idx := range apps {
		if apps[idx].ApplicantID == target.ID {
			lastApp = &apps[idx]
		}
	}

	logs, err := b.store.ModerationLogs(target.ID)
	if err != nil {
		b.respondEmbed(i, embed("⚠️ Fehler", "Die Moderationshistorie konnte nicht geladen werden.", colorOrange), true)
		return
	}
	var mutes, warns int
	for _, entry := range logs {
		switch entry.Action {
		case store.ACTION_MUTE:
			mutes++
		case store.ACTION_WARN:
			warns++
		}
	}

	joins, leaves, err := b.store.MemberEventCounts(target.ID)
	if err != nil {
		b.respondEmbed(i, embed("⚠️ Fehler", "Die Mitgliedshistorie konnte nicht geladen werden.", colorOrange), true)
		return
	}

	application := "Keine Bewerbung gefunden"
	if lastApp != nil {
		application = fmt.Sprintf("%s (%s, %s)", lastApp.Status, lastApp.ApplyType,
			humanize.Time(lastApp.Date))
	}

	stats := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("👤 Statistiken für %s", target.Username),
		Color: colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Letzte Bewerbung", Value: application},
			{Name: "Verwarnungen", Value: fmt.Sprintf("%d", warns), Inline: true},
			{Name: "Stummschaltungen", Value: fmt.Sprintf("%d", mutes), Inline: true},
			{Name: "Beitritte / Austritte", Value: fmt.Sprintf("%d / %d", joins, leaves), Inline: true},
		},
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: target.AvatarURL("")},
		Footer:    &discordgo.MessageEmbedFooter{Text: brandFooter},
	}
	b.respondEmbed(i, stats, true)
}

// handleWarStatus reports the standing war reminder configuration
func (b *Bot) handleWarStatus(s *discordgo.Session, i *discordgo.InteractionCreate) {
	status := embed("⚔️ Kriegsstatus",
		fmt.Sprintf("Der Kriegs-Reminder läuft alle **%d Stunden**.\n"+
			"Aktive CWL-Umfragen: **%d**\n\n"+
			"Nutzt eure Angriffe - beide zählen! 💪",
			int(warReminderInterval.Hours()), b.polls.Len()), colorPurple)
	b.respondEmbed(i, status, false)
}
