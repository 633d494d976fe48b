package bot

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/JelacicBan/OlujaBot/internal/archive"
	"github.com/JelacicBan/OlujaBot/internal/config"
	"github.com/JelacicBan/OlujaBot/internal/operr"
	"github.com/JelacicBan/OlujaBot/internal/oplog"
	"github.com/JelacicBan/OlujaBot/internal/store"
	"github.com/JelacicBan/OlujaBot/internal/workflow"
)

// Ticket channel name prefixes
const (
	ticketPrefix   = "bewerbung-"
	acceptedPrefix = "angenommen-"
)

// pendingApplication is an application whose summary is posted and which
// awaits a staff decision in its ticket channel
type pendingApplication struct {
	guildID   string
	applicant *discordgo.User
	applyType string
	questions []string
	answers   []string
}

func truncateName(name string) string {
	if len(name) > 20 {
		return name[:20]
	}
	return name
}

func progressBar(percent int) string {
	blocks := percent / 10
	return strings.Repeat("█", blocks) + strings.Repeat("░", 10-blocks)
}

// findTicketChannel scans channel names for the applicant's open or
// accepted ticket. One ticket per applicant, whatever its stage
func findTicketChannel(channels []*discordgo.Channel, username string) *discordgo.Channel {
	short := truncateName(username)
	for _, ch := range channels {
		if ch.Type != discordgo.ChannelTypeGuildText {
			continue
		}
		if strings.HasPrefix(ch.Name, ticketPrefix+short) || strings.HasPrefix(ch.Name, acceptedPrefix+short) {
			return ch
		}
	}
	return nil
}

func (b *Bot) openTicket(guildID string, username string) (*discordgo.Channel, error) {
	channels, err := b.discord.GuildChannels(guildID)
	if err != nil {
		return nil, fmt.Errorf("could not list channels of guild %s: %w", guildID, err)
	}
	return findTicketChannel(channels, username), nil
}

// selectedValue pulls the single selection out of a select menu interaction
func selectedValue(data discordgo.MessageComponentInteractionData) (string, bool) {
	if len(data.Values) == 0 {
		return "", false
	}
	return data.Values[0], true
}

// handleApplySelect starts the application workflow when a user picks
// an application type from the menu
func (b *Bot) handleApplySelect(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.deferEphemeral(i)

	user := interactionUser(i)
	guildID := i.GuildID
	applyType, ok := selectedValue(i.MessageComponentData())
	if !ok {
		b.followupEmbed(i, embed("⚠️ Fehler", "Keine Bewerbungsart ausgewählt.", colorOrange))
		return
	}

	collector := oplog.New("Bewerbungsprozess", user.ID, user.Username, i.ChannelID)
	collector.AddEvent(oplog.INFO, "Bewerbung gestartet")

	// One open ticket per applicant
	existing, err := b.openTicket(guildID, user.Username)
	if err != nil {
		log.Error().Msgf("Ticket scan failed: %s", err)
	}
	if existing != nil {
		b.followupEmbed(i, embed("⚠️ Offene Bewerbung",
			"Du hast bereits eine offene Bewerbung. Bitte warte, bis sie bearbeitet wurde.", colorRed))
		collector.AddEvent(oplog.WARNING, "Abbruch: Offene Bewerbung erkannt")
		collector.Flush("Abgebrochen", oplog.ColorFailure, b.logPoster(guildID))
		return
	}

	questions, ok := b.cfg.Questions(applyType)
	if !ok {
		b.followupEmbed(i, embed("⚠️ Fehler", "Unbekannte Bewerbungsart.", colorOrange))
		collector.AddEvent(oplog.ERROR, "Unbekannte Bewerbungsart: %s", applyType)
		collector.Flush("Abgebrochen", oplog.ColorFailure, b.logPoster(guildID))
		return
	}

	ticket, err := b.createTicketChannel(guildID, user)
	if err != nil {
		b.followupEmbed(i, embed("⚠️ Fehler", "Der Bewerbungskanal konnte nicht erstellt werden.", colorOrange))
		collector.AddEvent(oplog.ERROR, "Kanal konnte nicht erstellt werden: %s", err)
		collector.Flush("Abgebrochen", oplog.ColorFailure, b.logPoster(guildID))
		return
	}
	collector.ChannelID = ticket.ID
	collector.AddEvent(oplog.INFO, "Bewerbungskanal erstellt")

	b.sendTicketWelcome(guildID, ticket.ID, user)
	collector.AddEvent(oplog.INFO, "Willkommensnachricht gesendet")

	b.followupEmbed(i, embed("✅ Bewerbung erstellt",
		fmt.Sprintf("Deine Bewerbung wurde in <#%s> erstellt.", ticket.ID), colorGreen))

	// The exchange itself runs detached; the interaction is already answered
	go b.runApplication(guildID, ticket.ID, user, applyType, questions, collector)
}

func (b *Bot) createTicketChannel(guildID string, user *discordgo.User) (*discordgo.Channel, error) {
	overwrites := []*discordgo.PermissionOverwrite{
		{
			ID:   guildID, // @everyone carries the guild id
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
		{
			ID:    user.ID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionMentionEveryone,
		},
	}
	if role, err := b.adminRole(guildID); err == nil {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    role.ID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionMentionEveryone,
		})
	}
	return b.discord.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 ticketPrefix + truncateName(user.Username),
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                fmt.Sprintf("Bewerbung von %s | ID: %s", user.Username, user.ID),
		PermissionOverwrites: overwrites,
	})
}

func (b *Bot) sendTicketWelcome(guildID, channelID string, user *discordgo.User) {
	welcome := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🎉 Willkommen, %s!", user.Username),
		Description: fmt.Sprintf(
			"**<@%s>, danke für deine Bewerbung bei Operation-Oluja!**\n\n"+
				"Bitte beantworte die folgenden Fragen, um deine Bewerbung abzuschließen.\n"+
				"📝 Du hast 5 Minuten pro Frage, bevor der Kanal geschlossen wird.", user.ID),
		Color:     colorGold,
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: clanLogoURL},
		Footer:    &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Clan: %s | Operation-Oluja", b.cfg.ClanTag)},
	}
	content := ""
	if role, err := b.adminRole(guildID); err == nil {
		content = fmt.Sprintf("<@&%s>", role.ID)
	}
	_, err := b.discord.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: content,
		Embeds:  []*discordgo.MessageEmbed{welcome},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "❓ FAQ anzeigen",
					Style:    discordgo.SecondaryButton,
					CustomID: CUSTOM_ID_FAQ,
				},
			}},
		},
	})
	if err != nil {
		log.Error().Msgf("Could not send welcome message: %s", err)
	}
}

// discordExchange adapts one ticket channel to the workflow exchange
type discordExchange struct {
	bot       *Bot
	channelID string
	userID    string
}

func (e *discordExchange) Ask(index, total int, question string) (string, error) {
	percent := index * 100 / total
	prompt := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Frage %d/%d", index, total),
		Description: fmt.Sprintf("%s\n\n**Fortschritt:** [%s] %d%%\n⏰ Du hast 5 Minuten, um zu antworten.",
			question, progressBar(percent), percent),
		Color:  colorBlue,
		Footer: &discordgo.MessageEmbedFooter{Text: "Antworte direkt hier im Kanal."},
	}
	msg, err := e.bot.discord.ChannelMessageSendEmbed(e.channelID, prompt)
	if err != nil {
		return "", fmt.Errorf("could not post question %d: %w", index, err)
	}
	return msg.ID, nil
}

func (e *discordExchange) Await(timeout time.Duration) (string, string, error) {
	msg, ok := e.bot.awaitReply(e.channelID, e.userID, timeout)
	if !ok {
		return "", "", operr.New(operr.KIND_TIMEOUT, "no reply within %s", timeout)
	}
	return msg.ID, msg.Content, nil
}

func (e *discordExchange) Delete(messageIDs ...string) {
	for _, id := range messageIDs {
		if err := e.bot.discord.ChannelMessageDelete(e.channelID, id); err != nil {
			log.Debug().Msgf("Could not delete message %s: %s", id, err)
		}
	}
}

func (e *discordExchange) RejectTag(nextAttempt, maxAttempts int) error {
	notice := embed("⚠️ Ungültiger Spieler-Tag",
		fmt.Sprintf("Bitte gib einen korrekten Tag im Format `#LJC8V0GCJ` ein.\n"+
			"**Versuch %d/%d**\n"+
			"Ein korrekter Spieler-Tag beginnt mit #, gefolgt von 8-10 alphanumerischen Zeichen.",
			nextAttempt, maxAttempts), colorOrange)
	_, err := e.bot.discord.ChannelMessageSendEmbed(e.channelID, notice)
	return err
}

// runApplication collects the answers and posts the decision summary
func (b *Bot) runApplication(guildID, channelID string, user *discordgo.User, applyType string, questions []string, collector *oplog.Collector) {
	exchange := &discordExchange{bot: b, channelID: channelID, userID: user.ID}
	opts := workflow.Options{
		AnswerTimeout: b.cfg.AnswerTimeout,
		ValidateTag:   applyType == config.APPLY_TYPE_MEMBER,
	}

	answers, err := workflow.Collect(questions, opts, exchange)
	if err != nil {
		b.abortApplication(guildID, channelID, user, collector, err)
		return
	}
	for i, answer := range answers {
		collector.AddEvent(oplog.INFO, "Antwort auf Frage %d: %s", i+1, answer)
	}

	summary := b.summaryEmbed(user, applyType, questions, answers)
	_, err = b.discord.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{summary},
		Components: decisionComponents(),
	})
	if err != nil {
		b.abortApplication(guildID, channelID, user, collector, err)
		return
	}
	collector.AddEvent(oplog.INFO, "Bewerbungszusammenfassung gesendet")

	b.pendingMu.Lock()
	b.pending[channelID] = &pendingApplication{
		guildID:   guildID,
		applicant: user,
		applyType: applyType,
		questions: questions,
		answers:   answers,
	}
	b.pendingMu.Unlock()

	collector.AddEvent(oplog.INFO, "Bewerbung erfolgreich erstellt")
	collector.Flush("Erstellt", oplog.ColorSuccess, b.logPoster(guildID))
}

func (b *Bot) summaryEmbed(user *discordgo.User, applyType string, questions, answers []string) *discordgo.MessageEmbed {
	summary := &discordgo.MessageEmbed{
		Title: "📄 Deine Bewerbungszusammenfassung",
		Description: fmt.Sprintf("**<@%s>, hier ist deine Bewerbung:**\n\n**Bewerbungsart:** %s\n"+
			"Das Team wird deine Bewerbung bald prüfen. Danke für deine Geduld! 🙏", user.ID, applyType),
		Color:  colorGreen,
		Footer: &discordgo.MessageEmbedFooter{Text: "Operation-Oluja | Danke für deine Bewerbung!"},
	}
	for i := range questions {
		summary.Fields = append(summary.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("Frage %d", i+1),
			Value: fmt.Sprintf("**Antwort:** %s", answers[i]),
		})
	}
	return summary
}

func decisionComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "✅ Annehmen", Style: discordgo.SuccessButton, CustomID: CUSTOM_ID_ACCEPT},
			discordgo.Button{Label: "❌ Ablehnen", Style: discordgo.DangerButton, CustomID: CUSTOM_ID_DENY},
			discordgo.Button{Label: "📢 Team benachrichtigen", Style: discordgo.PrimaryButton, CustomID: CUSTOM_ID_NOTIFY_TEAM},
		}},
	}
}

// abortApplication posts the failure notice matching the error kind,
// informs the applicant by DM and tears the channel down
func (b *Bot) abortApplication(guildID, channelID string, user *discordgo.User, collector *oplog.Collector, cause error) {
	var notice *discordgo.MessageEmbed
	var reason string
	switch kind, _ := operr.KindOf(cause); kind {
	case operr.KIND_TIMEOUT:
		notice = embed("⏰ Zeit abgelaufen",
			"Du hast zu lange gebraucht, um die Fragen zu beantworten. Bitte starte die Bewerbung erneut.", colorRed)
		reason = "Timeout"
		collector.AddEvent(oplog.WARNING, "Timeout bei der Antwort")
	case operr.KIND_VALIDATION:
		notice = embed("⚠️ Ungültiger Spieler-Tag",
			"Du hast keine weiteren Versuche.\n"+
				"Ein korrekter Spieler-Tag beginnt mit #, gefolgt von 8-10 alphanumerischen Zeichen (z.B. #LJC8V0GCJ).\n"+
				"Der Kanal wird geschlossen.", colorRed)
		reason = "Ungültiger Spieler-Tag"
		collector.AddEvent(oplog.WARNING, "Ungültiger Spieler-Tag nach %d Versuchen", workflow.TagAttempts)
	default:
		notice = embed("❌ Ein Fehler ist aufgetreten",
			fmt.Sprintf("Fehler: %s\nBitte wende dich an das Team.", cause), colorRed)
		reason = "Fehler"
		collector.AddEvent(oplog.ERROR, "Fehler: %s", cause)
	}

	if _, err := b.discord.ChannelMessageSendEmbed(channelID, notice); err != nil {
		log.Error().Msgf("Could not post closure notice: %s", err)
	}

	dm := embed("❌ Dein Ticket wurde geschlossen",
		fmt.Sprintf("Deine Bewerbung wurde abgebrochen, weil %s aufgetreten ist.\n"+
			"Bitte starte die Bewerbung erneut oder kontaktiere das Team für Unterstützung.",
			strings.ToLower(reason)), colorRed)
	if err := b.sendDM(user.ID, dm, nil); err != nil {
		collector.AddEvent(oplog.WARNING, "DM konnte nicht gesendet werden")
	} else {
		collector.AddEvent(oplog.INFO, "DM gesendet: %s", reason)
	}

	b.deleteTicket(channelID)
	collector.Flush("Abgebrochen", oplog.ColorFailure, b.logPoster(guildID))
}

// deleteTicket removes a ticket channel and any state keyed on it
func (b *Bot) deleteTicket(channelID string) {
	if _, err := b.discord.ChannelDelete(channelID); err != nil {
		log.Error().Msgf("Could not delete channel %s: %s", channelID, err)
	}
	b.pendingMu.Lock()
	delete(b.pending, channelID)
	b.pendingMu.Unlock()
	b.cooldowns.Forget(channelID)
}

func (b *Bot) pendingFor(channelID string) *pendingApplication {
	b.pendingMu.Lock()
	defer b.pendingMu.Unlock()
	return b.pending[channelID]
}

// handleFAQ shows the FAQ to the caller only
func (b *Bot) handleFAQ(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.respondEmbed(i, embed("❓ Häufige Fragen (FAQ)", config.FAQText, colorBlue), true)

	user := interactionUser(i)
	collector := oplog.New("FAQ-Anzeige", user.ID, user.Username, i.ChannelID)
	collector.AddEvent(oplog.INFO, "FAQ angezeigt")
	collector.Flush("Abgeschlossen", oplog.ColorSuccess, b.logPoster(i.GuildID))
}

// handleAccept grants the member role and archives the application
func (b *Bot) handleAccept(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)
	collector := oplog.New("Bewerbungsbearbeitung", user.ID, user.Username, i.ChannelID)
	collector.AddEvent(oplog.INFO, "Bewerbungsbearbeitung gestartet")

	if !b.isStaff(i.GuildID, i.Member) {
		b.denyUnauthorized(i)
		collector.AddEvent(oplog.WARNING, "Unbefugter Zugriff")
		collector.Flush("Abgebrochen", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}

	pending := b.pendingFor(i.ChannelID)
	if pending == nil {
		b.respondEmbed(i, embed("⚠️ Fehler", "Keine offene Bewerbung in diesem Kanal.", colorOrange), true)
		collector.AddEvent(oplog.ERROR, "Keine offene Bewerbung im Kanal gefunden")
		collector.Flush("Abgebrochen", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}

	if b.cfg.MemberRoleID == "" {
		b.respondEmbed(i, embed("⚠️ Fehler", "Member-Rolle nicht gefunden.", colorOrange), true)
		collector.AddEvent(oplog.ERROR, "Fehler: Member-Rolle nicht gefunden")
		collector.Flush("Abgebrochen", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}
	if err := s.GuildMemberRoleAdd(i.GuildID, pending.applicant.ID, b.cfg.MemberRoleID); err != nil {
		b.respondEmbed(i, embed("⚠️ Fehler", "Member-Rolle konnte nicht zugewiesen werden.", colorOrange), true)
		collector.AddEvent(oplog.ERROR, "Fehler bei der Rollenzuweisung: %s", err)
		collector.Flush("Abgebrochen", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}
	collector.AddEvent(oplog.INFO, "Mitgliederrolle zugewiesen")

	clanLink := fmt.Sprintf("https://link.clashofclans.com/de?action=OpenClanProfile&tag=%s",
		strings.TrimPrefix(b.cfg.ClanTag, "#"))
	welcome := b.acceptanceEmbed(pending.applicant, clanLink)
	linkButton := []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "🏰 Clan beitreten", Style: discordgo.LinkButton, URL: clanLink},
		}},
	}

	if err := b.sendDM(pending.applicant.ID, welcome, linkButton); err != nil {
		collector.AddEvent(oplog.WARNING, "Clan-Link-DM konnte nicht gesendet werden")
	} else {
		collector.AddEvent(oplog.INFO, "Clan-Link-DM gesendet")
	}

	b.discord.ChannelMessageSendComplex(i.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{welcome},
		Components: linkButton,
	})
	b.discord.ChannelMessageSendComplex(i.ChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed("🎉 Bewerbung angenommen!",
			fmt.Sprintf("Willkommen im Clan, <@%s>!", pending.applicant.ID), colorGreen)},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "🔒 Ticket schließen", Style: discordgo.DangerButton, CustomID: CUSTOM_ID_CLOSE_TICKET},
				discordgo.Button{Label: "📝 Feedback geben", Style: discordgo.PrimaryButton, CustomID: CUSTOM_ID_FEEDBACK},
			}},
		},
	})

	if err := b.persistApplication(pending, store.STATUS_ACCEPTED, "", user.Username); err != nil {
		b.respondEmbed(i, embed("⚠️ Fehler", "Die Bewerbung konnte nicht gespeichert werden.", colorOrange), true)
		collector.AddEvent(oplog.ERROR, "Speichern fehlgeschlagen: %s", err)
		collector.Flush("Fehler", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}

	b.respondEmbed(i, embed("✅ Erfolg",
		"Bewerbung angenommen. Der Bewerber hat einen Clan-Link erhalten.", colorGreen), true)

	if _, err := b.discord.ChannelEdit(i.ChannelID, &discordgo.ChannelEdit{
		Name: acceptedPrefix + truncateName(pending.applicant.Username),
	}); err != nil {
		log.Warn().Msgf("Could not rename ticket channel: %s", err)
	}

	b.postDecisionSummary(i.ChannelID, pending.applicant, user, true)
	collector.AddEvent(oplog.INFO, "Bewerbung angenommen von %s", user.Username)
	collector.Flush("Angenommen", oplog.ColorSuccess, b.logPoster(i.GuildID))
}

func (b *Bot) acceptanceEmbed(applicant *discordgo.User, clanLink string) *discordgo.MessageEmbed {
	funfact := config.FunFacts[rand.Intn(len(config.FunFacts))]
	// The countdown is static text, not an animated counter
	countdown := "⏳ **Clanbeitritt in 5... 4... 3... 2... 1...**"
	return &discordgo.MessageEmbed{
		Title: "☢️ Willkommen bei Operation-Oluja! ☢️",
		Description: fmt.Sprintf(
			"**<@%s>, du bist offiziell angenommen!**\n\n%s\n\n**Fun Fact:** %s\n\n"+
				"Klicke auf den Button, um direkt unserem Clan beizutreten! 🎉",
			applicant.ID, countdown, funfact),
		Color:     colorGold,
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: clanLogoURL},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Clan-Link", Value: fmt.Sprintf("[🏰 Direkt beitreten](%s)", clanLink)},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Wir freuen uns auf dich! 🎈🎉"},
	}
}

// persistApplication writes the terminal record to the store and the
// legacy JSON archive
func (b *Bot) persistApplication(pending *pendingApplication, status, reason, handledBy string) error {
	answer := func(i int) string {
		if i < len(pending.answers) {
			return pending.answers[i]
		}
		return ""
	}
	record := store.Application{
		ApplicantName: pending.applicant.Username,
		ApplicantID:   pending.applicant.ID,
		ApplyType:     pending.applyType,
		PlayerTag:     answer(0),
		Strategies:    answer(1),
		TownhallLevel: answer(2),
		Status:        status,
		Reason:        reason,
		HandledBy:     handledBy,
	}
	if err := b.store.AddApplication(record); err != nil {
		return err
	}
	return b.archive.Add(archive.Record{
		ApplicantName: record.ApplicantName,
		ApplicantID:   record.ApplicantID,
		ApplyType:     record.ApplyType,
		PlayerTag:     record.PlayerTag,
		Strategies:    record.Strategies,
		TownhallLevel: record.TownhallLevel,
		Status:        record.Status,
		Reason:        record.Reason,
		HandledBy:     record.HandledBy,
	})
}

func (b *Bot) postDecisionSummary(channelID string, applicant, moderator *discordgo.User, accepted bool) {
	title := "🎉 Bewerbungsprozess abgeschlossen"
	status := "Angenommen :white_check_mark:"
	color := colorGreen
	if !accepted {
		title = "❌ Bewerbungsprozess abgeschlossen"
		status = "Abgelehnt :x:"
		color = colorRed
	}
	summary := &discordgo.MessageEmbed{
		Title: title,
		Description: fmt.Sprintf("**Bewerber:** <@%s> (%s)\n**Moderatoren:** <@%s> (%s)\n**Status:** %s",
			applicant.ID, applicant.Username, moderator.ID, moderator.Username, status),
		Color:     color,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: clanLogoURL},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Operation-Oluja | Abschluss"},
	}
	if _, err := b.discord.ChannelMessageSendEmbed(channelID, summary); err != nil {
		log.Warn().Msgf("Could not post decision summary: %s", err)
	}
}

// handleDeny opens the reason modal; the decision happens on submit
func (b *Bot) handleDeny(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !b.isStaff(i.GuildID, i.Member) {
		b.denyUnauthorized(i)
		user := interactionUser(i)
		collector := oplog.New("Bewerbungsbearbeitung", user.ID, user.Username, i.ChannelID)
		collector.AddEvent(oplog.WARNING, "Unbefugter Zugriff")
		collector.Flush("Abgebrochen", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: CUSTOM_ID_DENY_MODAL,
			Title:    "Bewerbung ablehnen",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:  "deny_reason",
						Label:     "Grund für die Ablehnung (optional)",
						Style:     discordgo.TextInputParagraph,
						Required:  false,
						MaxLength: 300,
					},
				}},
			},
		},
	})
	if err != nil {
		log.Error().Msgf("Could not open deny modal: %s", err)
	}
}

// handleDenySubmit posts the reason, informs the applicant and tears
// the ticket down
func (b *Bot) handleDenySubmit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.deferEphemeral(i)

	user := interactionUser(i)
	collector := oplog.New("Bewerbungsbearbeitung", user.ID, user.Username, i.ChannelID)
	collector.AddEvent(oplog.INFO, "Bewerbungsbearbeitung gestartet")

	pending := b.pendingFor(i.ChannelID)
	if pending == nil {
		b.followupEmbed(i, embed("⚠️ Fehler", "Keine offene Bewerbung in diesem Kanal.", colorOrange))
		collector.AddEvent(oplog.ERROR, "Keine offene Bewerbung im Kanal gefunden")
		collector.Flush("Abgebrochen", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}

	reason := strings.TrimSpace(modalInputValue(i.ModalSubmitData(), "deny_reason"))
	if reason == "" {
		reason = "Kein Grund angegeben."
	}

	denyNotice := &discordgo.MessageEmbed{
		Title: "❌ Bewerbung abgelehnt",
		Description: fmt.Sprintf("<@%s>, leider konnten wir dich nicht aufnehmen.\n**Grund:** %s",
			pending.applicant.ID, reason),
		Color: colorRed,
	}
	b.discord.ChannelMessageSendEmbed(i.ChannelID, denyNotice)
	time.Sleep(2 * time.Second)

	dm := embed("❌ Deine Bewerbung wurde abgelehnt",
		"Leider wurde deine Bewerbung abgelehnt. Du kannst dich in 2 Wochen erneut bewerben.", colorRed)
	dm.Fields = append(dm.Fields, &discordgo.MessageEmbedField{Name: "Grund", Value: reason})
	var lines []string
	for idx := range pending.questions {
		lines = append(lines, fmt.Sprintf("**Frage %d:** %s", idx+1, pending.answers[idx]))
	}
	dm.Fields = append(dm.Fields, &discordgo.MessageEmbedField{
		Name:  "Bewerbungszusammenfassung",
		Value: strings.Join(lines, "\n"),
	})
	if err := b.sendDM(pending.applicant.ID, dm, nil); err != nil {
		collector.AddEvent(oplog.WARNING, "Ablehnungs-DM konnte nicht gesendet werden")
	} else {
		collector.AddEvent(oplog.INFO, "Ablehnungs-DM gesendet")
	}

	if err := b.persistApplication(pending, store.STATUS_DENIED, reason, user.Username); err != nil {
		b.followupEmbed(i, embed("⚠️ Fehler", "Die Bewerbung konnte nicht gespeichert werden.", colorOrange))
		collector.AddEvent(oplog.ERROR, "Speichern fehlgeschlagen: %s", err)
		collector.Flush("Fehler", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}

	result := "Bewerbung abgelehnt und DM gesendet."
	color := colorGreen
	if collector.HasErrors() {
		result = "Bewerbung abgelehnt, aber DM konnte nicht zugestellt werden."
		color = colorOrange
	}
	b.followupEmbed(i, embed("✅ Erfolg", result, color))

	b.postDecisionSummary(i.ChannelID, pending.applicant, user, false)
	collector.AddEvent(oplog.INFO, "Bewerbung abgelehnt von %s. Grund: %s", user.Username, reason)

	b.deleteTicket(i.ChannelID)
	collector.Flush("Abgelehnt", oplog.ColorFailure, b.logPoster(i.GuildID))
}

// handleNotifyTeam pings the staff role, rate limited per channel
func (b *Bot) handleNotifyTeam(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)
	collector := oplog.New("Team-Benachrichtigung", user.ID, user.Username, i.ChannelID)
	collector.AddEvent(oplog.INFO, "Benachrichtigung gestartet")

	role, err := b.adminRole(i.GuildID)
	if err != nil {
		b.respondEmbed(i, embed("⚠️ Fehler", "Admin-Rolle nicht gefunden.", colorOrange), true)
		collector.AddEvent(oplog.ERROR, "Fehler: Admin-Rolle nicht gefunden")
		collector.Flush("Abgebrochen", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}

	remaining, ok := b.cooldowns.Try(i.ChannelID)
	if !ok {
		b.respondEmbed(i, embed("🚫 Cooldown",
			fmt.Sprintf("Das Team kann erst in %d Minute(n) erneut benachrichtigt werden.", remaining), colorRed), true)
		collector.AddEvent(oplog.WARNING, "Cooldown: %d Minuten verbleibend", remaining)
		collector.Flush("Abgebrochen", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}

	b.respondEmbed(i, embed("📢 Team benachrichtigt",
		fmt.Sprintf("<@&%s> - Bitte beachtet diese Bewerbung!", role.ID), colorBlue), false)
	collector.AddEvent(oplog.INFO, "Team benachrichtigt")
	collector.Flush("Abgeschlossen", oplog.ColorSuccess, b.logPoster(i.GuildID))
}

// handleCloseTicket deletes an accepted ticket channel after a short notice
func (b *Bot) handleCloseTicket(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)
	collector := oplog.New("Ticket-Schließung", user.ID, user.Username, i.ChannelID)
	collector.AddEvent(oplog.INFO, "Ticket-Schließung gestartet")

	if !b.isStaff(i.GuildID, i.Member) {
		b.respondEmbed(i, embed("❌ Keine Berechtigung", "Du hast keine Berechtigung.", colorRed), true)
		collector.AddEvent(oplog.WARNING, "Unbefugter Zugriff")
		collector.Flush("Abgebrochen", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}

	b.respondEmbed(i, embed("🔒 Ticket wird geschlossen", "Der Kanal wird in Kürze gelöscht...", colorBlue), true)
	collector.AddEvent(oplog.INFO, "Ticket geschlossen")
	time.Sleep(2 * time.Second)
	b.deleteTicket(i.ChannelID)
	collector.Flush("Abgeschlossen", oplog.ColorSuccess, b.logPoster(i.GuildID))
}

// handleFeedbackButton opens the feedback modal
func (b *Bot) handleFeedbackButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: CUSTOM_ID_FEEDBACK_MODAL,
			Title:    "Feedback zur Bewerbung",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:  "feedback_text",
						Label:     "Dein Feedback (optional)",
						Style:     discordgo.TextInputParagraph,
						Required:  false,
						MaxLength: 500,
					},
				}},
			},
		},
	})
	if err != nil {
		log.Error().Msgf("Could not open feedback modal: %s", err)
	}
}

// handleFeedbackSubmit forwards the feedback to the log channel
func (b *Bot) handleFeedbackSubmit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)
	collector := oplog.New("Feedback", user.ID, user.Username, i.ChannelID)
	collector.AddEvent(oplog.INFO, "Feedback eingereicht")

	feedback := strings.TrimSpace(modalInputValue(i.ModalSubmitData(), "feedback_text"))
	display := feedback
	if display == "" {
		display = "*Kein Feedback gegeben*"
	}

	if channel, err := b.channelByName(i.GuildID, b.cfg.LogChannelName); err == nil {
		b.discord.ChannelMessageSendEmbed(channel.ID, embed("📣 Bewerber-Feedback",
			fmt.Sprintf("Feedback von <@%s>:\n%s", user.ID, display), colorGreen))
	}

	b.respondEmbed(i, embed("✅ Danke!", "Vielen Dank für dein Feedback! 🙏", colorGreen), true)
	if feedback == "" {
		feedback = "Kein Text"
	}
	collector.AddEvent(oplog.INFO, "Feedback: %s", feedback)
	collector.Flush("Abgeschlossen", oplog.ColorSuccess, b.logPoster(i.GuildID))
}

// modalInputValue digs the value of one text input out of a modal submit
func modalInputValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, component := range actionsRow.Components {
			if input, ok := component.(*discordgo.TextInput); ok && input.CustomID == customID {
				return input.Value
			}
		}
	}
	return ""
}
