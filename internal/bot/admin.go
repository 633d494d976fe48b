package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/JelacicBan/OlujaBot/internal/oplog"
)

// handleSetup posts the application menu into the chosen channel
func (b *Bot) handleSetup(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)
	collector := oplog.New("Setup", user.ID, user.Username, i.ChannelID)

	if !b.isStaff(i.GuildID, i.Member) {
		b.denyUnauthorized(i)
		collector.AddEvent(oplog.WARNING, "Unbefugter Zugriff")
		collector.Flush("Abgebrochen", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}

	options := optionMap(i)
	channel := options["channel"].ChannelValue(s)

	// The log channel must exist before the first collector flushes
	if _, err := b.channelByName(i.GuildID, b.cfg.LogChannelName); err != nil {
		created, err := s.GuildChannelCreate(i.GuildID, b.cfg.LogChannelName, discordgo.ChannelTypeGuildText)
		if err != nil {
			b.respondEmbed(i, embed("⚠️ Fehler", "Der Log-Kanal konnte nicht erstellt werden.", colorOrange), true)
			collector.AddEvent(oplog.ERROR, "Log-Kanal konnte nicht erstellt werden: %s", err)
			collector.Flush("Fehler", oplog.ColorFailure, b.logPoster(i.GuildID))
			return
		}
		collector.AddEvent(oplog.INFO, "Log-Kanal #%s erstellt", created.Name)
	}

	menu := &discordgo.MessageEmbed{
		Title: "📋 Bewerbung bei Operation-Oluja",
		Description: "Wähle unten aus, wofür du dich bewerben möchtest.\n\n" +
			"Nach der Auswahl wird ein privater Kanal für dich erstellt, " +
			"in dem du ein paar Fragen beantwortest.",
		Color:     colorGold,
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: clanLogoURL},
		Footer:    &discordgo.MessageEmbedFooter{Text: brandFooter},
	}

	var menuOptions []discordgo.SelectMenuOption
	for _, applyType := range b.cfg.ApplyTypes() {
		menuOptions = append(menuOptions, discordgo.SelectMenuOption{
			Label: applyType,
			Value: applyType,
		})
	}

	_, err := s.ChannelMessageSendComplex(channel.ID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{menu},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    CUSTOM_ID_APPLY_SELECT,
					Placeholder: "Bewerbungsart auswählen...",
					Options:     menuOptions,
				},
			}},
		},
	})
	if err != nil {
		b.respondEmbed(i, embed("⚠️ Fehler", "Das Bewerbungsmenü konnte nicht gesendet werden.", colorOrange), true)
		collector.AddEvent(oplog.ERROR, "Menü konnte nicht gesendet werden: %s", err)
		collector.Flush("Fehler", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}

	b.respondEmbed(i, embed("✅ Setup abgeschlossen",
		fmt.Sprintf("Das Bewerbungsmenü wurde in <#%s> eingerichtet.", channel.ID), colorGreen), true)
	collector.AddEvent(oplog.INFO, "Bewerbungsmenü eingerichtet in #%s", channel.Name)
	collector.Flush("Abgeschlossen", oplog.ColorSuccess, b.logPoster(i.GuildID))
}

// handleEditQuestions replaces one application question at runtime
func (b *Bot) handleEditQuestions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)
	collector := oplog.New("Fragenbearbeitung", user.ID, user.Username, i.ChannelID)

	if !b.isStaff(i.GuildID, i.Member) {
		b.denyUnauthorized(i)
		collector.AddEvent(oplog.WARNING, "Unbefugter Zugriff")
		collector.Flush("Abgebrochen", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}

	options := optionMap(i)
	applyType := options["bewerbungsart"].StringValue()
	index := int(options["question_index"].IntValue())
	newQuestion := options["new_question"].StringValue()

	if err := b.cfg.SetQuestion(applyType, index, newQuestion); err != nil {
		b.respondEmbed(i, embed("⚠️ Fehler", fmt.Sprintf("Frage konnte nicht geändert werden: %s", err), colorOrange), true)
		collector.AddEvent(oplog.ERROR, "Fragenänderung fehlgeschlagen: %s", err)
		collector.Flush("Fehler", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}

	b.respondEmbed(i, embed("✅ Frage aktualisiert",
		fmt.Sprintf("Frage %d der **%s** lautet jetzt:\n%s", index, applyType, newQuestion), colorGreen), true)
	collector.AddEvent(oplog.INFO, "Frage %d der %s geändert", index, applyType)
	collector.Flush("Abgeschlossen", oplog.ColorSuccess, b.logPoster(i.GuildID))
}
