package bot

import (
	"bytes"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/JelacicBan/OlujaBot/internal/archive"
	"github.com/JelacicBan/OlujaBot/internal/oplog"
	"github.com/JelacicBan/OlujaBot/internal/store"
)

// handleApplicationExport attaches a CSV of every archived application,
// rendered from the legacy JSON archive
func (b *Bot) handleApplicationExport(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)
	collector := oplog.New("Bewerbungsexport", user.ID, user.Username, i.ChannelID)

	if !b.isStaff(i.GuildID, i.Member) {
		b.denyUnauthorized(i)
		collector.AddEvent(oplog.WARNING, "Unbefugter Zugriff")
		collector.Flush("Abgebrochen", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}

	records, err := b.archive.Load()
	if err != nil {
		b.respondEmbed(i, embed("⚠️ Fehler", "Das Bewerbungsarchiv konnte nicht gelesen werden.", colorOrange), true)
		collector.AddEvent(oplog.ERROR, "Archiv konnte nicht gelesen werden: %s", err)
		collector.Flush("Fehler", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}
	b.sendExport(i, collector, records, "", "bewerbungen")
}

// handleAcceptedExport attaches a CSV of the accepted applicants,
// rendered from the relational store
func (b *Bot) handleAcceptedExport(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)
	collector := oplog.New("Bewerberexport", user.ID, user.Username, i.ChannelID)

	if !b.isStaff(i.GuildID, i.Member) {
		b.denyUnauthorized(i)
		collector.AddEvent(oplog.WARNING, "Unbefugter Zugriff")
		collector.Flush("Abgebrochen", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}

	apps, err := b.store.Applications(store.STATUS_ACCEPTED)
	if err != nil {
		b.respondEmbed(i, embed("⚠️ Fehler", "Die Bewerbungen konnten nicht geladen werden.", colorOrange), true)
		collector.AddEvent(oplog.ERROR, "Laden fehlgeschlagen: %s", err)
		collector.Flush("Fehler", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}
	records := make([]archive.Record, 0, len(apps))
	for _, app := range apps {
		records = append(records, archive.Record{
			ApplicantName: app.ApplicantName,
			ApplicantID:   app.ApplicantID,
			ApplyType:     app.ApplyType,
			PlayerTag:     app.PlayerTag,
			Strategies:    app.Strategies,
			TownhallLevel: app.TownhallLevel,
			Status:        app.Status,
			Reason:        app.Reason,
			HandledBy:     app.HandledBy,
			Date:          app.Date,
		})
	}
	b.sendExport(i, collector, records, "", "angenommene_bewerber")
}

func (b *Bot) sendExport(i *discordgo.InteractionCreate, collector *oplog.Collector, records []archive.Record, statusFilter, baseName string) {
	exported := 0
	for _, record := range records {
		if statusFilter == "" || record.Status == statusFilter {
			exported++
		}
	}
	if exported == 0 {
		b.respondEmbed(i, embed("📭 Keine Daten", "Es gibt keine passenden Bewerbungen zu exportieren.", colorBlue), true)
		collector.AddEvent(oplog.INFO, "Kein Export: Archiv leer")
		collector.Flush("Abgeschlossen", oplog.ColorSuccess, b.logPoster(i.GuildID))
		return
	}

	csvData, err := archive.ExportCSV(records, statusFilter)
	if err != nil {
		b.respondEmbed(i, embed("⚠️ Fehler", "Der CSV-Export ist fehlgeschlagen.", colorOrange), true)
		collector.AddEvent(oplog.ERROR, "CSV-Export fehlgeschlagen: %s", err)
		collector.Flush("Fehler", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}

	filename := fmt.Sprintf("%s_%s.csv", baseName, time.Now().Format("2006-01-02"))

	// Preferred destination is the archive channel; without one the file
	// goes into the ephemeral reply instead
	if archiveChannel, err := b.channelByName(i.GuildID, b.cfg.ArchiveChannel); err == nil {
		_, err = b.discord.ChannelMessageSendComplex(archiveChannel.ID, &discordgo.MessageSend{
			Embeds: []*discordgo.MessageEmbed{embed("📤 Bewerbungsexport",
				fmt.Sprintf("**%d** Bewerbung(en), exportiert von <@%s>.", exported, interactionUser(i).ID), colorGreen)},
			Files: []*discordgo.File{
				{Name: filename, ContentType: "text/csv", Reader: bytes.NewReader(csvData)},
			},
		})
		if err != nil {
			collector.AddEvent(oplog.ERROR, "Export konnte nicht gesendet werden: %s", err)
			collector.Flush("Fehler", oplog.ColorFailure, b.logPoster(i.GuildID))
			return
		}
		b.respondEmbed(i, embed("✅ Export fertig",
			fmt.Sprintf("**%d** Bewerbung(en) nach <#%s> exportiert.", exported, archiveChannel.ID), colorGreen), true)
	} else {
		err = b.discord.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Embeds: []*discordgo.MessageEmbed{embed("📤 Export fertig",
					fmt.Sprintf("**%d** Bewerbung(en) exportiert.", exported), colorGreen)},
				Files: []*discordgo.File{
					{Name: filename, ContentType: "text/csv", Reader: bytes.NewReader(csvData)},
				},
				Flags: discordgo.MessageFlagsEphemeral,
			},
		})
		if err != nil {
			collector.AddEvent(oplog.ERROR, "Antwort fehlgeschlagen: %s", err)
			collector.Flush("Fehler", oplog.ColorFailure, b.logPoster(i.GuildID))
			return
		}
	}

	collector.AddEvent(oplog.INFO, "%d Bewerbung(en) exportiert als %s", exported, filename)
	collector.Flush("Abgeschlossen", oplog.ColorSuccess, b.logPoster(i.GuildID))
}
