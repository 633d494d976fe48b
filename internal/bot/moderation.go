package bot

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/JelacicBan/OlujaBot/internal/oplog"
	"github.com/JelacicBan/OlujaBot/internal/store"
)

const mutedRoleName = "Muted"

// mutedRole finds the mute role, creating it on first use with send
// permissions denied in every text channel
func (b *Bot) mutedRole(guildID string) (*discordgo.Role, error) {
	roles, err := b.discord.GuildRoles(guildID)
	if err != nil {
		return nil, fmt.Errorf("could not list roles of guild %s: %w", guildID, err)
	}
	for _, role := range roles {
		if role.Name == mutedRoleName {
			return role, nil
		}
	}

	role, err := b.discord.GuildRoleCreate(guildID, &discordgo.RoleParams{Name: mutedRoleName})
	if err != nil {
		return nil, fmt.Errorf("could not create role %s: %w", mutedRoleName, err)
	}
	channels, err := b.discord.GuildChannels(guildID)
	if err != nil {
		return nil, fmt.Errorf("could not list channels of guild %s: %w", guildID, err)
	}
	for _, ch := range channels {
		if ch.Type != discordgo.ChannelTypeGuildText {
			continue
		}
		err := b.discord.ChannelPermissionSet(ch.ID, role.ID,
			discordgo.PermissionOverwriteTypeRole, 0, discordgo.PermissionSendMessages)
		if err != nil {
			log.Warn().Msgf("Could not deny send permission in %s: %s", ch.Name, err)
		}
	}
	log.Info().Msgf("Created role %s in guild %s", mutedRoleName, guildID)
	return role, nil
}

func muteKey(guildID, userID string) string {
	return guildID + ":" + userID
}

func hasRole(member *discordgo.Member, roleID string) bool {
	if member == nil {
		return false
	}
	for _, id := range member.Roles {
		if id == roleID {
			return true
		}
	}
	return false
}

// handleMute assigns the mute role for a limited time and schedules
// the automatic unmute
func (b *Bot) handleMute(s *discordgo.Session, i *discordgo.InteractionCreate) {
	moderator := interactionUser(i)
	options := optionMap(i)
	target := options["member"].UserValue(s)
	duration := int(options["duration"].IntValue())
	reason := "Kein Grund angegeben"
	if opt, ok := options["reason"]; ok && opt.StringValue() != "" {
		reason = opt.StringValue()
	}

	collector := oplog.New("Stummschaltung", target.ID, target.Username, i.ChannelID)
	collector.AddEvent(oplog.INFO, "Stummschaltung angefordert von %s", moderator.Username)

	if !b.isStaff(i.GuildID, i.Member) {
		b.denyUnauthorized(i)
		collector.AddEvent(oplog.WARNING, "Unbefugter Zugriff")
		collector.Flush("Abgebrochen", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}
	if duration <= 0 {
		b.respondEmbed(i, embed("⚠️ Ungültige Dauer", "Die Dauer muss eine positive Minutenzahl sein.", colorOrange), true)
		collector.AddEvent(oplog.WARNING, "Ungültige Dauer: %d", duration)
		collector.Flush("Abgebrochen", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}

	role, err := b.mutedRole(i.GuildID)
	if err != nil {
		b.respondEmbed(i, embed("⚠️ Fehler", "Die Muted-Rolle konnte nicht vorbereitet werden.", colorOrange), true)
		collector.AddEvent(oplog.ERROR, "Muted-Rolle fehlgeschlagen: %s", err)
		collector.Flush("Abgebrochen", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}
	if err := s.GuildMemberRoleAdd(i.GuildID, target.ID, role.ID); err != nil {
		b.respondEmbed(i, embed("⚠️ Fehler", "Die Rolle konnte nicht zugewiesen werden.", colorOrange), true)
		collector.AddEvent(oplog.ERROR, "Rollenzuweisung fehlgeschlagen: %s", err)
		collector.Flush("Abgebrochen", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}

	if err := b.store.AddModerationLog(store.ModerationLog{
		UserID:    target.ID,
		UserName:  target.Username,
		Action:    store.ACTION_MUTE,
		Reason:    reason,
		Duration:  duration,
		HandledBy: moderator.Username,
	}); err != nil {
		collector.AddEvent(oplog.ERROR, "Moderationslog fehlgeschlagen: %s", err)
	}

	b.scheduleUnmute(i.GuildID, target, role.ID, duration)

	b.respondEmbed(i, embed("🔇 Stummgeschaltet",
		fmt.Sprintf("<@%s> wurde für %d Minute(n) stummgeschaltet.\n**Grund:** %s",
			target.ID, duration, reason), colorRed), false)
	collector.AddEvent(oplog.INFO, "Stummgeschaltet für %d Minuten. Grund: %s", duration, reason)
	collector.Flush("Abgeschlossen", oplog.ColorSuccess, b.logPoster(i.GuildID))
}

// scheduleUnmute arms the expiry timer for a mute, replacing any
// earlier timer for the same member
func (b *Bot) scheduleUnmute(guildID string, target *discordgo.User, roleID string, durationMinutes int) {
	key := muteKey(guildID, target.ID)
	b.mutesMu.Lock()
	if timer, ok := b.muteTimers[key]; ok {
		timer.Stop()
	}
	b.muteTimers[key] = time.AfterFunc(time.Duration(durationMinutes)*time.Minute, func() {
		b.autoUnmute(guildID, target, roleID)
	})
	b.mutesMu.Unlock()
}

// autoUnmute lifts an expired mute and records the expiry as its own
// action type, so exports distinguish it from a manual unmute
func (b *Bot) autoUnmute(guildID string, target *discordgo.User, roleID string) {
	b.mutesMu.Lock()
	delete(b.muteTimers, muteKey(guildID, target.ID))
	b.mutesMu.Unlock()

	if err := b.discord.GuildMemberRoleRemove(guildID, target.ID, roleID); err != nil {
		log.Error().Msgf("Auto unmute failed for %s: %s", target.Username, err)
		return
	}

	b.recordAutoUnmute(target)

	collector := oplog.New("Automatische Entstummung", target.ID, target.Username, "")
	collector.AddEvent(oplog.INFO, "Stummschaltung abgelaufen, Rolle entfernt")
	collector.Flush("Abgeschlossen", oplog.ColorSuccess, b.logPoster(guildID))
}

// recordAutoUnmute persists the expiry as a single Unmute (Auto) record
func (b *Bot) recordAutoUnmute(target *discordgo.User) {
	if err := b.store.AddModerationLog(store.ModerationLog{
		UserID:    target.ID,
		UserName:  target.Username,
		Action:    store.ACTION_UNMUTE_AUTO,
		Reason:    "Stummschaltung abgelaufen",
		HandledBy: "System",
	}); err != nil {
		log.Error().Msgf("Could not log auto unmute: %s", err)
	}
}

// handleUnmute lifts a mute early and cancels the pending expiry timer
func (b *Bot) handleUnmute(s *discordgo.Session, i *discordgo.InteractionCreate) {
	moderator := interactionUser(i)
	options := optionMap(i)
	target := options["member"].UserValue(s)

	collector := oplog.New("Entstummung", target.ID, target.Username, i.ChannelID)
	collector.AddEvent(oplog.INFO, "Entstummung angefordert von %s", moderator.Username)

	if !b.isStaff(i.GuildID, i.Member) {
		b.denyUnauthorized(i)
		collector.AddEvent(oplog.WARNING, "Unbefugter Zugriff")
		collector.Flush("Abgebrochen", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}

	role, err := b.mutedRole(i.GuildID)
	if err != nil {
		b.respondEmbed(i, embed("⚠️ Fehler", "Die Muted-Rolle wurde nicht gefunden.", colorOrange), true)
		collector.AddEvent(oplog.ERROR, "Muted-Rolle fehlgeschlagen: %s", err)
		collector.Flush("Abgebrochen", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}

	member, err := s.GuildMember(i.GuildID, target.ID)
	if err != nil || !hasRole(member, role.ID) {
		b.respondEmbed(i, embed("⚠️ Nicht stummgeschaltet",
			fmt.Sprintf("<@%s> ist nicht stummgeschaltet.", target.ID), colorOrange), true)
		collector.AddEvent(oplog.WARNING, "Mitglied ist nicht stummgeschaltet")
		collector.Flush("Abgebrochen", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}

	if err := s.GuildMemberRoleRemove(i.GuildID, target.ID, role.ID); err != nil {
		b.respondEmbed(i, embed("⚠️ Fehler", "Die Rolle konnte nicht entfernt werden.", colorOrange), true)
		collector.AddEvent(oplog.ERROR, "Rollenentfernung fehlgeschlagen: %s", err)
		collector.Flush("Abgebrochen", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}

	key := muteKey(i.GuildID, target.ID)
	b.mutesMu.Lock()
	if timer, ok := b.muteTimers[key]; ok {
		timer.Stop()
		delete(b.muteTimers, key)
	}
	b.mutesMu.Unlock()

	if err := b.store.AddModerationLog(store.ModerationLog{
		UserID:    target.ID,
		UserName:  target.Username,
		Action:    store.ACTION_UNMUTE,
		Reason:    "Manuell aufgehoben",
		HandledBy: moderator.Username,
	}); err != nil {
		collector.AddEvent(oplog.ERROR, "Moderationslog fehlgeschlagen: %s", err)
	}

	b.respondEmbed(i, embed("🔊 Entstummt",
		fmt.Sprintf("<@%s> kann wieder schreiben.", target.ID), colorGreen), false)
	collector.AddEvent(oplog.INFO, "Stummschaltung aufgehoben von %s", moderator.Username)
	collector.Flush("Abgeschlossen", oplog.ColorSuccess, b.logPoster(i.GuildID))
}

// handleWarn records a warning and informs the member by DM
func (b *Bot) handleWarn(s *discordgo.Session, i *discordgo.InteractionCreate) {
	moderator := interactionUser(i)
	options := optionMap(i)
	target := options["member"].UserValue(s)
	reason := "Kein Grund angegeben"
	if opt, ok := options["reason"]; ok && opt.StringValue() != "" {
		reason = opt.StringValue()
	}

	collector := oplog.New("Verwarnung", target.ID, target.Username, i.ChannelID)
	collector.AddEvent(oplog.INFO, "Verwarnung angefordert von %s", moderator.Username)

	if !b.isStaff(i.GuildID, i.Member) {
		b.denyUnauthorized(i)
		collector.AddEvent(oplog.WARNING, "Unbefugter Zugriff")
		collector.Flush("Abgebrochen", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}

	if err := b.store.AddModerationLog(store.ModerationLog{
		UserID:    target.ID,
		UserName:  target.Username,
		Action:    store.ACTION_WARN,
		Reason:    reason,
		HandledBy: moderator.Username,
	}); err != nil {
		b.respondEmbed(i, embed("⚠️ Fehler", "Die Verwarnung konnte nicht gespeichert werden.", colorOrange), true)
		collector.AddEvent(oplog.ERROR, "Moderationslog fehlgeschlagen: %s", err)
		collector.Flush("Fehler", oplog.ColorFailure, b.logPoster(i.GuildID))
		return
	}

	warnings, err := b.store.ModerationLogs(target.ID)
	warnCount := 0
	if err == nil {
		for _, entry := range warnings {
			if entry.Action == store.ACTION_WARN {
				warnCount++
			}
		}
	}

	dm := embed("⚠️ Du wurdest verwarnt",
		fmt.Sprintf("Du hast eine Verwarnung auf dem Operation-Oluja Server erhalten.\n"+
			"**Grund:** %s\n**Verwarnungen insgesamt:** %d", reason, warnCount), colorOrange)
	if err := b.sendDM(target.ID, dm, nil); err != nil {
		collector.AddEvent(oplog.WARNING, "DM konnte nicht gesendet werden")
	} else {
		collector.AddEvent(oplog.INFO, "Verwarnungs-DM gesendet")
	}

	b.respondEmbed(i, embed("⚠️ Verwarnt",
		fmt.Sprintf("<@%s> wurde verwarnt (%d insgesamt).\n**Grund:** %s",
			target.ID, warnCount, reason), colorOrange), false)
	collector.AddEvent(oplog.INFO, "Verwarnung Nr. %d. Grund: %s", warnCount, reason)
	collector.Flush("Abgeschlossen", oplog.ColorSuccess, b.logPoster(i.GuildID))
}
