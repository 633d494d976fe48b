package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Component and modal custom ids
const (
	CUSTOM_ID_APPLY_SELECT   = "bewerbung_select"
	CUSTOM_ID_FAQ            = "faq_button"
	CUSTOM_ID_ACCEPT         = "accept_button"
	CUSTOM_ID_DENY           = "deny_button"
	CUSTOM_ID_NOTIFY_TEAM    = "notify_team"
	CUSTOM_ID_CLOSE_TICKET   = "close_ticket"
	CUSTOM_ID_FEEDBACK       = "feedback_button"
	CUSTOM_ID_DENY_MODAL     = "deny_reason_modal"
	CUSTOM_ID_FEEDBACK_MODAL = "feedback_modal"
)

type interactionHandler func(s *discordgo.Session, i *discordgo.InteractionCreate)

// commandDefinitions declares every slash command the bot registers
func commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "setup",
			Description: "Setup für den Bewerbungs-Bot",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "Channel für das Bewerbungsmenü",
					Required:    true,
					ChannelTypes: []discordgo.ChannelType{
						discordgo.ChannelTypeGuildText,
					},
				},
			},
		},
		{
			Name:        "bewerbungsexport",
			Description: "Exportiert alle Bewerbungen als CSV (Admins only)",
		},
		{
			Name:        "bewerberexport",
			Description: "Exportiere angenommene Bewerber als CSV",
		},
		{
			Name:        "editquestions",
			Description: "Bearbeite die Bewerbungsfragen (Admins only)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "bewerbungsart",
					Description: "Bewerbungsart",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "question_index",
					Description: "Index der Frage (1-3)",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "new_question",
					Description: "Neue Frage",
					Required:    true,
				},
			},
		},
		{
			Name:        "cwl-req",
			Description: "Starte eine Umfrage für CWL-Teilnahme",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "duration",
					Description: "Dauer der Umfrage in Minuten",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "Zielkanal (optional)",
					Required:    false,
				},
			},
		},
		{
			Name:        "mute",
			Description: "Stumm schalten eines Mitglieds",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "member",
					Description: "Mitglied",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "duration",
					Description: "Dauer in Minuten",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Grund",
					Required:    false,
				},
			},
		},
		{
			Name:        "unmute",
			Description: "Stummschaltung eines Mitglieds aufheben",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "member",
					Description: "Mitglied",
					Required:    true,
				},
			},
		},
		{
			Name:        "warn",
			Description: "Warnen eines Mitglieds",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "member",
					Description: "Mitglied",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Grund",
					Required:    false,
				},
			},
		},
		{
			Name:        "clanstats",
			Description: "Zeige Statistiken des Clans an",
		},
		{
			Name:        "memberstats",
			Description: "Zeige Statistiken eines Mitglieds an",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "member",
					Description: "Mitglied",
					Required:    true,
				},
			},
		},
		{
			Name:        "warstatus",
			Description: "Zeige den aktuellen Kriegsstatus an",
		},
	}
}

func (b *Bot) registerCommands() error {
	_, err := b.discord.ApplicationCommandBulkOverwrite(b.discord.State.User.ID, "", commandDefinitions())
	if err != nil {
		return fmt.Errorf("could not register application commands: %w", err)
	}
	log.Info().Msg("Application commands registered")
	return nil
}

// commandRoutes maps command names to their handlers
func (b *Bot) commandRoutes() map[string]interactionHandler {
	return map[string]interactionHandler{
		"setup":            b.handleSetup,
		"bewerbungsexport": b.handleApplicationExport,
		"bewerberexport":   b.handleAcceptedExport,
		"editquestions":    b.handleEditQuestions,
		"cwl-req":          b.handlePollRequest,
		"mute":             b.handleMute,
		"unmute":           b.handleUnmute,
		"warn":             b.handleWarn,
		"clanstats":        b.handleClanStats,
		"memberstats":      b.handleMemberStats,
		"warstatus":        b.handleWarStatus,
	}
}

// componentRoutes maps component custom ids to their handlers
func (b *Bot) componentRoutes() map[string]interactionHandler {
	return map[string]interactionHandler{
		CUSTOM_ID_APPLY_SELECT: b.handleApplySelect,
		CUSTOM_ID_FAQ:          b.handleFAQ,
		CUSTOM_ID_ACCEPT:       b.handleAccept,
		CUSTOM_ID_DENY:         b.handleDeny,
		CUSTOM_ID_NOTIFY_TEAM:  b.handleNotifyTeam,
		CUSTOM_ID_CLOSE_TICKET: b.handleCloseTicket,
		CUSTOM_ID_FEEDBACK:     b.handleFeedbackButton,
	}
}

// modalRoutes maps modal custom ids to their handlers
func (b *Bot) modalRoutes() map[string]interactionHandler {
	return map[string]interactionHandler{
		CUSTOM_ID_DENY_MODAL:     b.handleDenySubmit,
		CUSTOM_ID_FEEDBACK_MODAL: b.handleFeedbackSubmit,
	}
}

// onInteraction routes every interaction through an explicit table
// keyed by interaction type and name/custom id
func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		if handler, ok := b.commandRoutes()[name]; ok {
			handler(s, i)
			return
		}
		log.Warn().Msgf("No handler for command %s", name)
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		if handler, ok := b.componentRoutes()[customID]; ok {
			handler(s, i)
			return
		}
		log.Warn().Msgf("No handler for component %s", customID)
	case discordgo.InteractionModalSubmit:
		customID := i.ModalSubmitData().CustomID
		if handler, ok := b.modalRoutes()[customID]; ok {
			handler(s, i)
			return
		}
		log.Warn().Msgf("No handler for modal %s", customID)
	}
}
