package bot

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/JelacicBan/OlujaBot/internal/archive"
	"github.com/JelacicBan/OlujaBot/internal/config"
	"github.com/JelacicBan/OlujaBot/internal/poll"
	"github.com/JelacicBan/OlujaBot/internal/store"
	"github.com/JelacicBan/OlujaBot/internal/workflow"
)

// Bot wires the discord session to the store, the poll registry and the
// application workflow. All mutable state lives here, explicitly owned,
// and is guarded where concurrent handlers can reach it
type Bot struct {
	cfg     *config.Config
	store   *store.Store
	archive *archive.Archive
	discord *discordgo.Session

	polls     *poll.Registry
	cooldowns *workflow.Cooldowns

	// pending reply waiters for the application Q&A, keyed by channel+user
	waitersMu sync.Mutex
	waiters   map[waiterKey]chan *discordgo.Message

	// applications awaiting a staff decision, keyed by ticket channel
	pendingMu sync.Mutex
	pending   map[string]*pendingApplication

	// cancellable mute expiry timers keyed by guild+user
	mutesMu    sync.Mutex
	muteTimers map[string]*time.Timer

	done chan struct{}
}

type waiterKey struct {
	channelID string
	userID    string
}

func New(cfg *config.Config, st *store.Store) (*Bot, error) {
	discord, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("could not create discord session: %w", err)
	}
	discord.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentMessageContent

	bot := &Bot{
		cfg:        cfg,
		store:      st,
		archive:    archive.New(cfg.ArchiveFile),
		discord:    discord,
		polls:      poll.NewRegistry(),
		cooldowns:  workflow.NewCooldowns(cfg.NotifyCooldown),
		waiters:    map[waiterKey]chan *discordgo.Message{},
		pending:    map[string]*pendingApplication{},
		muteTimers: map[string]*time.Timer{},
		done:       make(chan struct{}),
	}

	discord.AddHandler(bot.onReady)
	discord.AddHandler(bot.onInteraction)
	discord.AddHandler(bot.onMessage)
	discord.AddHandler(bot.onReactionAdd)
	discord.AddHandler(bot.onReactionRemove)
	discord.AddHandler(bot.onMemberJoin)
	discord.AddHandler(bot.onMemberLeave)

	return bot, nil
}

// Run opens the session, registers the commands and the background jobs,
// then blocks until an interrupt arrives
func (b *Bot) Run() error {
	if err := b.discord.Open(); err != nil {
		return fmt.Errorf("could not open discord session: %w", err)
	}
	defer b.discord.Close()

	if err := b.registerCommands(); err != nil {
		return err
	}

	go b.checkpointLoop()
	go b.applicationReminderLoop()
	go b.warReminderLoop()

	log.Info().Msg("Bot is running, press ctrl+c to exit")
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	<-interrupt

	close(b.done)
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, ready *discordgo.Ready) {
	log.Info().Msgf("Logged in as %s (ID: %s)", ready.User.Username, ready.User.ID)
	s.UpdateWatchStatus(0, "Clan Bewerbungen")
}

// onMessage feeds pending application waiters and answers the FAQ
// auto-reply; everything else is ignored
func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}

	b.waitersMu.Lock()
	waiter, ok := b.waiters[waiterKey{m.ChannelID, m.Author.ID}]
	b.waitersMu.Unlock()
	if ok {
		select {
		case waiter <- m.Message:
		default:
		}
		return
	}

	b.maybeAnswerFAQ(s, m)
}

// awaitReply blocks until the given user posts in the given channel,
// or the timeout elapses
func (b *Bot) awaitReply(channelID, userID string, timeout time.Duration) (*discordgo.Message, bool) {
	key := waiterKey{channelID, userID}
	waiter := make(chan *discordgo.Message, 1)

	b.waitersMu.Lock()
	b.waiters[key] = waiter
	b.waitersMu.Unlock()
	defer func() {
		b.waitersMu.Lock()
		delete(b.waiters, key)
		b.waitersMu.Unlock()
	}()

	select {
	case msg := <-waiter:
		return msg, true
	case <-time.After(timeout):
		return nil, false
	}
}

// adminRole finds the configured staff role in a guild
func (b *Bot) adminRole(guildID string) (*discordgo.Role, error) {
	roles, err := b.discord.GuildRoles(guildID)
	if err != nil {
		return nil, fmt.Errorf("could not list roles of guild %s: %w", guildID, err)
	}
	for _, role := range roles {
		if role.Name == b.cfg.AdminRoleName {
			return role, nil
		}
	}
	return nil, fmt.Errorf("no role named %s in guild %s", b.cfg.AdminRoleName, guildID)
}

// isStaff reports whether the member holds the staff role
func (b *Bot) isStaff(guildID string, member *discordgo.Member) bool {
	if member == nil {
		return false
	}
	role, err := b.adminRole(guildID)
	if err != nil {
		log.Warn().Msgf("Staff check failed: %s", err)
		return false
	}
	for _, id := range member.Roles {
		if id == role.ID {
			return true
		}
	}
	return false
}

func (b *Bot) channelByName(guildID, name string) (*discordgo.Channel, error) {
	channels, err := b.discord.GuildChannels(guildID)
	if err != nil {
		return nil, fmt.Errorf("could not list channels of guild %s: %w", guildID, err)
	}
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildText && ch.Name == name {
			return ch, nil
		}
	}
	return nil, fmt.Errorf("no channel named %s in guild %s", name, guildID)
}

// logPoster returns the poster every collector flushes through:
// one summary embed into the guild's log channel
func (b *Bot) logPoster(guildID string) func(*discordgo.MessageEmbed) error {
	return func(embed *discordgo.MessageEmbed) error {
		channel, err := b.channelByName(guildID, b.cfg.LogChannelName)
		if err != nil {
			return err
		}
		_, err = b.discord.ChannelMessageSendEmbed(channel.ID, embed)
		return err
	}
}

// sendDM delivers an embed to a user's DM channel.
// Callers treat failures as warnings, never as fatal
func (b *Bot) sendDM(userID string, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	dm, err := b.discord.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("could not open DM channel for %s: %w", userID, err)
	}
	_, err = b.discord.ChannelMessageSendComplex(dm.ID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	})
	if err != nil {
		return fmt.Errorf("could not deliver DM to %s: %w", userID, err)
	}
	return nil
}
