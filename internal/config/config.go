package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Application types as presented in the selection menu
const (
	APPLY_TYPE_MEMBER = "Mitglieder-Bewerbung"
	APPLY_TYPE_STAFF  = "Staff-Bewerbung"
)

// Config holds everything the bot reads from the environment,
// plus the editable application questions
type Config struct {
	Token          string
	DBPath         string
	ArchiveFile    string
	AdminRoleName  string
	LogChannelName string
	ArchiveChannel string
	MemberRoleID   string
	AdminUserID    string
	ClanTag        string
	ReminderHours  int

	AnswerTimeout      time.Duration
	NotifyCooldown     time.Duration
	CheckpointInterval time.Duration

	mu        sync.RWMutex
	questions map[string][]string
}

// Load reads the .env file if present and builds the configuration.
// Only the bot token is mandatory
func Load() (*Config, error) {
	godotenv.Load()

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("BOT_TOKEN is not set")
	}

	cfg := &Config{
		Token:              token,
		DBPath:             getenv("DB_PATH", "oluja.db"),
		ArchiveFile:        getenv("APPLICATIONS_FILE", "applications.json"),
		AdminRoleName:      getenv("ADMIN_ROLE_NAME", "Team"),
		LogChannelName:     getenv("LOG_CHANNEL_NAME", "bot-log"),
		ArchiveChannel:     getenv("ARCHIVE_CHANNEL_NAME", "bewerbungs-archiv"),
		MemberRoleID:       os.Getenv("MEMBER_ROLE_ID"),
		AdminUserID:        os.Getenv("ADMIN_USER_ID"),
		ClanTag:            getenv("CLAN_TAG", "#2PPYYYYL"),
		ReminderHours:      getenvInt("REMINDER_HOURS", 24),
		AnswerTimeout:      5 * time.Minute,
		NotifyCooldown:     15 * time.Minute,
		CheckpointInterval: 2 * time.Minute,
		questions:          defaultQuestions(),
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func defaultQuestions() map[string][]string {
	return map[string][]string{
		APPLY_TYPE_MEMBER: {
			"🔹 **Was ist dein Spieler-Tag?**\n*(Beispiel: #LJC8V0GCJ)*",
			"🔹 **Welche Angriffsstrategien beherrschst du?**\n*(z.B. QC Lalo, Hybrid, Yeti Smash)*",
			"🔹 **Auf welchem TH-Level spielst du aktuell?**",
		},
		APPLY_TYPE_STAFF: {
			"🔹 **Was ist dein Spieler-Tag?**",
			"🔹 **Warum möchtest du ins Team?**",
			"🔹 **Hast du Moderationserfahrung?**",
		},
	}
}

// Questions returns a copy of the question list for an application type
func (cfg *Config) Questions(applyType string) ([]string, bool) {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()
	questions, ok := cfg.questions[applyType]
	if !ok {
		return nil, false
	}
	out := make([]string, len(questions))
	copy(out, questions)
	return out, true
}

// SetQuestion replaces the question at index (1-based) for an application type
func (cfg *Config) SetQuestion(applyType string, index int, text string) error {
	cfg.mu.Lock()
	defer cfg.mu.Unlock()
	questions, ok := cfg.questions[applyType]
	if !ok {
		return fmt.Errorf("unknown application type %q", applyType)
	}
	if index < 1 || index > len(questions) {
		return fmt.Errorf("question index must be between 1 and %d", len(questions))
	}
	questions[index-1] = text
	return nil
}

// ApplyTypes lists the known application types
func (cfg *Config) ApplyTypes() []string {
	return []string{APPLY_TYPE_MEMBER, APPLY_TYPE_STAFF}
}

// FAQText is shown behind the FAQ button in every application channel
const FAQText = "**Wie lange dauert die Bearbeitung?**\nIn der Regel 1-3 Tage.\n\n" +
	"**Was passiert nach Annahme?**\nDu bekommst die Mitgliederrolle und Zugang zu Clan-Infos.\n\n" +
	"**Kann ich mich nochmal bewerben?**\nJa, nach 2 Wochen bei Ablehnung.\n\n" +
	"Bei weiteren Fragen wende dich an das Team."

// FunFacts rotate through the acceptance message
var FunFacts = []string{
	"Immer alle Angriffe nutzen!!!",
	"Ajmo brat",
	"'Oluja' ist 'Sturm' auf Kroatisch.",
}
