package store

import "time"

// Application statuses
const (
	STATUS_PENDING  = "Offen"
	STATUS_ACCEPTED = "Angenommen"
	STATUS_DENIED   = "Abgelehnt"
)

// Moderation action types
const (
	ACTION_MUTE        = "Mute"
	ACTION_UNMUTE      = "Unmute"
	ACTION_UNMUTE_AUTO = "Unmute (Auto)"
	ACTION_WARN        = "Warn"
)

// Member event types
const (
	EVENT_JOIN  = "Join"
	EVENT_LEAVE = "Leave"
)

// Application is one archival membership application record.
// The three answer columns mirror the three questions of both flows
type Application struct {
	ID            int64
	ApplicantName string
	ApplicantID   string
	ApplyType     string
	PlayerTag     string
	Strategies    string
	TownhallLevel string
	Status        string
	Reason        string
	HandledBy     string
	Date          time.Time
}

// ModerationLog is one append-only moderation action record
type ModerationLog struct {
	ID        int64
	UserID    string
	UserName  string
	Action    string
	Reason    string
	Duration  int // minutes, 0 when not applicable
	HandledBy string
	Date      time.Time
}

// MemberEvent records a guild join or leave
type MemberEvent struct {
	ID       int64
	UserID   string
	UserName string
	Event    string
	Date     time.Time
}

// PollRecord is the persisted shape of a CWL poll,
// upserted on every checkpoint and once more at finalization
type PollRecord struct {
	PollID      string
	ChannelID   string
	ChannelName string
	Duration    int // minutes
	YesCount    int
	NoCount     int
	Date        time.Time
}
