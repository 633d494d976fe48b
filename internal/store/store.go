package store

import (
	"database/sql"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/JelacicBan/OlujaBot/internal/operr"
)

const schema = `
CREATE TABLE IF NOT EXISTS applications (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    applicant_name TEXT NOT NULL,
    applicant_id TEXT NOT NULL,
    apply_type TEXT NOT NULL,
    spieler_tag TEXT,
    strategien TEXT,
    th_level TEXT,
    status TEXT NOT NULL,
    reason TEXT,
    handled_by TEXT,
    date DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS moderation_logs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL,
    user_name TEXT NOT NULL,
    action_type TEXT NOT NULL,
    reason TEXT,
    duration INTEGER,
    handled_by TEXT,
    date DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS member_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL,
    user_name TEXT NOT NULL,
    event_type TEXT NOT NULL,
    date DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS cwl_polls (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    poll_id TEXT UNIQUE NOT NULL,
    channel_id TEXT NOT NULL,
    channel_name TEXT NOT NULL,
    duration INTEGER NOT NULL,
    yes_count INTEGER DEFAULT 0,
    no_count INTEGER DEFAULT 0,
    date DATETIME NOT NULL
);
`

// Store wraps the SQL connection used by every subsystem.
// All access is serialized through one mutex because the handle is
// shared across concurrently running handlers and timers
type Store struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// Open opens (or creates) the database and applies the schema
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, operr.Wrap(operr.KIND_STORAGE, err, "could not open database %s", path)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, operr.Wrap(operr.KIND_STORAGE, err, "could not create schema")
	}
	log.Info().Msgf("Database ready at %s", path)
	return &Store{db: db, path: path}, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Reconnect drops the current handle and opens a fresh one.
// Used by the poll checkpoint job when a write fails mid-run
func (s *Store) Reconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.db.Close()
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return operr.Wrap(operr.KIND_STORAGE, err, "could not reopen database %s", s.path)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return operr.Wrap(operr.KIND_STORAGE, err, "database unreachable after reconnect")
	}
	s.db = db
	log.Info().Msg("Database connection re-established")
	return nil
}

// AddApplication inserts a terminal application record
func (s *Store) AddApplication(app Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if app.Date.IsZero() {
		app.Date = time.Now().UTC()
	}
	_, err := s.db.Exec(`
		INSERT INTO applications
		(applicant_name, applicant_id, apply_type, spieler_tag, strategien, th_level, status, reason, handled_by, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		app.ApplicantName, app.ApplicantID, app.ApplyType, app.PlayerTag, app.Strategies,
		app.TownhallLevel, app.Status, app.Reason, app.HandledBy, app.Date)
	if err != nil {
		return operr.Wrap(operr.KIND_STORAGE, err, "could not insert application for %s", app.ApplicantName)
	}
	log.Info().Msgf("Application stored for %s (%s)", app.ApplicantName, app.Status)
	return nil
}

// AddModerationLog inserts an append-only moderation record
func (s *Store) AddModerationLog(entry ModerationLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.Date.IsZero() {
		entry.Date = time.Now().UTC()
	}
	var duration interface{}
	if entry.Duration > 0 {
		duration = entry.Duration
	}
	_, err := s.db.Exec(`
		INSERT INTO moderation_logs
		(user_id, user_name, action_type, reason, duration, handled_by, date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.UserID, entry.UserName, entry.Action, entry.Reason, duration, entry.HandledBy, entry.Date)
	if err != nil {
		return operr.Wrap(operr.KIND_STORAGE, err, "could not insert moderation log for %s", entry.UserName)
	}
	log.Info().Msgf("Moderation log stored: %s for %s", entry.Action, entry.UserName)
	return nil
}

// AddMemberEvent inserts a join or leave event
func (s *Store) AddMemberEvent(event MemberEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.Date.IsZero() {
		event.Date = time.Now().UTC()
	}
	_, err := s.db.Exec(`
		INSERT INTO member_events (user_id, user_name, event_type, date)
		VALUES (?, ?, ?, ?)`,
		event.UserID, event.UserName, event.Event, event.Date)
	if err != nil {
		return operr.Wrap(operr.KIND_STORAGE, err, "could not insert member event for %s", event.UserName)
	}
	return nil
}

// UpsertPoll creates or updates a poll row, keyed on the poll id
func (s *Store) UpsertPoll(poll PollRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if poll.Date.IsZero() {
		poll.Date = time.Now().UTC()
	}
	_, err := s.db.Exec(`
		INSERT INTO cwl_polls (poll_id, channel_id, channel_name, duration, yes_count, no_count, date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(poll_id) DO UPDATE SET
			channel_id = excluded.channel_id,
			channel_name = excluded.channel_name,
			duration = excluded.duration,
			yes_count = excluded.yes_count,
			no_count = excluded.no_count,
			date = excluded.date`,
		poll.PollID, poll.ChannelID, poll.ChannelName, poll.Duration, poll.YesCount, poll.NoCount, poll.Date)
	if err != nil {
		return operr.Wrap(operr.KIND_STORAGE, err, "could not upsert poll %s", poll.PollID)
	}
	log.Debug().Msgf("Poll %s saved: yes=%d no=%d", poll.PollID, poll.YesCount, poll.NoCount)
	return nil
}

// Poll loads one poll row by its poll id
func (s *Store) Poll(pollID string) (PollRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var poll PollRecord
	row := s.db.QueryRow(`
		SELECT poll_id, channel_id, channel_name, duration, yes_count, no_count, date
		FROM cwl_polls WHERE poll_id = ?`, pollID)
	err := row.Scan(&poll.PollID, &poll.ChannelID, &poll.ChannelName, &poll.Duration,
		&poll.YesCount, &poll.NoCount, &poll.Date)
	if err == sql.ErrNoRows {
		return PollRecord{}, operr.New(operr.KIND_NOT_FOUND, "poll %s not found", pollID)
	}
	if err != nil {
		return PollRecord{}, operr.Wrap(operr.KIND_STORAGE, err, "could not load poll %s", pollID)
	}
	return poll, nil
}

// Applications returns all application records, optionally filtered by status.
// An empty status returns everything
func (s *Store) Applications(status string) ([]Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	query := `
		SELECT id, applicant_name, applicant_id, apply_type, spieler_tag, strategien, th_level, status, reason, handled_by, date
		FROM applications`
	args := []interface{}{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, operr.Wrap(operr.KIND_STORAGE, err, "could not query applications")
	}
	defer rows.Close()

	var apps []Application
	for rows.Next() {
		var app Application
		var tag, strategies, level, reason, handledBy sql.NullString
		if err := rows.Scan(&app.ID, &app.ApplicantName, &app.ApplicantID, &app.ApplyType,
			&tag, &strategies, &level, &app.Status, &reason, &handledBy, &app.Date); err != nil {
			return nil, operr.Wrap(operr.KIND_STORAGE, err, "could not scan application row")
		}
		app.PlayerTag = tag.String
		app.Strategies = strategies.String
		app.TownhallLevel = level.String
		app.Reason = reason.String
		app.HandledBy = handledBy.String
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

// ModerationLogs returns all moderation records for one user
func (s *Store) ModerationLogs(userID string) ([]ModerationLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query(`
		SELECT id, user_id, user_name, action_type, reason, duration, handled_by, date
		FROM moderation_logs WHERE user_id = ? ORDER BY date`, userID)
	if err != nil {
		return nil, operr.Wrap(operr.KIND_STORAGE, err, "could not query moderation logs")
	}
	defer rows.Close()

	var entries []ModerationLog
	for rows.Next() {
		var entry ModerationLog
		var reason, handledBy sql.NullString
		var duration sql.NullInt64
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.UserName, &entry.Action,
			&reason, &duration, &handledBy, &entry.Date); err != nil {
			return nil, operr.Wrap(operr.KIND_STORAGE, err, "could not scan moderation row")
		}
		entry.Reason = reason.String
		entry.Duration = int(duration.Int64)
		entry.HandledBy = handledBy.String
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// MemberEventCounts returns the number of joins and leaves recorded for one user
func (s *Store) MemberEventCounts(userID string) (joins int, leaves int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query(`
		SELECT event_type, COUNT(*) FROM member_events WHERE user_id = ? GROUP BY event_type`, userID)
	if err != nil {
		return 0, 0, operr.Wrap(operr.KIND_STORAGE, err, "could not query member events")
	}
	defer rows.Close()
	for rows.Next() {
		var event string
		var count int
		if err := rows.Scan(&event, &count); err != nil {
			return 0, 0, operr.Wrap(operr.KIND_STORAGE, err, "could not scan member event row")
		}
		switch event {
		case EVENT_JOIN:
			joins = count
		case EVENT_LEAVE:
			leaves = count
		}
	}
	return joins, leaves, rows.Err()
}
