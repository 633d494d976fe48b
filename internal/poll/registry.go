package poll

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/JelacicBan/OlujaBot/internal/operr"
)

type Choice int

const (
	CHOICE_YES Choice = iota
	CHOICE_NO
)

// Poll is one live poll. The response set maps voter id to that
// voter's last choice; it lives only in memory, aggregates go to storage
type Poll struct {
	ID          string
	ChannelID   string
	ChannelName string
	Duration    int // minutes
	Started     time.Time

	responses map[string]Choice
	timer     *time.Timer
}

// Tally is an aggregate view of one poll at a point in time
type Tally struct {
	PollID      string
	ChannelID   string
	ChannelName string
	Duration    int
	Yes         int
	No          int
}

// Percentages returns the yes and no share of the vote,
// both zero when nobody voted
func (t Tally) Percentages() (float64, float64) {
	total := t.Yes + t.No
	if total == 0 {
		return 0, 0
	}
	return float64(t.Yes) / float64(total) * 100, float64(t.No) / float64(total) * 100
}

// Registry owns every currently open poll. All methods are safe for
// concurrent use; reaction events and the checkpoint job share it
type Registry struct {
	mu    sync.Mutex
	polls map[string]*Poll
}

func NewRegistry() *Registry {
	return &Registry{polls: map[string]*Poll{}}
}

// Open registers a poll and schedules its expiry callback.
// A non-positive duration is rejected and nothing is registered
func (r *Registry) Open(id, channelID, channelName string, durationMinutes int, onExpire func(pollID string)) error {
	if durationMinutes <= 0 {
		return operr.New(operr.KIND_VALIDATION, "poll duration must be positive, got %d", durationMinutes)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	poll := &Poll{
		ID:          id,
		ChannelID:   channelID,
		ChannelName: channelName,
		Duration:    durationMinutes,
		Started:     time.Now().UTC(),
		responses:   map[string]Choice{},
	}
	if onExpire != nil {
		poll.timer = time.AfterFunc(time.Duration(durationMinutes)*time.Minute, func() {
			onExpire(id)
		})
	}
	r.polls[id] = poll
	log.Info().Msgf("Poll %s opened in %s for %d minutes", id, channelName, durationMinutes)
	return nil
}

// SetResponse records a voter's choice, overwriting any previous one.
// Responses for unknown polls are ignored
func (r *Registry) SetResponse(pollID, voterID string, choice Choice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if poll, ok := r.polls[pollID]; ok {
		poll.responses[voterID] = choice
	}
}

// ClearResponse removes a voter's contribution, but only when the
// retracted choice is the one currently recorded. After a vote switch
// the platform still reports the old reaction disappearing; that event
// must not erase the new choice
func (r *Registry) ClearResponse(pollID, voterID string, choice Choice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if poll, ok := r.polls[pollID]; ok {
		if current, voted := poll.responses[voterID]; voted && current == choice {
			delete(poll.responses, voterID)
		}
	}
}

// Tracks reports whether the given message id belongs to an open poll
func (r *Registry) Tracks(pollID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.polls[pollID]
	return ok
}

// Tally computes the current aggregate for one poll
func (r *Registry) Tally(pollID string) (Tally, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	poll, ok := r.polls[pollID]
	if !ok {
		return Tally{}, false
	}
	return tallyOf(poll), true
}

// Snapshot tallies every open poll, for the periodic checkpoint job
func (r *Registry) Snapshot() []Tally {
	r.mu.Lock()
	defer r.mu.Unlock()
	tallies := make([]Tally, 0, len(r.polls))
	for _, poll := range r.polls {
		tallies = append(tallies, tallyOf(poll))
	}
	return tallies
}

// Remove pops a poll from the live set and cancels its expiry timer.
// Removing an unknown poll reports ok as false so callers can treat
// double finalization as a no-op
func (r *Registry) Remove(pollID string) (Tally, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	poll, ok := r.polls[pollID]
	if !ok {
		return Tally{}, false
	}
	if poll.timer != nil {
		poll.timer.Stop()
	}
	delete(r.polls, pollID)
	return tallyOf(poll), true
}

// Len returns the number of open polls
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.polls)
}

func tallyOf(poll *Poll) Tally {
	tally := Tally{
		PollID:      poll.ID,
		ChannelID:   poll.ChannelID,
		ChannelName: poll.ChannelName,
		Duration:    poll.Duration,
	}
	for _, choice := range poll.responses {
		switch choice {
		case CHOICE_YES:
			tally.Yes++
		case CHOICE_NO:
			tally.No++
		}
	}
	return tally
}
