// Package workflow drives an applicant through the question and answer
// exchange of a membership application. The exchange itself (prompting,
// awaiting replies, cleanup) goes through the Exchange interface so the
// state machine stays independent of the chat platform.
package workflow

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/JelacicBan/OlujaBot/internal/operr"
)

// TagAttempts bounds the retries for the player-tag question
const TagAttempts = 2

// Exchange is the channel-facing side of one application run
type Exchange interface {
	// Ask posts question number index (1-based) of total and
	// returns the id of the prompt message
	Ask(index, total int, question string) (promptID string, err error)
	// Await blocks until the applicant replies in the channel or the
	// timeout elapses. A timeout surfaces as an operr.KIND_TIMEOUT error
	Await(timeout time.Duration) (replyID string, content string, err error)
	// Delete removes prompt and reply messages from the visible channel
	Delete(messageIDs ...string)
	// RejectTag notifies the applicant of a malformed player tag and
	// announces the upcoming attempt number
	RejectTag(nextAttempt, maxAttempts int) error
}

// Options configure one answer-collection run
type Options struct {
	AnswerTimeout time.Duration
	// ValidateTag turns on player-tag validation for the first question
	ValidateTag bool
}

// Collect runs the sequential question loop and returns the answers.
// The first answer is validated as a player tag when requested, with a
// bounded number of attempts. Timeouts, exhausted tag attempts and
// unexpected failures abort the run with a kinded error; the caller owns
// the closure notices and channel teardown
func Collect(questions []string, opts Options, exchange Exchange) ([]string, error) {
	answers := make([]string, 0, len(questions))
	for i, question := range questions {
		promptID, err := exchange.Ask(i+1, len(questions), question)
		if err != nil {
			return nil, err
		}

		if i == 0 && opts.ValidateTag {
			answer, replyID, err := collectTag(opts, exchange)
			if err != nil {
				return nil, err
			}
			answers = append(answers, answer)
			exchange.Delete(promptID, replyID)
			continue
		}

		replyID, content, err := exchange.Await(opts.AnswerTimeout)
		if err != nil {
			return nil, err
		}
		answers = append(answers, content)
		exchange.Delete(promptID, replyID)
	}
	return answers, nil
}

// collectTag awaits a well-formed player tag, allowing TagAttempts tries.
// The second failed attempt ends the run; there is never a third prompt
func collectTag(opts Options, exchange Exchange) (answer, replyID string, err error) {
	for attempt := 1; attempt <= TagAttempts; attempt++ {
		replyID, content, err := exchange.Await(opts.AnswerTimeout)
		if err != nil {
			return "", "", err
		}
		if ValidPlayerTag(content) {
			log.Debug().Msgf("Player tag accepted: %s", content)
			return content, replyID, nil
		}
		if attempt == TagAttempts {
			return "", "", operr.New(operr.KIND_VALIDATION,
				"no valid player tag after %d attempts", TagAttempts)
		}
		if err := exchange.RejectTag(attempt+1, TagAttempts); err != nil {
			return "", "", err
		}
		exchange.Delete(replyID)
	}
	// unreachable, the loop always returns
	return "", "", operr.New(operr.KIND_VALIDATION, "no valid player tag")
}
