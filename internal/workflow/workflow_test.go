package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JelacicBan/OlujaBot/internal/operr"
)

// fakeExchange replays scripted replies and records every call
type fakeExchange struct {
	replies []string
	next    int

	asked      []string
	rejections int
	deleted    []string
	timeoutAt  int // reply index that times out, -1 for never
}

func newFakeExchange(replies ...string) *fakeExchange {
	return &fakeExchange{replies: replies, timeoutAt: -1}
}

func (f *fakeExchange) Ask(index, total int, question string) (string, error) {
	f.asked = append(f.asked, question)
	return "prompt", nil
}

func (f *fakeExchange) Await(timeout time.Duration) (string, string, error) {
	if f.next == f.timeoutAt {
		return "", "", operr.New(operr.KIND_TIMEOUT, "no reply within %s", timeout)
	}
	if f.next >= len(f.replies) {
		return "", "", operr.New(operr.KIND_TIMEOUT, "script exhausted")
	}
	content := f.replies[f.next]
	f.next++
	return "reply", content, nil
}

func (f *fakeExchange) Delete(messageIDs ...string) {
	f.deleted = append(f.deleted, messageIDs...)
}

func (f *fakeExchange) RejectTag(nextAttempt, maxAttempts int) error {
	f.rejections++
	return nil
}

var questions = []string{"Spieler-Tag?", "Strategien?", "TH-Level?"}

func TestCollectHappyPath(t *testing.T) {
	exchange := newFakeExchange("#LJC8V0GCJ", "QC Lalo", "TH15")
	answers, err := Collect(questions, Options{AnswerTimeout: time.Second, ValidateTag: true}, exchange)

	require.NoError(t, err)
	assert.Equal(t, []string{"#LJC8V0GCJ", "QC Lalo", "TH15"}, answers)
	assert.Len(t, exchange.asked, 3)
	assert.Zero(t, exchange.rejections)
	// Each prompt and each reply gets cleaned up
	assert.Len(t, exchange.deleted, 6)
}

func TestCollectWithoutTagValidation(t *testing.T) {
	exchange := newFakeExchange("not a tag", "yes", "maybe")
	answers, err := Collect(questions, Options{AnswerTimeout: time.Second}, exchange)

	require.NoError(t, err)
	assert.Equal(t, "not a tag", answers[0])
	assert.Zero(t, exchange.rejections)
}

func TestCollectTagRetryThenSuccess(t *testing.T) {
	exchange := newFakeExchange("garbage", "#LJC8V0GCJ", "QC Lalo", "TH15")
	answers, err := Collect(questions, Options{AnswerTimeout: time.Second, ValidateTag: true}, exchange)

	require.NoError(t, err)
	assert.Equal(t, "#LJC8V0GCJ", answers[0])
	assert.Equal(t, 1, exchange.rejections)
}

func TestCollectTagAttemptsExhausted(t *testing.T) {
	exchange := newFakeExchange("garbage", "still garbage", "#LJC8V0GCJ")
	_, err := Collect(questions, Options{AnswerTimeout: time.Second, ValidateTag: true}, exchange)

	require.Error(t, err)
	kind, ok := operr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, operr.KIND_VALIDATION, kind)
	// The second failure ends the run, a third reply is never read
	assert.Equal(t, 1, exchange.rejections)
	assert.Equal(t, 2, exchange.next)
	assert.Len(t, exchange.asked, 1)
}

func TestCollectTimeoutAborts(t *testing.T) {
	exchange := newFakeExchange("#LJC8V0GCJ", "QC Lalo")
	exchange.timeoutAt = 1

	_, err := Collect(questions, Options{AnswerTimeout: time.Second, ValidateTag: true}, exchange)
	require.Error(t, err)
	kind, ok := operr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, operr.KIND_TIMEOUT, kind)
}
