package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{questions: defaultQuestions()}
}

func TestQuestionsReturnsCopy(t *testing.T) {
	cfg := testConfig()
	questions, ok := cfg.Questions(APPLY_TYPE_MEMBER)
	require.True(t, ok)
	require.Len(t, questions, 3)

	questions[0] = "mutated"
	fresh, _ := cfg.Questions(APPLY_TYPE_MEMBER)
	assert.NotEqual(t, "mutated", fresh[0])
}

func TestQuestionsUnknownType(t *testing.T) {
	_, ok := testConfig().Questions("Gast-Bewerbung")
	assert.False(t, ok)
}

func TestSetQuestion(t *testing.T) {
	cfg := testConfig()
	require.NoError(t, cfg.SetQuestion(APPLY_TYPE_STAFF, 2, "Warum du?"))

	questions, _ := cfg.Questions(APPLY_TYPE_STAFF)
	assert.Equal(t, "Warum du?", questions[1])
}

func TestSetQuestionBounds(t *testing.T) {
	cfg := testConfig()
	assert.Error(t, cfg.SetQuestion(APPLY_TYPE_MEMBER, 0, "x"))
	assert.Error(t, cfg.SetQuestion(APPLY_TYPE_MEMBER, 4, "x"))
	assert.Error(t, cfg.SetQuestion("Gast-Bewerbung", 1, "x"))
}
