package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidPlayerTag(t *testing.T) {
	valid := []string{
		"#LJC8V0GCJ",
		"#12345678",
		"#abcdefgh12",
	}
	for _, tag := range valid {
		assert.True(t, ValidPlayerTag(tag), tag)
	}

	invalid := []string{
		"LJC8V0GCJ",         // missing leading #
		"#AB",               // too short
		"#THISISTOOLONG123", // too long
		"#LJC8V0G!J",        // non-alphanumeric
		"",
		"#",
	}
	for _, tag := range invalid {
		assert.False(t, ValidPlayerTag(tag), tag)
	}
}
