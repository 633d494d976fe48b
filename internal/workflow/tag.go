package workflow

import "regexp"

// A player tag is a hash sign followed by 8 to 10 alphanumeric characters,
// e.g. #LJC8V0GCJ
var tagPattern = regexp.MustCompile(`^#[0-9A-Za-z]{8,10}$`)

// ValidPlayerTag reports whether the given input is a well-formed player tag
func ValidPlayerTag(tag string) bool {
	return tagPattern.MatchString(tag)
}
