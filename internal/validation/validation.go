package validation

import (
	"os"
	"strconv"
	"strings"
)

// MaxMessageLength is configurable so deployments can tighten the cap
// without a rebuild; anything below 1 falls back to the default.
func MaxMessageLength() int {
	maxStr := os.Getenv("MAX_MESSAGE_LENGTH")
	if maxStr == "" {
		return 4000
	}
	max, err := strconv.Atoi(maxStr)
	if err != nil || max < 1 {
		return 4000
	}
	return max
}

// TrimAndLimit normalizes message content: surrounding whitespace goes,
// anything past max is cut.
func TrimAndLimit(s string, max int) string {
	s = strings.TrimSpace(s)
	if max > 0 && len(s) > max {
		return s[:max]
	}
	return s
}

// ValidMessageContent reports whether content survives normalization
func ValidMessageContent(s string) bool {
	return TrimAndLimit(s, MaxMessageLength()) != ""
}
