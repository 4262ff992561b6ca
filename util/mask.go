package util

import "strings"

// MaskSecret hides sensitive parts of a string for safe display in logs.
// If the string is shorter than visiblePrefix, it is fully masked.
func MaskSecret(s string, visiblePrefix int) string {
	if len(s) <= visiblePrefix {
		return "***"
	}
	return s[:visiblePrefix] + "***"
}

// MaskToken redacts a bearer token for logging, keeping just enough of the
// head to correlate (never the signature).
func MaskToken(token string) string {
	const visible = 8
	if len(token) <= visible {
		return "***"
	}
	return token[:visible] + "..."
}

// SanitizeEnvValue cleans an environment variable value by removing
// surrounding quotes and trimming whitespace.
func SanitizeEnvValue(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			s = s[1 : len(s)-1]
		}
	}
	return strings.TrimSpace(s)
}
