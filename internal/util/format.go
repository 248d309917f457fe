// Package util hosts small shared formatting helpers.
package util

import "time"

// FormatQueueAge formats how long a deferred write has been waiting.
// Returns "-" for zero or negative ages, truncates to seconds for readability.
func FormatQueueAge(age time.Duration) string {
	switch {
	case age <= 0:
		return "-"
	case age < time.Second:
		return age.Truncate(time.Millisecond).String()
	default:
		return age.Truncate(time.Second).String()
	}
}
