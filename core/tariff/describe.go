package tariff

import "strings"

// Describe renders intervals as the summary stored on the account record,
// e.g. "HC (22:00-06:00); Pointe (17:00-19:00)". Void ranges are listed
// like any other present range.
func Describe(intervals []Interval) string {
	parts := make([]string, 0, len(intervals))
	for _, iv := range intervals {
		parts = append(parts, iv.Kind.String()+" ("+FormatTime(iv.Start)+"-"+FormatTime(iv.End)+")")
	}
	return strings.Join(parts, "; ")
}
