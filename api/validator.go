package main

import (
	"strings"
	"time"
)

var allowedCategories = []string{"work", "fitness", "shopping", "education"}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func isValidCategory(category string) bool {
	for _, c := range allowedCategories {
		if category == c {
			return true
		}
	}
	return false
}

var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseDueDate accepts RFC 3339 timestamps, the same without a zone, or a
// bare date. Anything else is rejected.
func parseDueDate(s string) (time.Time, bool) {
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
