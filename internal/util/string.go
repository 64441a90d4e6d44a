// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the resumind-tui application.
package util

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// TruncateString truncates a string to maxLen display cells, adding "..."
// if truncated. Width-aware so CJK and emoji don't overflow table columns.
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return runewidth.Truncate(s, maxLen, "")
	}
	return runewidth.Truncate(s, maxLen, "...")
}

// IntToString converts an int to its decimal string representation.
func IntToString(n int) string {
	return strconv.Itoa(n)
}

// CountWords returns the number of whitespace-separated tokens in s.
// Used by the delivery heuristics; must agree with how the typing
// simulator tokenizes text.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// FirstLine returns everything up to the first newline in s.
func FirstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// FormatFileSize formats a byte count as a human-readable string.
func FormatFileSize(size int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case size >= mb:
		whole := size / mb
		frac := (size % mb) * 10 / mb
		return strconv.FormatInt(whole, 10) + "." + strconv.FormatInt(frac, 10) + " MB"
	case size >= kb:
		return strconv.FormatInt(size/kb, 10) + " KB"
	default:
		return strconv.FormatInt(size, 10) + " B"
	}
}
