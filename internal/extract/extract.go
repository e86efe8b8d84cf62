// Package extract pulls human-readable fields out of the unstructured text
// of a filing by label-anchored search. It is heuristic by design: label
// wording varies across filings and over time, so a missed field is a normal
// outcome (the field is omitted), never an error. The invariant is failing
// closed — no value is ever fabricated.
package extract

import (
	"strconv"
	"strings"

	"github.com/dartwatch/dartwatch/internal/model"
)

const (
	// A remainder shorter than this after the label is treated as a rendered
	// table splitting label and value across rows; the next line is appended.
	minPlausibleValue = 2

	maxListItems    = 4
	maxItemLen      = 80
	maxListTotalLen = 240
)

// Extract maps every known field to its value found in body. Fields whose
// labels never match are absent from the result. An empty body yields an
// empty map, never a panic.
func Extract(body string) model.Fields {
	fields := model.Fields{}
	if strings.TrimSpace(body) == "" {
		return fields
	}

	lines := strings.Split(body, "\n")

	for _, fl := range fieldLabels {
		if v, ok := firstLabelValue(lines, fl.labels); ok {
			fields[fl.field] = v
		}
	}

	if items := collectLabelValues(lines, subscriptionLabels, maxListItems); len(items) > 0 {
		fields[model.FieldSubscription] = strings.Join(items, " / ")
	}

	return fields
}

// RaiseAmount extracts the total raise amount in KRW, or 0 when no amount
// label yields a parseable number.
func RaiseAmount(body string) int64 {
	if body == "" {
		return 0
	}
	lines := strings.Split(body, "\n")
	if v, ok := firstLabelValue(lines, amountLabels); ok {
		return ParseAmount(v)
	}
	return 0
}

// firstLabelValue tries each label in order and returns the first non-empty
// value found for any of them.
func firstLabelValue(lines []string, labels []string) (string, bool) {
	for _, label := range labels {
		if v, ok := valueAfterLabel(lines, label); ok {
			return v, true
		}
	}
	return "", false
}

// valueAfterLabel finds the first line containing label and returns the
// cleaned text following it, continuing onto the next line when the remainder
// is implausibly short.
func valueAfterLabel(lines []string, label string) (string, bool) {
	for i, line := range lines {
		idx := strings.Index(line, label)
		if idx < 0 {
			continue
		}

		value := cleanValue(line[idx+len(label):])
		if len([]rune(value)) < minPlausibleValue && i+1 < len(lines) {
			value = cleanValue(value + " " + strings.TrimSpace(lines[i+1]))
		}

		if value == "" {
			return "", false
		}
		return value, true
	}
	return "", false
}

// collectLabelValues gathers one value per label, deduplicating repeated
// captures and capping item count and lengths to bound message size.
func collectLabelValues(lines []string, labels []string, max int) []string {
	var out []string
	seen := map[string]struct{}{}
	total := 0

	for _, label := range labels {
		v, ok := valueAfterLabel(lines, label)
		if !ok {
			continue
		}
		if r := []rune(v); len(r) > maxItemLen {
			v = string(r[:maxItemLen])
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}

		total += len(v)
		if total > maxListTotalLen {
			break
		}
		out = append(out, v)
		if len(out) >= max {
			break
		}
	}
	return out
}

// cleanValue strips the leading separator punctuation that label/value table
// renderings leave behind.
func cleanValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, ":：|-–=.,)")
	return strings.TrimSpace(s)
}

// ParseAmount parses a currency amount: thousands separators and a trailing
// 원 unit are stripped; any non-numeric remainder yields 0, never an error.
func ParseAmount(s string) int64 {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "원")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
