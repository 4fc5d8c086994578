package ledger

import (
	"hash/fnv"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Shift is the working shift an order belongs to.
type Shift int

const (
	ShiftNone Shift = iota
	ShiftMorning
	ShiftEvening
)

// Canonical shift labels as stored by the backend.
const (
	MorningLabel = "Morning"
	EveningLabel = "Evening"
)

// ShiftChoices is the choice list offered by shift editors.
var ShiftChoices = []string{MorningLabel, EveningLabel}

// ShiftOf classifies free text by prefix. Both the English labels and the
// legacy 早班/晚班 values are recognised.
func ShiftOf(text string) Shift {
	t := strings.ToLower(strings.TrimSpace(text))
	switch {
	case t == "":
		return ShiftNone
	case strings.HasPrefix(t, "m"), strings.HasPrefix(t, "早"), strings.HasPrefix(t, "am"):
		return ShiftMorning
	case strings.HasPrefix(t, "e"), strings.HasPrefix(t, "n"), strings.HasPrefix(t, "晚"), strings.HasPrefix(t, "pm"):
		return ShiftEvening
	}
	return ShiftNone
}

// Label returns the canonical label, or "" for ShiftNone.
func (s Shift) Label() string {
	switch s {
	case ShiftMorning:
		return MorningLabel
	case ShiftEvening:
		return EveningLabel
	}
	return ""
}

// NormalizeShift returns the canonical label for recognised shifts and the
// trimmed input otherwise.
func NormalizeShift(text string) string {
	if l := ShiftOf(text).Label(); l != "" {
		return l
	}
	return strings.TrimSpace(text)
}

// Tone is the derived colouring of a cell. It is a pure function of the
// cell's field and text so restoring text restores the tone.
type Tone int

const (
	ToneNone Tone = iota
	ToneMorning
	ToneEvening
	toneCategoryBase
)

// CategoryTones is the size of the category palette.
const CategoryTones = 6

// ToneOf derives the tone for a cell.
func ToneOf(field, text string) Tone {
	switch field {
	case FieldShift:
		switch ShiftOf(text) {
		case ShiftMorning:
			return ToneMorning
		case ShiftEvening:
			return ToneEvening
		}
	case FieldCategory:
		t := strings.TrimSpace(text)
		if t == "" {
			return ToneNone
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(t))
		return toneCategoryBase + Tone(h.Sum32()%CategoryTones)
	}
	return ToneNone
}

// CategoryIndex returns the palette slot of a category tone, or -1.
func (t Tone) CategoryIndex() int {
	if t < toneCategoryBase {
		return -1
	}
	return int(t - toneCategoryBase)
}

// ResolveChoice maps typed text onto one of choices: exact match first
// (case-insensitive), then prefix, then the closest by edit distance when it
// is reasonably close.
func ResolveChoice(input string, choices []string) (string, bool) {
	in := strings.ToLower(strings.TrimSpace(input))
	if in == "" || len(choices) == 0 {
		return "", false
	}
	for _, c := range choices {
		if strings.ToLower(c) == in {
			return c, true
		}
	}
	for _, c := range choices {
		if strings.HasPrefix(strings.ToLower(c), in) {
			return c, true
		}
	}
	best, bestScore := "", 1.0
	for _, c := range choices {
		lc := strings.ToLower(c)
		longest := utf8.RuneCountInString(lc)
		if n := utf8.RuneCountInString(in); n > longest {
			longest = n
		}
		score := float64(levenshtein.ComputeDistance(in, lc)) / float64(longest)
		if score < bestScore {
			best, bestScore = c, score
		}
	}
	if bestScore < 0.4 {
		return best, true
	}
	return "", false
}
