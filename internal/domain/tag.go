package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// TagMarker is the leading character every stored tag carries.
const TagMarker = "#"

// MaxTags caps how many tags a place keeps; extra tags are dropped.
const MaxTags = 8

// MaxTagRunes caps the length of one tag, its marker not counted.
const MaxTagRunes = 50

// NormalizeTag trims raw and prefixes TagMarker when missing.
// Returns "" for blank input.
func NormalizeTag(raw string) string {
	t := strings.TrimSpace(raw)
	if t == "" {
		return ""
	}
	if !strings.HasPrefix(t, TagMarker) {
		t = TagMarker + t
	}
	return t
}

// NormalizeTags normalizes every tag, drops blanks and exact duplicates
// (keeping the first occurrence), and truncates to MaxTags.
// Always returns a non-nil slice. Applying it twice yields the same result.
func NormalizeTags(raw []string) []string {
	out := make([]string, 0, min(len(raw), MaxTags))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		t := NormalizeTag(r)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) == MaxTags {
			break
		}
	}
	return out
}

// CheckTags rejects a normalized tag list holding a tag longer than
// MaxTagRunes with ErrValidation.
func CheckTags(tags []string) error {
	for _, t := range tags {
		if utf8.RuneCountInString(strings.TrimPrefix(t, TagMarker)) > MaxTagRunes {
			return fmt.Errorf("%w: tags must be at most %d characters", ErrValidation, MaxTagRunes)
		}
	}
	return nil
}

// TagCount is one tag suggestion: a tag and how many places carry it.
type TagCount struct {
	Tag   string
	Count int
}
