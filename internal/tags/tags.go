// Package tags validates tag input and folds near-duplicates onto tags
// already in use.
package tags

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agext/levenshtein"
	"github.com/fentz26/todo/internal/models"
)

// MaxLength is the longest accepted tag.
const MaxLength = 50

var (
	ErrEmpty     = errors.New("tag cannot be empty")
	ErrTooLong   = errors.New("tag too long")
	ErrFormat    = errors.New("invalid tag format")
	ErrDuplicate = errors.New("duplicate tag")
)

// Validate checks every tag for length, charset and case-insensitive
// uniqueness.
func Validate(tags []string) error {
	seen := make(map[string]bool, len(tags))
	for _, raw := range tags {
		tag := strings.TrimSpace(raw)
		if tag == "" {
			return ErrEmpty
		}
		if len(tag) > MaxLength {
			return fmt.Errorf("%w (max: %d characters, actual: %d)", ErrTooLong, MaxLength, len(tag))
		}
		for _, r := range tag {
			if !isTagRune(r) {
				return fmt.Errorf("%w: %q (use letters, digits, '-' and '_')", ErrFormat, tag)
			}
		}
		key := strings.ToLower(tag)
		if seen[key] {
			return fmt.Errorf("%w: %q", ErrDuplicate, tag)
		}
		seen[key] = true
	}
	return nil
}

func isTagRune(r rune) bool {
	return r == '-' || r == '_' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// Change records a tag rewritten onto an existing one.
type Change struct {
	From string
	To   string
}

func (c Change) String() string {
	return fmt.Sprintf("'%s' -> '%s'", c.From, c.To)
}

// threshold is the edit distance tolerated for a tag of length n.
// Short tags tolerate a single edit.
func threshold(n int) int {
	if n <= 4 {
		return 1
	}
	return 2
}

// Normalize lower-cases tags and, when fuzzy is set, replaces each one
// with the closest existing tag within the edit-distance threshold.
// Duplicates produced by folding are dropped.
func Normalize(input []string, existing []string, fuzzy bool) ([]string, []Change) {
	var (
		out     []string
		changes []Change
		seen    = make(map[string]bool, len(input))
	)

	known := make(map[string]bool, len(existing))
	for _, e := range existing {
		known[e] = true
	}

	for _, raw := range input {
		tag := strings.ToLower(strings.TrimSpace(raw))
		if fuzzy && !known[tag] {
			if match, ok := closest(tag, existing); ok {
				changes = append(changes, Change{From: tag, To: match})
				tag = match
			}
		}
		if seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out, changes
}

func closest(tag string, existing []string) (string, bool) {
	best, bestDist := "", threshold(len(tag))+1
	for _, e := range existing {
		if d := levenshtein.Distance(tag, e, nil); d < bestDist {
			best, bestDist = e, d
		}
	}
	return best, best != ""
}

// Collect returns every distinct tag in tasks in first-seen order.
func Collect(tasks []models.Task) []string {
	seen := make(map[string]bool)
	var out []string
	for i := range tasks {
		for _, tag := range tasks[i].Tags {
			if !seen[tag] {
				seen[tag] = true
				out = append(out, tag)
			}
		}
	}
	return out
}
