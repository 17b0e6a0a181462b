package tasks

import (
	"fmt"
	"strings"

	"github.com/fentz26/todo/internal/models"
)

// MinPrefix is the shortest id prefix accepted from users.
const MinPrefix = 4

func normalizeRef(ref string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ref), "#"))
}

// resolve finds the task a user reference names: a full id or a unique
// prefix of at least MinPrefix characters, optionally written with a
// leading '#'.
func resolve(tasks []models.Task, ref string) (*models.Task, error) {
	id, err := matchID(ids(tasks), ref)
	if err != nil {
		return nil, err
	}
	return models.Find(tasks, id), nil
}

// matchID resolves ref against candidates. Exact matches win over prefixes.
func matchID(candidates []string, ref string) (string, error) {
	key := normalizeRef(ref)
	if key == "" {
		return "", fmt.Errorf("%w: empty id", ErrTaskNotFound)
	}
	for _, id := range candidates {
		if strings.ToLower(id) == key {
			return id, nil
		}
	}
	if len(key) < MinPrefix {
		return "", fmt.Errorf("%w: %q (use at least %d characters)", ErrIDTooShort, ref, MinPrefix)
	}

	var matches []string
	for _, id := range candidates {
		if strings.HasPrefix(strings.ToLower(id), key) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: #%s", ErrTaskNotFound, key)
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguousError{Prefix: ref, Matches: matches}
	}
}

func ids(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i := range tasks {
		out[i] = tasks[i].ID
	}
	return out
}
