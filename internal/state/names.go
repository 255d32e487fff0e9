package state

import (
	"fmt"
	"slices"
)

// NamePair links the short name reported by the trace channel with the full, possibly clan
// tagged, name reported by the combat channel. Full is nil until the pair is resolved.
type NamePair struct {
	Short string  `json:"short"`
	Full  *string `json:"full"`
}

func (p NamePair) Resolved() bool {
	return p.Full != nil
}

// Names is the per session registry of observed player names. All methods return a new
// registry and leave the receiver untouched.
type Names []NamePair

// Observe records a short name seen on the trace channel. Names that are already resolved are
// left alone. Unresolved names are appended again on every observation.
func (n Names) Observe(short string) Names {
	for _, pair := range n {
		if pair.Short == short && pair.Resolved() {
			return n
		}
	}

	return append(slices.Clip(n), NamePair{Short: short})
}

// Resolve finds the canonical short name for a full name. A pair already resolved to the full
// name wins, otherwise the first pair (in registry order) whose short name is a suffix of the
// full name is resolved to it. ErrUnknownPlayer is returned when nothing matches.
func (n Names) Resolve(full string) (string, Names, error) {
	for _, pair := range n {
		if pair.Resolved() && *pair.Full == full {
			return pair.Short, n, nil
		}
	}

	fullRunes := []rune(full)

	for idx, pair := range n {
		// Lengths are measured in characters, clan tags often carry multibyte symbols.
		shortLen := len([]rune(pair.Short))
		if shortLen > len(fullRunes) {
			continue
		}

		if string(fullRunes[len(fullRunes)-shortLen:]) != pair.Short {
			continue
		}

		resolved := slices.Clone(n)
		resolved[idx] = NamePair{Short: pair.Short, Full: &full}

		return pair.Short, resolved, nil
	}

	return "", n, fmt.Errorf("%w: cannot resolve %q", ErrUnknownPlayer, full)
}
