package state

import (
	"maps"
	"slices"

	"github.com/maruel/natural"
	"golang.org/x/exp/constraints"
)

// LifetimeRecord is a players counters merged across every session they appeared in.
type LifetimeRecord struct {
	Name      string         `json:"name"`
	Kills     map[string]int `json:"kills"`
	KilledBy  map[string]int `json:"killed_by"`
	Revives   map[string]int `json:"revives"`
	RevivedBy map[string]int `json:"revived_by"`
	Classes   []string       `json:"classes"`
	Sessions  int            `json:"sessions"`
}

func (r LifetimeRecord) TotalKills() int {
	return sum(r.Kills)
}

func (r LifetimeRecord) TotalDeaths() int {
	return sum(r.KilledBy)
}

func (r LifetimeRecord) TotalRevives() int {
	return sum(r.Revives)
}

func (r LifetimeRecord) TotalRevived() int {
	return sum(r.RevivedBy)
}

// Lifetime builds a fresh set of lifetime records from every session in the state. Records are
// ordered naturally by player name.
func Lifetime(state State) []LifetimeRecord {
	records := map[string]LifetimeRecord{}

	for _, game := range state.Games {
		for name, player := range game.Players {
			record, found := records[name]
			if !found {
				record = LifetimeRecord{
					Name:      name,
					Kills:     map[string]int{},
					KilledBy:  map[string]int{},
					Revives:   map[string]int{},
					RevivedBy: map[string]int{},
					Classes:   []string{},
				}
			}

			record.Kills = mergeCounts(record.Kills, player.Killed)
			record.KilledBy = mergeCounts(record.KilledBy, player.KilledBy)
			record.Revives = mergeCounts(record.Revives, player.Revived)
			record.RevivedBy = mergeCounts(record.RevivedBy, player.RevivedBy)

			for _, class := range player.Classes {
				record.Classes = unionClasses(record.Classes, class)
			}

			record.Sessions++
			records[name] = record
		}
	}

	names := slices.Collect(maps.Keys(records))
	slices.SortFunc(names, func(a, b string) int {
		switch {
		case natural.Less(a, b):
			return -1
		case natural.Less(b, a):
			return 1
		default:
			return 0
		}
	})

	out := make([]LifetimeRecord, len(names))
	for idx, name := range names {
		out[idx] = records[name]
	}

	return out
}

// mergeCounts adds every count in src onto dst. dst is modified and returned.
func mergeCounts[K comparable, V constraints.Integer](dst map[K]V, src map[K]V) map[K]V {
	for key, count := range src {
		dst[key] += count
	}

	return dst
}

func sum[K comparable, V constraints.Integer](counts map[K]V) V {
	var total V
	for _, count := range counts {
		total += count
	}

	return total
}
