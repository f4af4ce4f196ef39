package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	config "github.com/mwantia/dungeonrun/internal/config/tracker"
)

var (
	ErrUnknownDungeon = errors.New("unknown dungeon")
	ErrUnknownDrop    = errors.New("unknown drop")
)

type Dungeon struct {
	Name string
	Cost float64
}

// Catalog is the read-only list of dungeons and drops runs are recorded against.
// Order is preserved from configuration and drives the order of breakdowns.
type Catalog struct {
	dungeons []Dungeon
	drops    []string
	index    map[string]int
	dropSet  map[string]bool
}

func New(dungeons []Dungeon, drops []string) *Catalog {
	c := &Catalog{
		dungeons: append([]Dungeon(nil), dungeons...),
		drops:    append([]string(nil), drops...),
		index:    make(map[string]int, len(dungeons)),
		dropSet:  make(map[string]bool, len(drops)),
	}
	for i, d := range c.dungeons {
		c.index[d.Name] = i
	}
	for _, d := range c.drops {
		c.dropSet[d] = true
	}
	return c
}

func FromConfig(cfg config.CatalogTrackerConfig) *Catalog {
	dungeons := make([]Dungeon, 0, len(cfg.Dungeons))
	for _, d := range cfg.Dungeons {
		dungeons = append(dungeons, Dungeon{Name: d.Name, Cost: d.Cost})
	}
	return New(dungeons, cfg.Drops)
}

func (c *Catalog) Dungeons() []Dungeon {
	return append([]Dungeon(nil), c.dungeons...)
}

func (c *Catalog) Drops() []string {
	return append([]string(nil), c.drops...)
}

func (c *Catalog) Dungeon(name string) (Dungeon, bool) {
	i, ok := c.index[name]
	if !ok {
		return Dungeon{}, false
	}
	return c.dungeons[i], true
}

func (c *Catalog) HasDrop(name string) bool {
	return c.dropSet[name]
}

// ResolveDungeon returns the catalog entry for name or an ErrUnknownDungeon
// carrying the closest known names.
func (c *Catalog) ResolveDungeon(name string) (Dungeon, error) {
	if d, ok := c.Dungeon(name); ok {
		return d, nil
	}

	names := make([]string, 0, len(c.dungeons))
	for _, d := range c.dungeons {
		names = append(names, d.Name)
	}
	return Dungeon{}, unknown(ErrUnknownDungeon, name, Suggest(name, names))
}

// ResolveDrops checks every drop against the catalog. The input order is kept.
func (c *Catalog) ResolveDrops(drops []string) ([]string, error) {
	for _, drop := range drops {
		if !c.HasDrop(drop) {
			return nil, unknown(ErrUnknownDrop, drop, Suggest(drop, c.drops))
		}
	}
	return append([]string{}, drops...), nil
}

func unknown(err error, name string, suggestions []string) error {
	if len(suggestions) == 0 {
		return fmt.Errorf("%w '%s'", err, name)
	}
	return fmt.Errorf("%w '%s' (did you mean '%s'?)", err, name, strings.Join(suggestions, "', '"))
}

// Suggest returns up to three candidates whose case-folded edit distance to
// input is within a limit scaled by the candidate length.
func Suggest(input string, candidates []string) []string {
	type scored struct {
		name string
		dist int
	}

	in := strings.ToLower(strings.TrimSpace(input))
	if in == "" {
		return nil
	}

	var matches []scored
	for _, cand := range candidates {
		lower := strings.ToLower(cand)
		if strings.HasPrefix(lower, in) {
			matches = append(matches, scored{name: cand, dist: 0})
			continue
		}
		dist := levenshtein.ComputeDistance(in, lower)
		if dist > distanceLimit(len(lower)) {
			continue
		}
		matches = append(matches, scored{name: cand, dist: dist})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].dist < matches[j].dist
	})

	if len(matches) > 3 {
		matches = matches[:3]
	}

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.name)
	}
	return out
}

func distanceLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
