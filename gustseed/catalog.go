// Copyright 2026 The Gust-Tools Authors. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package gustseed loads the JSON-backed per-title seed catalog that
// the enclosing program uses to look up the scramble.Seeds for a given
// ".e" payload. It generalizes gust_enc.c's single seeds_id/seeds
// lookup (originally parsed with the parson library) to a named
// catalog of titles.
package gustseed

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/healingbrew/gust-tools/internal/scramble"
)

// SeedsNotFound reports that a title ID has no entry in a Catalog. It
// lives outside the decoder core's error kinds (internal/coreerr)
// since it is a catalog-lookup failure, not a core invariant violation.
type SeedsNotFound struct {
	ID string
}

func (e *SeedsNotFound) Error() string {
	return fmt.Sprintf("gustseed: no seeds for title %q", e.ID)
}

// rawSeeds mirrors the catalog's JSON seed encoding: three-element
// arrays for main/table/length, matching the three-seed shape
// scramble.Seeds uses (see gust_enc.c's seed_data struct).
type rawSeeds struct {
	Main   [3]uint32 `json:"main"`
	Table  [3]uint32 `json:"table"`
	Length [3]uint32 `json:"length"`
	Fence  uint32    `json:"fence"`
}

func (r rawSeeds) toSeeds() scramble.Seeds {
	return scramble.Seeds{
		Main:   r.Main,
		Table:  r.Table,
		Length: r.Length,
		Fence:  r.Fence,
	}
}

type rawTitle struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Seeds rawSeeds `json:"seeds"`
}

type rawCatalog struct {
	Titles []rawTitle `json:"titles"`
}

// TitleSeeds is one catalog entry: a human-readable name alongside the
// Seeds consumed by internal/scramble.
type TitleSeeds struct {
	Name  string
	Seeds scramble.Seeds
}

// Catalog is the in-memory seed registry, keyed by title ID.
type Catalog struct {
	Titles map[string]TitleSeeds
}

// Load reads and parses a seed catalog JSON document from path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gustseed: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a seed catalog JSON document already held in memory.
func Parse(data []byte) (*Catalog, error) {
	var raw rawCatalog
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("gustseed: parsing catalog: %w", err)
	}
	c := &Catalog{Titles: make(map[string]TitleSeeds, len(raw.Titles))}
	for _, t := range raw.Titles {
		c.Titles[t.ID] = TitleSeeds{Name: t.Name, Seeds: t.Seeds.toSeeds()}
	}
	return c, nil
}

// Lookup returns the scramble.Seeds registered for a title ID, or a
// *SeedsNotFound error if none is registered.
func (c *Catalog) Lookup(id string) (scramble.Seeds, error) {
	t, ok := c.Titles[id]
	if !ok {
		return scramble.Seeds{}, &SeedsNotFound{ID: id}
	}
	return t.Seeds, nil
}
