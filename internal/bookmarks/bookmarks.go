// Package bookmarks persists sync resume points: page cursors for the
// full-catalog seeder and "from" watermarks for the incremental updater.
// Files are JSON objects keyed by country code, pretty-printed with sorted
// keys so operators can diff them, and overwritten wholesale on every write.
// An absent file reads as an empty map.
package bookmarks

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// CursorEnd marks a country whose full catalog has been swept. Distinct from
// an absent entry, which means the sweep has never started.
const CursorEnd = "end"

// Cursors maps country code to the next page cursor, or CursorEnd.
type Cursors map[string]string

// Watermarks maps country code to the next "from" timestamp.
type Watermarks map[string]int64

func LoadCursors(path string) (Cursors, error) {
	c := Cursors{}
	if err := load(path, &c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c Cursors) Save(path string) error { return save(path, c) }

func LoadWatermarks(path string) (Watermarks, error) {
	w := Watermarks{}
	if err := load(path, &w); err != nil {
		return nil, err
	}
	return w, nil
}

func (w Watermarks) Save(path string) error { return save(path, w) }

func load(path string, out any) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read bookmarks %s: %w", path, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode bookmarks %s: %w", path, err)
	}
	return nil
}

func save(path string, v any) error {
	// MarshalIndent emits string-keyed maps in sorted key order.
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode bookmarks %s: %w", path, err)
	}
	b = append(b, '\n')
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write bookmarks %s: %w", path, err)
	}
	return nil
}
