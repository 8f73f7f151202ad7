package store

import (
	"fmt"
	"sync"

	"github.com/sadopc/weekly/internal/schedule"
)

// Preferences holds the global display preferences. It is persisted as its
// own record, independent of the schedule list.
type Preferences struct {
	mu  sync.Mutex
	db  *DB
	cur schedule.Preferences
}

// LoadPreferences restores the preferences record from db.
func LoadPreferences(db *DB) (*Preferences, error) {
	p, err := db.LoadPreferences()
	if err != nil {
		return nil, err
	}
	return &Preferences{db: db, cur: p}, nil
}

func (p *Preferences) Get() schedule.Preferences {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cur
}

// ToggleDarkMode flips dark mode and returns the new value.
func (p *Preferences) ToggleDarkMode() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	next := p.cur
	next.DarkMode = !next.DarkMode
	if err := p.db.SavePreferences(next); err != nil {
		return p.cur.DarkMode, err
	}
	p.cur = next
	return next.DarkMode, nil
}

func (p *Preferences) SetPaletteMode(m schedule.PaletteMode) error {
	if m != schedule.PalettePastel && m != schedule.PaletteBold {
		return fmt.Errorf("unknown palette mode %q", m)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	next := p.cur
	next.PaletteMode = m
	if err := p.db.SavePreferences(next); err != nil {
		return err
	}
	p.cur = next
	return nil
}
