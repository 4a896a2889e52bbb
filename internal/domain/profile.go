package domain

import (
	"strings"
	"sync"
	"time"
)

const DefaultProfileName = "[Current Profile]"

// Profile is the user's automation configuration. It is owned by the app
// runtime and shared with every view that edits it.
type Profile struct {
	mu   sync.RWMutex
	name string

	LBAS *LBASSettings
}

func NewProfile(name string) *Profile {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultProfileName
	}

	return &Profile{name: name, LBAS: NewLBASSettings()}
}

func (p *Profile) Name() string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.name
}

// ProfileSnapshot is an immutable copy of a profile, suitable for storage
// and for crossing goroutines.
type ProfileSnapshot struct {
	Name      string
	LBAS      LBASSnapshot
	UpdatedAt time.Time
}

func (p *Profile) Snapshot() ProfileSnapshot {
	return ProfileSnapshot{
		Name:      p.Name(),
		LBAS:      p.LBAS.Snapshot(),
		UpdatedAt: time.Now(),
	}
}

func (p *Profile) Apply(snap ProfileSnapshot) error {
	if err := p.LBAS.Apply(snap.LBAS); err != nil {
		return err
	}
	if name := strings.TrimSpace(snap.Name); name != "" {
		p.mu.Lock()
		p.name = name
		p.mu.Unlock()
	}

	return nil
}

func ProfileFromSnapshot(snap ProfileSnapshot) (*Profile, error) {
	p := NewProfile(snap.Name)
	if err := p.Apply(snap); err != nil {
		return nil, err
	}

	return p, nil
}
