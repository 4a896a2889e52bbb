package domain

import (
	"context"
	"errors"
	"fmt"
)

// LoadProfile restores the named profile, falling back to defaults when the
// repository has never seen it.
func LoadProfile(ctx context.Context, repo ProfileRepository, name string) (*Profile, error) {
	snap, err := repo.Get(ctx, name)
	if errors.Is(err, ErrProfileNotFound) {
		return NewProfile(name), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile %q: %w", name, err)
	}

	p, err := ProfileFromSnapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("restore profile %q: %w", name, err)
	}

	return p, nil
}
