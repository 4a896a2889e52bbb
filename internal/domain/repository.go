package domain

import "context"

type ProfileRepository interface {
	Upsert(ctx context.Context, p ProfileSnapshot) error
	Get(ctx context.Context, name string) (ProfileSnapshot, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
}

// ProfileExporter writes a profile in the format the automation engine reads.
type ProfileExporter interface {
	Export(p ProfileSnapshot) error
}
