package domain

const TopicProfileChanged = "profile.changed"

// ProfileChanged is published after any mutation of the active profile.
type ProfileChanged struct {
	Snapshot ProfileSnapshot
}
