package domain

import (
	"github.com/kagahq/kaga/internal/bus"
)

// WatchProfile publishes a ProfileChanged snapshot on the bus after every
// mutation of p. The returned func stops watching.
func WatchProfile(p *Profile, b bus.MessageBus) (stop func()) {
	if p == nil || b == nil {
		return func() {}
	}

	return p.LBAS.Subscribe(func() {
		b.Publish(TopicProfileChanged, ProfileChanged{Snapshot: p.Snapshot()})
	})
}
