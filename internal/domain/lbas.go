package domain

import (
	"fmt"
	"slices"

	"github.com/kagahq/kaga/internal/observable"
)

const lbasGroupCount = 3

// LBASGroups returns the land based air squadron groups a profile can enable,
// in ascending order.
func LBASGroups() [lbasGroupCount]int {
	return [lbasGroupCount]int{1, 2, 3}
}

// LBASSettings is the land based air squadron part of a profile.
//
// Groups may hold identifiers other than 1-3 when written by other producers;
// they are kept as-is.
type LBASSettings struct {
	Enabled *observable.Value[bool]
	Groups  *observable.Set[int]
	nodes   [lbasGroupCount]*observable.Value[[]string]
}

func NewLBASSettings() *LBASSettings {
	s := &LBASSettings{
		Enabled: observable.NewComparable(false),
		Groups:  observable.NewSet[int](),
	}
	for i := range s.nodes {
		s.nodes[i] = observable.NewValue[[]string](nil, slices.Equal[[]string])
	}

	return s
}

func IsLBASGroup(group int) bool {
	return group >= 1 && group <= lbasGroupCount
}

// SetGroupEnabled adds or removes group from the enabled set.
func (s *LBASSettings) SetGroupEnabled(group int, enabled bool) {
	if enabled {
		s.Groups.Add(group)
		return
	}
	s.Groups.Remove(group)
}

func (s *LBASSettings) GroupEnabled(group int) bool {
	return s.Groups.Contains(group)
}

// GroupNodes exposes the observable node list of group.
func (s *LBASSettings) GroupNodes(group int) (*observable.Value[[]string], error) {
	if !IsLBASGroup(group) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidGroup, group)
	}

	return s.nodes[group-1], nil
}

func (s *LBASSettings) Nodes(group int) []string {
	v, err := s.GroupNodes(group)
	if err != nil {
		return nil
	}

	return slices.Clone(v.Get())
}

func (s *LBASSettings) SetNodes(group int, nodes []string) error {
	v, err := s.GroupNodes(group)
	if err != nil {
		return err
	}
	normalized, err := NormalizeNodes(nodes)
	if err != nil {
		return fmt.Errorf("group %d: %w", group, err)
	}
	if len(normalized) == 0 {
		normalized = nil
	}
	v.Set(normalized)

	return nil
}

// LBASSnapshot is a plain copy of LBASSettings.
type LBASSnapshot struct {
	Enabled    bool
	Groups     []int
	GroupNodes [lbasGroupCount][]string
}

func (s *LBASSettings) Snapshot() LBASSnapshot {
	out := LBASSnapshot{
		Enabled: s.Enabled.Get(),
		Groups:  s.Groups.Items(),
	}
	for i, v := range s.nodes {
		out.GroupNodes[i] = slices.Clone(v.Get())
	}

	return out
}

// Apply makes the settings equal to snap, emitting change events only for
// parts that differ.
func (s *LBASSettings) Apply(snap LBASSnapshot) error {
	nodes := [lbasGroupCount][]string{}
	for i, raw := range snap.GroupNodes {
		normalized, err := NormalizeNodes(raw)
		if err != nil {
			return fmt.Errorf("group %d: %w", i+1, err)
		}
		if len(normalized) > 0 {
			nodes[i] = normalized
		}
	}

	s.Enabled.Set(snap.Enabled)
	s.Groups.Replace(snap.Groups)
	for i, v := range s.nodes {
		v.Set(nodes[i])
	}

	return nil
}

// Subscribe calls fn after any change to the settings and returns a func
// releasing every underlying subscription.
func (s *LBASSettings) Subscribe(fn func()) (unsubscribe func()) {
	stops := []func(){
		s.Enabled.Subscribe(func(observable.ValueChange[bool]) { fn() }),
		s.Groups.Subscribe(func(observable.SetChange[int]) { fn() }),
	}
	for _, v := range s.nodes {
		stops = append(stops, v.Subscribe(func(observable.ValueChange[[]string]) { fn() }))
	}

	return func() {
		for _, stop := range stops {
			stop()
		}
	}
}
