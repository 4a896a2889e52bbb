package observable

import (
	"slices"
	"testing"
)

func TestSetAddRemoveEmitsSingleEvents(t *testing.T) {
	s := NewSet[int]()

	var changes []SetChange[int]
	s.Subscribe(func(change SetChange[int]) {
		changes = append(changes, change)
	})

	s.Add(2)
	s.Add(2)
	s.Remove(5)
	s.Remove(2)
	s.Remove(2)

	want := []SetChange[int]{
		{Op: SetAdded, Value: 2},
		{Op: SetRemoved, Value: 2},
	}
	if !slices.Equal(changes, want) {
		t.Fatalf("unexpected events: got %+v, want %+v", changes, want)
	}
	if s.Contains(2) {
		t.Fatalf("expected 2 to be removed")
	}
}

func TestSetItemsSorted(t *testing.T) {
	s := NewSet(3, 1, 7, 2)

	if got := s.Items(); !slices.Equal(got, []int{1, 2, 3, 7}) {
		t.Fatalf("unexpected items: %v", got)
	}
	if s.Len() != 4 {
		t.Fatalf("unexpected length: %d", s.Len())
	}
}

func TestSetReplaceEmitsDiff(t *testing.T) {
	s := NewSet(1, 2, 9)

	var changes []SetChange[int]
	s.Subscribe(func(change SetChange[int]) {
		changes = append(changes, change)
	})

	s.Replace([]int{2, 3, 3})

	want := []SetChange[int]{
		{Op: SetRemoved, Value: 1},
		{Op: SetRemoved, Value: 9},
		{Op: SetAdded, Value: 3},
	}
	if !slices.Equal(changes, want) {
		t.Fatalf("unexpected events: got %+v, want %+v", changes, want)
	}
	if got := s.Items(); !slices.Equal(got, []int{2, 3}) {
		t.Fatalf("unexpected items: %v", got)
	}
}

func TestSetUnsubscribe(t *testing.T) {
	s := NewSet[string]()

	calls := 0
	first := s.Subscribe(func(SetChange[string]) { calls++ })
	second := s.Subscribe(func(SetChange[string]) { calls++ })
	if s.Listeners() != 2 {
		t.Fatalf("expected 2 listeners, got %d", s.Listeners())
	}

	first()
	s.Add("A")
	second()
	s.Add("B")

	if calls != 1 {
		t.Fatalf("expected one delivery, got %d", calls)
	}
	if s.Listeners() != 0 {
		t.Fatalf("expected no listeners, got %d", s.Listeners())
	}
}

func TestSetOpString(t *testing.T) {
	if SetAdded.String() != "added" || SetRemoved.String() != "removed" || SetOp(0).String() != "unknown" {
		t.Fatalf("unexpected op names")
	}
}
