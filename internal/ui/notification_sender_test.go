package ui

import (
	"errors"
	"testing"
	"time"
)

func TestBeeepNotificationSenderSkipsEmpty(t *testing.T) {
	calls := make(chan string, 2)
	orig := beeepNotify
	t.Cleanup(func() { beeepNotify = orig })
	beeepNotify = func(title, message string) error {
		calls <- title + "|" + message
		return errors.New("no notification daemon")
	}

	sender := NewBeeepNotificationSender()
	sender.Send("  ", "")
	sender.Send(" kaga ", " exported ")

	select {
	case got := <-calls:
		if got != "kaga|exported" {
			t.Fatalf("unexpected notification: %q", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for notification")
	}
	select {
	case got := <-calls:
		t.Fatalf("unexpected extra notification: %q", got)
	case <-time.After(50 * time.Millisecond):
	}
}
