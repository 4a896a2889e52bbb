package ui

import (
	"strings"
	"sync"
	"testing"

	"fyne.io/fyne/v2"
	fynetest "fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
)

func mustFindButtonByText(t *testing.T, root fyne.CanvasObject, text string) *widget.Button {
	t.Helper()
	for _, object := range fynetest.LaidOutObjects(root) {
		button, ok := object.(*widget.Button)
		if !ok {
			continue
		}
		if strings.TrimSpace(button.Text) == text {
			return button
		}
	}
	t.Fatalf("button %q not found", text)

	return nil
}

func findButtonsByText(root fyne.CanvasObject, text string) []*widget.Button {
	var out []*widget.Button
	for _, object := range fynetest.LaidOutObjects(root) {
		if button, ok := object.(*widget.Button); ok && strings.TrimSpace(button.Text) == text {
			out = append(out, button)
		}
	}

	return out
}

type notificationSpy struct {
	mu   sync.Mutex
	sent []string
}

func (s *notificationSpy) Send(title, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, title+": "+content)
}

func (s *notificationSpy) Sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.sent...)
}
