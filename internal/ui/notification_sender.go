package ui

import (
	"strings"

	"github.com/gen2brain/beeep"
)

type NotificationSender interface {
	Send(title, content string)
}

var beeepNotify = func(title, message string) error {
	return beeep.Notify(title, message, "")
}

// BeeepNotificationSender shows native desktop notifications.
type BeeepNotificationSender struct{}

func NewBeeepNotificationSender() *BeeepNotificationSender {
	return &BeeepNotificationSender{}
}

func (s *BeeepNotificationSender) Send(title, content string) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" && content == "" {
		return
	}

	// Notification backends may block on D-Bus or COM.
	go func() {
		if err := beeepNotify(title, content); err != nil {
			appLogger.Warn("send desktop notification", "error", err)
		}
	}()
}
