package ui

import (
	"fyne.io/fyne/v2"

	"github.com/kagahq/kaga/internal/config"
	"github.com/kagahq/kaga/internal/domain"
)

type DataDependencies struct {
	Config  config.AppConfig
	Profile *domain.Profile
}

type ActionDependencies struct {
	OnExport              func() error
	OnConfigureGroupNodes func(group int)
	OnQuit                func()
}

type UIHooks struct {
	ShowErrorDialog func(err error, window fyne.Window)
	Notifier        NotificationSender
}

type Dependencies struct {
	Data    DataDependencies
	Actions ActionDependencies
	UIHooks UIHooks
}
