package ui

import (
	"sync"

	"fyne.io/fyne/v2"
)

type uiRuntime struct {
	fyApp  fyne.App
	window fyne.Window

	stops  []func()
	onQuit func()

	shutdownOnce sync.Once
}

func newUIRuntime(fyApp fyne.App, window fyne.Window, onQuit func(), stops ...func()) *uiRuntime {
	return &uiRuntime{
		fyApp:  fyApp,
		window: window,
		stops:  stops,
		onQuit: onQuit,
	}
}

func (r *uiRuntime) BindCloseIntercept() {
	if r.window == nil {
		return
	}
	r.window.SetCloseIntercept(func() {
		appLogger.Debug("main window closed: quitting")
		r.Quit()
	})
}

func (r *uiRuntime) Quit() {
	r.shutdownOnce.Do(func() {
		appLogger.Info("quitting UI runtime")
		r.stop()
		if r.fyApp != nil {
			r.fyApp.Quit()
		}
	})
}

func (r *uiRuntime) Run() {
	if r.window != nil {
		r.window.Show()
	}
	if r.fyApp != nil {
		r.fyApp.Run()
	}
	appLogger.Info("UI runtime stopped")
	r.shutdownOnce.Do(func() {
		r.stop()
	})
}

func (r *uiRuntime) stop() {
	for _, stop := range r.stops {
		if stop != nil {
			stop()
		}
	}
	if r.onQuit != nil {
		r.onQuit()
	}
}
