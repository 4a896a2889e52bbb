package ui

import (
	"log/slog"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	kagaapp "github.com/kagahq/kaga/internal/app"
)

var appLogger = slog.With("component", "ui")

var newFyneApp = func() fyne.App {
	return fyneapp.NewWithID("io.github.kagahq.kaga")
}

func Run(dep Dependencies) error {
	appLogger = slog.With("component", "ui")

	return runWithApp(dep, newFyneApp())
}

func runWithApp(dep Dependencies, fyApp fyne.App) error {
	appLogger.Info("starting UI runtime", "profile", dep.Data.Profile.Name())

	window := fyApp.NewWindow(kagaapp.Name + " - " + dep.Data.Profile.Name())
	window.Resize(fyne.NewSize(640, 420))

	view := buildMainView(dep, window)
	window.SetContent(view.content)

	uiRuntime := newUIRuntime(fyApp, window, dep.Actions.OnQuit, view.lbas.Close)
	uiRuntime.BindCloseIntercept()
	uiRuntime.Run()

	return nil
}

type mainView struct {
	content fyne.CanvasObject
	lbas    *lbasPanel
	status  *widget.Label
	export  *widget.Button
}

func buildMainView(dep Dependencies, window fyne.Window) mainView {
	showError := dep.UIHooks.ShowErrorDialog
	if showError == nil {
		showError = dialog.ShowError
	}
	notifier := dep.UIHooks.Notifier
	if notifier == nil {
		notifier = NewBeeepNotificationSender()
	}

	lbas := newLBASPanel(dep.Data.Profile.LBAS, dep.Actions.OnConfigureGroupNodes)
	status := widget.NewLabel("")

	export := widget.NewButtonWithIcon("Export to kancolle-auto", theme.DocumentSaveIcon(), nil)
	export.OnTapped = func() {
		if dep.Actions.OnExport == nil {
			status.SetText("Export is not configured")
			return
		}
		if err := dep.Actions.OnExport(); err != nil {
			appLogger.Warn("export profile", "error", err)
			status.SetText("Export failed: " + err.Error())
			showError(err, window)
			return
		}
		status.SetText("Exported " + dep.Data.Profile.Name())
		if dep.Data.Config.UI.Notifications {
			notifier.Send(kagaapp.Name, "Profile exported to kancolle-auto")
		}
	}

	tabs := container.NewAppTabs(
		container.NewTabItem("LBAS", container.NewPadded(lbas.CanvasObject())),
	)
	footer := container.NewBorder(nil, nil, nil, export, status)

	return mainView{
		content: container.NewBorder(nil, footer, nil, nil, tabs),
		lbas:    lbas,
		status:  status,
		export:  export,
	}
}
