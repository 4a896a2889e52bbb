package ui

import (
	"fmt"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/kagahq/kaga/internal/domain"
	"github.com/kagahq/kaga/internal/observable"
)

// lbasPanel mirrors LBASSettings into an enable check, a content area that is
// only visible while LBAS is enabled, and one check per group.
//
// The settings must only be mutated on the UI goroutine; model listeners
// update widgets synchronously.
type lbasPanel struct {
	settings *domain.LBASSettings
	onConfig func(group int)

	enableCheck *widget.Check
	groupChecks map[int]*widget.Check
	nodeLabels  map[int]*widget.Label
	content     *fyne.Container
	root        fyne.CanvasObject

	// syncing is set while model state is pushed into widgets so the widget
	// callbacks do not write it back.
	syncing bool

	unsubscribe []func()
	closeOnce   sync.Once
}

func newLBASPanel(settings *domain.LBASSettings, onConfigureGroupNodes func(group int)) *lbasPanel {
	p := &lbasPanel{
		settings:    settings,
		onConfig:    onConfigureGroupNodes,
		groupChecks: make(map[int]*widget.Check, len(domain.LBASGroups())),
		nodeLabels:  make(map[int]*widget.Label, len(domain.LBASGroups())),
	}

	p.enableCheck = widget.NewCheck("Enable LBAS", nil)

	actions := [...]func(){p.ConfigureGroup1Nodes, p.ConfigureGroup2Nodes, p.ConfigureGroup3Nodes}
	grid := container.NewGridWithColumns(3)
	for i, group := range domain.LBASGroups() {
		check := widget.NewCheck(fmt.Sprintf("Group %d", group), nil)
		nodes := widget.NewLabel("")
		configure := widget.NewButtonWithIcon("Configure nodes", theme.SettingsIcon(), actions[i])
		p.groupChecks[group] = check
		p.nodeLabels[group] = nodes
		grid.Add(check)
		grid.Add(nodes)
		grid.Add(configure)
	}
	p.content = container.NewVBox(widget.NewSeparator(), grid)
	p.root = container.NewVBox(p.enableCheck, p.content)

	p.load()
	p.bind()

	return p
}

func (p *lbasPanel) CanvasObject() fyne.CanvasObject {
	return p.root
}

// load pushes the current settings into the widgets without writing back.
func (p *lbasPanel) load() {
	p.applyEnabled(p.settings.Enabled.Get())
	p.applyGroups()
	for _, group := range domain.LBASGroups() {
		p.applyNodes(group, p.settings.Nodes(group))
	}
}

func (p *lbasPanel) bind() {
	p.enableCheck.OnChanged = func(checked bool) {
		if p.syncing {
			return
		}
		appLogger.Debug("lbas enable toggled", "enabled", checked)
		setVisible(checked, p.content)
		p.settings.Enabled.Set(checked)
	}
	for _, group := range domain.LBASGroups() {
		group := group
		p.groupChecks[group].OnChanged = func(checked bool) {
			if p.syncing {
				return
			}
			appLogger.Debug("lbas group toggled", "group", group, "enabled", checked)
			p.settings.SetGroupEnabled(group, checked)
		}
	}

	p.unsubscribe = append(p.unsubscribe,
		p.settings.Enabled.Subscribe(func(change observable.ValueChange[bool]) {
			p.applyEnabled(change.New)
		}),
		p.settings.Groups.Subscribe(func(change observable.SetChange[int]) {
			if !domain.IsLBASGroup(change.Value) {
				return
			}
			p.applyGroups()
		}),
	)
	for _, group := range domain.LBASGroups() {
		group := group
		nodes, err := p.settings.GroupNodes(group)
		if err != nil {
			continue
		}
		p.unsubscribe = append(p.unsubscribe, nodes.Subscribe(func(change observable.ValueChange[[]string]) {
			p.applyNodes(group, change.New)
		}))
	}
}

func (p *lbasPanel) applyEnabled(enabled bool) {
	p.withSyncing(func() {
		p.enableCheck.SetChecked(enabled)
	})
	setVisible(enabled, p.content)
}

func (p *lbasPanel) applyGroups() {
	p.withSyncing(func() {
		for _, group := range domain.LBASGroups() {
			p.groupChecks[group].SetChecked(p.settings.GroupEnabled(group))
		}
	})
}

func (p *lbasPanel) applyNodes(group int, nodes []string) {
	label, ok := p.nodeLabels[group]
	if !ok {
		return
	}
	if len(nodes) == 0 {
		label.SetText("No nodes")
		return
	}
	label.SetText("Nodes: " + strings.Join(nodes, ", "))
}

func (p *lbasPanel) withSyncing(fn func()) {
	prev := p.syncing
	p.syncing = true
	defer func() { p.syncing = prev }()
	fn()
}

func (p *lbasPanel) ConfigureGroup1Nodes() { p.configureGroupNodes(1) }

func (p *lbasPanel) ConfigureGroup2Nodes() { p.configureGroupNodes(2) }

func (p *lbasPanel) ConfigureGroup3Nodes() { p.configureGroupNodes(3) }

// configureGroupNodes is a no-op unless a node configuration handler is wired.
func (p *lbasPanel) configureGroupNodes(group int) {
	if p.onConfig == nil {
		appLogger.Debug("configure lbas group nodes: no handler", "group", group)
		return
	}
	p.onConfig(group)
}

// Close releases every settings subscription held by the panel.
func (p *lbasPanel) Close() {
	p.closeOnce.Do(func() {
		for _, stop := range p.unsubscribe {
			stop()
		}
		p.unsubscribe = nil
	})
}

func setVisible(visible bool, objects ...fyne.CanvasObject) {
	for _, object := range objects {
		if object == nil {
			continue
		}
		if visible {
			object.Show()
			continue
		}
		object.Hide()
	}
}
