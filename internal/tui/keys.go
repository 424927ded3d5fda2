package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	up        key.Binding
	down      key.Binding
	enter     key.Binding
	esc       key.Binding
	tab       key.Binding
	backtab   key.Binding
	quit      key.Binding
	buildInfo key.Binding
	dismiss   key.Binding

	refresh   key.Binding
	newFolder key.Binding
	upload    key.Binding
	delete    key.Binding
	copyLink  key.Binding
	download  key.Binding
	edit      key.Binding
	save      key.Binding
	reset     key.Binding
	yes       key.Binding
	no        key.Binding
}

var keys = keyMap{
	up:        key.NewBinding(key.WithKeys("up", "k")),
	down:      key.NewBinding(key.WithKeys("down", "j")),
	enter:     key.NewBinding(key.WithKeys("enter")),
	esc:       key.NewBinding(key.WithKeys("esc")),
	tab:       key.NewBinding(key.WithKeys("tab")),
	backtab:   key.NewBinding(key.WithKeys("shift+tab")),
	quit:      key.NewBinding(key.WithKeys("ctrl+c")),
	buildInfo: key.NewBinding(key.WithKeys("v")),
	dismiss:   key.NewBinding(key.WithKeys("ctrl+x")),

	refresh:   key.NewBinding(key.WithKeys("r")),
	newFolder: key.NewBinding(key.WithKeys("n")),
	upload:    key.NewBinding(key.WithKeys("u")),
	delete:    key.NewBinding(key.WithKeys("d")),
	copyLink:  key.NewBinding(key.WithKeys("c")),
	download:  key.NewBinding(key.WithKeys("s")),
	edit:      key.NewBinding(key.WithKeys("e")),
	save:      key.NewBinding(key.WithKeys("ctrl+s")),
	reset:     key.NewBinding(key.WithKeys("ctrl+r")),
	yes:       key.NewBinding(key.WithKeys("y")),
	no:        key.NewBinding(key.WithKeys("n")),
}
