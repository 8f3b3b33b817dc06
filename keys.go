package main

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	quit       key.Binding
	forceQuit  key.Binding
	newProject key.Binding
	open       key.Binding
	edit       key.Binding
	remove     key.Binding
	generate   key.Binding
	copy       key.Binding
	focusDraft key.Binding
	back       key.Binding
	save       key.Binding
	nextField  key.Binding
	prevField  key.Binding
	theme      key.Binding
	devtools   key.Binding
	confirm    key.Binding
	decline    key.Binding
	toggleHelp key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		newProject: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new project"),
		),
		open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		remove: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		generate: key.NewBinding(
			key.WithKeys("g", "ctrl+g"),
			key.WithHelp("g", "get feedback"),
		),
		copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy feedback"),
		),
		focusDraft: key.NewBinding(
			key.WithKeys("tab", "i"),
			key.WithHelp("tab", "write story"),
		),
		back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		nextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		prevField: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev field"),
		),
		theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "theme"),
		),
		devtools: key.NewBinding(
			key.WithKeys("f12"),
			key.WithHelp("F12", "dev tools"),
		),
		confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "confirm"),
		),
		decline: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n", "cancel"),
		),
		toggleHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.newProject,
		k.open,
		k.edit,
		k.remove,
		k.generate,
		k.devtools,
		k.toggleHelp,
		k.quit,
	}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.newProject, k.open, k.edit, k.remove},
		{k.focusDraft, k.generate, k.copy, k.back},
		{k.save, k.nextField, k.prevField},
		{k.theme, k.devtools, k.toggleHelp, k.quit},
	}
}
