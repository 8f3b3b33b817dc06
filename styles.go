package main

import "github.com/charmbracelet/lipgloss"

type styles struct {
	app, title                 lipgloss.Style
	panel, panelFocused        lipgloss.Style
	label, value, muted, story lipgloss.Style
	errorText, toast           lipgloss.Style
	statusBar, statusHint      lipgloss.Style
	confirmOverlay, confirmKey lipgloss.Style
	fieldActive, fieldInactive lipgloss.Style
}

func newStyles() styles {
	return styles{
		app:            lipgloss.NewStyle().Padding(0, 1),
		title:          lipgloss.NewStyle().Bold(true).Padding(0, 1),
		panel:          lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).Padding(0, 1),
		panelFocused:   lipgloss.NewStyle().BorderStyle(lipgloss.DoubleBorder()).Padding(0, 1),
		label:          lipgloss.NewStyle().Bold(true),
		value:          lipgloss.NewStyle(),
		muted:          lipgloss.NewStyle().Faint(true),
		story:          lipgloss.NewStyle().PaddingLeft(2),
		errorText:      lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		toast:          lipgloss.NewStyle().Italic(true),
		statusBar:      lipgloss.NewStyle().Padding(0, 1),
		statusHint:     lipgloss.NewStyle().Faint(true),
		confirmOverlay: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2),
		confirmKey:     lipgloss.NewStyle().Bold(true),
		fieldActive:    lipgloss.NewStyle().Bold(true),
		fieldInactive:  lipgloss.NewStyle().Faint(true),
	}
}
