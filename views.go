package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m *model) View() string {
	var body string
	switch m.screen {
	case screenForm:
		body = m.viewForm()
	case screenDetail:
		body = m.viewDetail()
	case screenPanel:
		body = m.viewPanel()
	default:
		body = m.projects.View()
	}
	if m.confirmingID != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, m.viewConfirm())
	}
	return m.styles.app.Render(lipgloss.JoinVertical(lipgloss.Left, body, m.viewStatus()))
}

func (m *model) viewForm() string {
	title := "New project"
	if m.formMode == formEdit {
		title = "Edit project"
	}
	rows := []string{
		m.styles.title.Render(title),
		m.formLabel(fieldName, "Name"),
		m.nameInput.View(),
		m.formLabel(fieldDescription, "Description"),
		m.descInput.View(),
		m.formLabel(fieldTechStack, "Tech stack (comma separated)"),
		m.techInput.View(),
		m.formLabel(fieldUserStories, "User stories (one per line)"),
		m.storiesInput.View(),
		m.styles.muted.Render("ctrl+s save • tab next field • esc cancel"),
	}
	return m.styles.panelFocused.Render(strings.Join(rows, "\n"))
}

func (m *model) formLabel(field formField, label string) string {
	if m.formFocus == field {
		return m.styles.fieldActive.Render("› " + label)
	}
	return m.styles.fieldInactive.Render("  " + label)
}

func (m *model) viewDetail() string {
	project, ok := m.store.Active()
	if !ok {
		return m.styles.muted.Render("No project selected.")
	}

	var b strings.Builder
	b.WriteString(m.styles.title.Render(project.Name))
	b.WriteString("\n")
	if project.Description != "" {
		b.WriteString(m.styles.value.Render(project.Description))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.styles.label.Render("Tech stack: "))
	if len(project.TechStack) == 0 {
		b.WriteString(m.styles.muted.Render(techStackPlaceholder))
	} else {
		b.WriteString(strings.Join(project.TechStack, ", "))
	}
	b.WriteString("\n\n")
	b.WriteString(m.styles.label.Render(fmt.Sprintf("User stories (%d)", len(project.UserStories))))
	b.WriteString("\n")
	if len(project.UserStories) == 0 {
		b.WriteString(m.styles.story.Render(m.styles.muted.Render(userStoriesPlaceholder)))
		b.WriteString("\n")
	}
	for i, story := range project.UserStories {
		b.WriteString(m.styles.story.Render(fmt.Sprintf("%d. %s", i+1, story)))
		b.WriteString("\n")
	}

	draftPanel := m.styles.panel
	if m.draft.Focused() {
		draftPanel = m.styles.panelFocused
	}
	b.WriteString("\n")
	b.WriteString(m.styles.label.Render("New user story"))
	b.WriteString("\n")
	b.WriteString(draftPanel.Render(m.draft.View()))
	b.WriteString("\n")

	switch {
	case m.pending:
		b.WriteString(m.spinner.View())
		b.WriteString(" Generating feedback…\n")
	case m.feedbackErr != "":
		b.WriteString(m.styles.errorText.Render(m.feedbackErr))
		b.WriteString("\n")
	}

	if _, ok := m.requester.Feedback(project.ID); ok {
		b.WriteString("\n")
		b.WriteString(m.styles.label.Render("Feedback"))
		b.WriteString("\n")
		b.WriteString(m.feedback.View())
		b.WriteString("\n")
	}
	return b.String()
}

func (m *model) viewPanel() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.title.Render(devtoolsPanelTitle),
		m.panel.View(),
	)
}

func (m *model) viewConfirm() string {
	name := m.confirmingID
	if project, ok := m.store.Get(m.confirmingID); ok {
		name = project.Name
	}
	prompt := fmt.Sprintf("Delete %q? %s / %s", name,
		m.styles.confirmKey.Render("y"),
		m.styles.confirmKey.Render("n"))
	return m.styles.confirmOverlay.Render(prompt)
}

func (m *model) viewStatus() string {
	segments := []string{m.help.View(m.keys)}
	if toast := m.currentToast(); toast != "" {
		segments = append([]string{m.styles.toast.Render(toast)}, segments...)
	}
	return m.styles.statusBar.Render(strings.Join(segments, "  "))
}
