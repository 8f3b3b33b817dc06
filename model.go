package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type screen int

const (
	screenList screen = iota
	screenForm
	screenDetail
	screenPanel
)

type formMode int

const (
	formCreate formMode = iota
	formEdit
)

type formField int

const (
	fieldName formField = iota
	fieldDescription
	fieldTechStack
	fieldUserStories
	fieldCount
)

type projectListItem struct {
	project Project
}

func (i projectListItem) Title() string { return i.project.Name }

func (i projectListItem) Description() string {
	var parts []string
	if len(i.project.TechStack) > 0 {
		parts = append(parts, strings.Join(i.project.TechStack, ", "))
	}
	switch n := len(i.project.UserStories); n {
	case 0:
		parts = append(parts, "no stories")
	case 1:
		parts = append(parts, "1 story")
	default:
		parts = append(parts, fmt.Sprintf("%d stories", n))
	}
	return strings.Join(parts, "  •  ")
}

func (i projectListItem) FilterValue() string {
	return i.project.Name + " " + strings.Join(i.project.TechStack, " ")
}

type newProjectListItem struct{}

func (newProjectListItem) Title() string       { return "+ New project" }
func (newProjectListItem) Description() string { return "Track another project" }
func (newProjectListItem) FilterValue() string { return "" }

type feedbackFinishedMsg struct {
	result feedbackResult
}

type appDeps struct {
	cfg       appConfig
	store     *projectStore
	requester *feedbackRequester
	panels    *panelHost
	logger    *zap.Logger
	prefs     *uiPreferences
	prefsPath string
}

type model struct {
	ctx       context.Context
	cfg       appConfig
	store     *projectStore
	requester *feedbackRequester
	panels    *panelHost
	logger    *zap.Logger
	prefs     *uiPreferences
	prefsPath string
	markdown  *markdownRenderer

	styles   styles
	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	projects list.Model
	feedback viewport.Model
	panel    viewport.Model

	screen     screen
	prevScreen screen
	width      int
	height     int

	formMode     formMode
	formTargetID string
	formFocus    formField
	nameInput    textinput.Model
	techInput    textinput.Model
	descInput    textarea.Model
	storiesInput textarea.Model

	draft        textarea.Model
	pending      bool
	feedbackErr  string
	confirmingID string

	toastMessage   string
	toastExpires   time.Time
	writeClipboard func(string) error
}

func newModel(ctx context.Context, deps appDeps) *model {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := deps.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	prefs := deps.prefs
	if prefs == nil {
		prefs = &uiPreferences{}
	}

	m := &model{
		ctx:            ctx,
		cfg:            deps.cfg,
		store:          deps.store,
		requester:      deps.requester,
		panels:         deps.panels,
		logger:         logger,
		prefs:          prefs,
		prefsPath:      deps.prefsPath,
		markdown:       newMarkdownRenderer(markdownThemeFromString(prefs.Theme), 72),
		styles:         newStyles(),
		keys:           newKeyMap(),
		help:           help.New(),
		feedback:       viewport.New(72, 12),
		panel:          viewport.New(80, 20),
		writeClipboard: clipboard.WriteAll,
	}

	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))
	m.spinner.Style = m.styles.statusHint.Copy().Bold(true)

	m.projects = list.New(nil, list.NewDefaultDelegate(), 60, 20)
	m.projects.Title = appTitle
	m.projects.SetShowHelp(false)
	m.projects.DisableQuitKeybindings()

	m.nameInput = textinput.New()
	m.nameInput.Placeholder = "Project name"
	m.nameInput.CharLimit = 120
	m.nameInput.Width = 48

	m.techInput = textinput.New()
	m.techInput.Placeholder = "Go, Postgres, React"
	m.techInput.CharLimit = 512
	m.techInput.Width = 48

	m.descInput = newTextarea("What is this project about?", 4)
	m.storiesInput = newTextarea("One user story per line", 6)
	m.draft = newTextarea("As a user, I want ..., so that ...", 4)

	m.refreshProjects()
	return m
}

func newTextarea(placeholder string, height int) textarea.Model {
	area := textarea.New()
	area.Placeholder = placeholder
	area.Prompt = ""
	area.ShowLineNumbers = false
	area.CharLimit = 4096
	area.SetWidth(60)
	area.SetHeight(height)
	area.Blur()
	return area
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case feedbackFinishedMsg:
		m.handleFeedbackFinished(msg.result)
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.forceQuit) {
			return m, tea.Quit
		}
		if m.confirmingID != "" {
			m.handleConfirmKey(msg)
			return m, nil
		}
		switch m.screen {
		case screenList:
			return m, m.updateList(msg)
		case screenForm:
			return m, m.updateForm(msg)
		case screenDetail:
			return m, m.updateDetail(msg)
		case screenPanel:
			return m, m.updatePanel(msg)
		}
	}

	switch m.screen {
	case screenList:
		var cmd tea.Cmd
		m.projects, cmd = m.projects.Update(msg)
		cmds = append(cmds, cmd)
	case screenForm:
		cmds = append(cmds, m.updateFocusedField(msg))
	case screenDetail:
		if m.draft.Focused() {
			var cmd tea.Cmd
			m.draft, cmd = m.draft.Update(msg)
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *model) updateList(msg tea.KeyMsg) tea.Cmd {
	if m.projects.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.projects, cmd = m.projects.Update(msg)
		return cmd
	}
	switch {
	case key.Matches(msg, m.keys.quit):
		return tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return nil
	case key.Matches(msg, m.keys.devtools):
		return m.openPanel()
	case key.Matches(msg, m.keys.theme):
		m.cycleTheme()
		return nil
	case key.Matches(msg, m.keys.newProject):
		return m.openForm(formCreate, Project{})
	case key.Matches(msg, m.keys.open):
		switch item := m.projects.SelectedItem().(type) {
		case projectListItem:
			m.openDetail(item.project.ID)
		case newProjectListItem:
			return m.openForm(formCreate, Project{})
		}
		return nil
	case key.Matches(msg, m.keys.edit):
		if item, ok := m.projects.SelectedItem().(projectListItem); ok {
			return m.openForm(formEdit, item.project)
		}
		return nil
	case key.Matches(msg, m.keys.remove):
		if item, ok := m.projects.SelectedItem().(projectListItem); ok {
			m.confirmingID = item.project.ID
		}
		return nil
	}
	var cmd tea.Cmd
	m.projects, cmd = m.projects.Update(msg)
	return cmd
}

func (m *model) updateDetail(msg tea.KeyMsg) tea.Cmd {
	if m.draft.Focused() {
		switch {
		case key.Matches(msg, m.keys.back):
			m.draft.Blur()
			return nil
		case msg.String() == "ctrl+g":
			return m.startFeedback()
		}
		var cmd tea.Cmd
		m.draft, cmd = m.draft.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return tea.Quit
	case key.Matches(msg, m.keys.back):
		m.closeDetail()
		return nil
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return nil
	case key.Matches(msg, m.keys.devtools):
		return m.openPanel()
	case key.Matches(msg, m.keys.theme):
		m.cycleTheme()
		return nil
	case key.Matches(msg, m.keys.focusDraft):
		return m.draft.Focus()
	case key.Matches(msg, m.keys.generate):
		return m.startFeedback()
	case key.Matches(msg, m.keys.copy):
		m.copyFeedback()
		return nil
	case key.Matches(msg, m.keys.edit):
		if project, ok := m.store.Active(); ok {
			return m.openForm(formEdit, project)
		}
		return nil
	case key.Matches(msg, m.keys.remove):
		m.confirmingID = m.store.ActiveID()
		return nil
	}
	var cmd tea.Cmd
	m.feedback, cmd = m.feedback.Update(msg)
	return cmd
}

func (m *model) updatePanel(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.devtools):
		m.screen = m.prevScreen
		return nil
	case key.Matches(msg, m.keys.quit):
		return tea.Quit
	}
	var cmd tea.Cmd
	m.panel, cmd = m.panel.Update(msg)
	return cmd
}

func (m *model) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.back):
		m.closeForm()
		return nil
	case key.Matches(msg, m.keys.save):
		m.submitForm()
		return nil
	case key.Matches(msg, m.keys.nextField):
		return m.focusField((m.formFocus + 1) % fieldCount)
	case key.Matches(msg, m.keys.prevField):
		return m.focusField((m.formFocus + fieldCount - 1) % fieldCount)
	}
	return m.updateFocusedField(msg)
}

func (m *model) updateFocusedField(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.formFocus {
	case fieldName:
		m.nameInput, cmd = m.nameInput.Update(msg)
	case fieldDescription:
		m.descInput, cmd = m.descInput.Update(msg)
	case fieldTechStack:
		m.techInput, cmd = m.techInput.Update(msg)
	case fieldUserStories:
		m.storiesInput, cmd = m.storiesInput.Update(msg)
	}
	return cmd
}

func (m *model) openForm(mode formMode, project Project) tea.Cmd {
	fields := fieldsFromProject(project)
	m.formMode = mode
	m.formTargetID = project.ID
	m.nameInput.SetValue(fields.Name)
	m.nameInput.CursorEnd()
	m.descInput.SetValue(fields.Description)
	m.techInput.SetValue(fields.TechStack)
	m.storiesInput.SetValue(fields.UserStories)
	if m.screen != screenForm {
		m.prevScreen = m.screen
	}
	m.screen = screenForm
	return m.focusField(fieldName)
}

func (m *model) focusField(field formField) tea.Cmd {
	m.formFocus = field
	m.nameInput.Blur()
	m.descInput.Blur()
	m.techInput.Blur()
	m.storiesInput.Blur()
	switch field {
	case fieldName:
		return m.nameInput.Focus()
	case fieldDescription:
		return m.descInput.Focus()
	case fieldTechStack:
		return m.techInput.Focus()
	case fieldUserStories:
		return m.storiesInput.Focus()
	}
	return nil
}

func (m *model) formFields() ProjectFields {
	return ProjectFields{
		Name:        m.nameInput.Value(),
		Description: m.descInput.Value(),
		TechStack:   m.techInput.Value(),
		UserStories: m.storiesInput.Value(),
	}
}

// submitForm saves the form. An invalid form stays open without a message.
func (m *model) submitForm() {
	fields := m.formFields()
	switch m.formMode {
	case formCreate:
		project, ok := m.store.Create(fields)
		if !ok {
			return
		}
		m.resetForm()
		m.refreshProjects()
		m.openDetail(project.ID)
	case formEdit:
		if !m.store.Update(m.formTargetID, fields) {
			return
		}
		id := m.formTargetID
		m.resetForm()
		m.refreshProjects()
		if m.prevScreen == screenDetail {
			m.openDetail(id)
			return
		}
		m.screen = screenList
	}
}

func (m *model) closeForm() {
	m.resetForm()
	m.screen = m.prevScreen
	if m.screen == screenForm {
		m.screen = screenList
	}
}

func (m *model) resetForm() {
	m.formTargetID = ""
	m.formFocus = fieldName
	m.nameInput.Blur()
	m.nameInput.Reset()
	m.techInput.Blur()
	m.techInput.Reset()
	m.descInput.Blur()
	m.descInput.Reset()
	m.storiesInput.Blur()
	m.storiesInput.Reset()
}

func (m *model) openDetail(id string) {
	if m.store.ActiveID() != id {
		m.draft.Reset()
		m.feedbackErr = ""
	}
	m.store.SetActive(id)
	m.screen = screenDetail
	m.refreshFeedback()
}

func (m *model) closeDetail() {
	m.draft.Blur()
	m.draft.Reset()
	m.feedbackErr = ""
	m.store.SetActive("")
	m.screen = screenList
	m.refreshProjects()
}

// handleConfirmKey answers the pending delete. The store only removes the
// project when the answer is yes.
func (m *model) handleConfirmKey(msg tea.KeyMsg) {
	var answer bool
	switch {
	case key.Matches(msg, m.keys.confirm):
		answer = true
	case key.Matches(msg, m.keys.decline):
		answer = false
	default:
		return
	}
	id := m.confirmingID
	m.confirmingID = ""
	deleted := m.store.Delete(id, func(Project) bool { return answer })
	if !deleted {
		return
	}
	m.refreshProjects()
	if m.screen == screenDetail && m.store.ActiveID() == "" {
		m.draft.Reset()
		m.feedbackErr = ""
		m.screen = screenList
	}
	m.setToast("Project deleted", 3*time.Second)
}

func (m *model) startFeedback() tea.Cmd {
	if m.pending {
		return nil
	}
	project, ok := m.store.Active()
	if !ok {
		m.feedbackErr = displayError(errNoActiveProject)
		return nil
	}
	draft := m.draft.Value()
	if strings.TrimSpace(draft) == "" {
		m.feedbackErr = displayError(errEmptyDraft)
		return nil
	}
	m.pending = true
	m.feedbackErr = ""
	return tea.Batch(m.spinner.Tick, requestFeedbackCmd(m.ctx, m.requester, project.ID, draft))
}

// requestFeedbackCmd runs on its own goroutine, so the target project is
// fixed before it is scheduled.
func requestFeedbackCmd(ctx context.Context, requester *feedbackRequester, projectID, draft string) tea.Cmd {
	return func() tea.Msg {
		return feedbackFinishedMsg{result: requester.RequestFor(ctx, projectID, draft)}
	}
}

func (m *model) handleFeedbackFinished(result feedbackResult) {
	m.pending = false
	current := m.store.ActiveID() == result.ProjectID
	if !result.OK() {
		if current {
			m.feedbackErr = result.Message()
		}
		return
	}
	if current {
		m.feedbackErr = ""
		m.draft.Reset()
	}
	m.refreshProjects()
	m.refreshFeedback()
	m.setToast("Feedback ready", 3*time.Second)
}

func (m *model) copyFeedback() {
	text, ok := m.requester.Feedback(m.store.ActiveID())
	if !ok || strings.TrimSpace(text) == "" {
		m.setToast("No feedback to copy yet", 3*time.Second)
		return
	}
	if err := m.writeClipboard(text); err != nil {
		m.logger.Warn("clipboard write failed", zap.Error(err))
		m.setToast("Clipboard unavailable", 4*time.Second)
		return
	}
	m.setToast("Feedback copied", 3*time.Second)
}

func (m *model) openPanel() tea.Cmd {
	p, ok := m.panels.Lookup(devtoolsPanelTitle)
	if !ok {
		m.setToast("Dev Tools panel is not available", 4*time.Second)
		return nil
	}
	m.panel.SetContent(m.markdown.Render(renderDevtoolsPanel(p, m.cfg)))
	m.panel.GotoTop()
	if m.screen != screenPanel {
		m.prevScreen = m.screen
	}
	m.screen = screenPanel
	return nil
}

func (m *model) cycleTheme() {
	theme := nextMarkdownTheme(m.markdown.Theme())
	m.markdown.SetTheme(theme)
	m.prefs.Theme = string(theme)
	if m.prefsPath != "" {
		if err := saveUIPreferences(m.prefs, m.prefsPath); err != nil {
			m.logger.Warn("saving ui preferences failed", zap.Error(err))
		}
	}
	m.refreshFeedback()
	m.setToast(fmt.Sprintf("Theme: %s", theme), 3*time.Second)
}

func (m *model) refreshProjects() {
	projects := m.store.List()
	items := make([]list.Item, 0, len(projects)+1)
	for _, project := range projects {
		items = append(items, projectListItem{project: project})
	}
	items = append(items, newProjectListItem{})
	m.projects.SetItems(items)
}

func (m *model) refreshFeedback() {
	text, ok := m.requester.Feedback(m.store.ActiveID())
	if !ok {
		m.feedback.SetContent("")
		return
	}
	m.feedback.SetContent(m.markdown.Render(text))
	m.feedback.GotoTop()
}

func (m *model) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.width = width
	m.height = height
	inner := max(width-4, 20)
	m.help.Width = inner
	m.projects.SetSize(inner, max(height-4, 5))
	m.nameInput.Width = min(inner-2, 80)
	m.techInput.Width = min(inner-2, 80)
	m.descInput.SetWidth(min(inner, 80))
	m.storiesInput.SetWidth(min(inner, 80))
	m.draft.SetWidth(min(inner, 80))
	m.feedback.Width = inner
	m.feedback.Height = max(height/3, 5)
	m.panel.Width = inner
	m.panel.Height = max(height-4, 5)
	m.markdown.SetWidth(inner - 2)
	m.refreshFeedback()
}

func (m *model) setToast(msg string, duration time.Duration) {
	trimmed := strings.TrimSpace(msg)
	if trimmed == "" {
		m.toastMessage = ""
		m.toastExpires = time.Time{}
		return
	}
	if duration <= 0 {
		duration = 5 * time.Second
	}
	m.toastMessage = trimmed
	m.toastExpires = time.Now().Add(duration)
}

func (m *model) currentToast() string {
	if m.toastMessage == "" || time.Now().After(m.toastExpires) {
		return ""
	}
	return m.toastMessage
}
