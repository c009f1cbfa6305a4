package app

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/tasktracker/internal/keys"
	"github.com/nhle/tasktracker/internal/model"
	"github.com/nhle/tasktracker/internal/service"
	"github.com/nhle/tasktracker/internal/session"
	appsync "github.com/nhle/tasktracker/internal/sync"
	"github.com/nhle/tasktracker/internal/ui"
	"github.com/nhle/tasktracker/internal/ui/command"
	"github.com/nhle/tasktracker/internal/ui/detail"
	helpview "github.com/nhle/tasktracker/internal/ui/help"
	"github.com/nhle/tasktracker/internal/ui/login"
	"github.com/nhle/tasktracker/internal/ui/tagmgr"
	"github.com/nhle/tasktracker/internal/ui/taskform"
	"github.com/nhle/tasktracker/internal/ui/tasklist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewHelp
	ViewCommand
	ViewTaskForm
	ViewTagList
	ViewLogin
)

// Model is the root Bubble Tea model that manages view routing, layout,
// and access to the service facade.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	svc          *service.Service
	keys         *keys.KeyMap
	taskList     tasklist.Model
	detail       detail.Model
	helpView     helpview.Model
	commandView  command.Model
	taskForm     taskform.Model
	tagView      tagmgr.Model
	loginView    login.Model
	watcher      *appsync.Watcher
	logger       *slog.Logger
	user         *model.User
	notice       string
	ready        bool
}

// New creates a new root application model over svc.
func New(svc *service.Service, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	k := keys.DefaultKeyMap()

	return Model{
		currentView: ViewList,
		svc:         svc,
		keys:        k,
		taskList:    tasklist.New(svc, k, 80, 24),
		detail:      detail.New(svc, k, 80, 24),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
		taskForm:    taskform.New(80, 24),
		tagView:     tagmgr.New(svc, k, 80, 24),
		loginView:   login.New(80, 24),
		watcher:     appsync.New(svc),
		logger:      logger.With("component", "app"),
	}
}

// Init starts listening for invalidations and either loads the task list
// or asks the user to sign in.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.watcher.Start(),
		m.loadUser(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentSize()
		m.taskList.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		m.taskForm.SetSize(w, h)
		m.tagView.SetSize(w, h)
		m.loginView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case appsync.ChangedMsg:
		return m, tea.Batch(m.reloadFor(msg.Invalidation), m.watcher.WaitForNext())

	case userLoadedMsg:
		m.user = msg.user
		if m.svc.Session() == session.LoggedOut {
			m.currentView = ViewLogin
			cmd := m.loginView.Start("")
			return m, cmd
		}
		m.currentView = ViewList
		return m, m.taskList.Init()

	case userRefreshedMsg:
		m.user = msg.user
		return m, nil

	case login.SubmittedMsg:
		return m, m.login(msg.User)

	case login.CancelMsg:
		return m, m.quit()

	case loginResultMsg:
		if msg.err != nil {
			cmd := m.loginView.Start(msg.err.Error())
			return m, cmd
		}
		m.user = &msg.user
		m.currentView = ViewList
		m.notice = "Signed in as " + msg.user.Name
		return m, m.taskList.Init()

	case logoutResultMsg:
		m.user = nil
		m.notice = ""
		if msg.err != nil {
			m.notice = "Logout: " + msg.err.Error()
		}
		m.currentView = ViewLogin
		cmd := m.loginView.Start("")
		return m, cmd

	case tasklist.SelectedTaskMsg:
		m.previousView = m.currentView
		m.currentView = ViewDetail
		cmd := m.detail.Open(msg.TaskID)
		return m, cmd

	case tasklist.EditTaskMsg:
		m.previousView = m.currentView
		m.currentView = ViewTaskForm
		m.taskForm.SetTags(msg.Tags)
		if msg.Task == nil {
			cmd := m.taskForm.StartCreate()
			return m, cmd
		}
		cmd := m.taskForm.StartEdit(*msg.Task)
		return m, cmd

	case taskform.TaskCreatedMsg:
		m.currentView = ViewList
		return m, m.createTask(msg.Task)

	case taskform.TaskUpdatedMsg:
		m.currentView = m.previousView
		return m, m.updateTask(msg.ID, msg.Patch)

	case taskform.TaskFormCancelMsg:
		m.currentView = m.previousView
		return m, nil

	case taskSavedMsg:
		if msg.err != nil {
			m.notice = "Error: " + msg.err.Error()
		} else {
			m.notice = msg.status
		}
		return m, nil

	case detail.DetailLoadedMsg:
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd

	case detail.BackMsg:
		m.currentView = ViewList
		return m, nil

	case tagmgr.TagListCloseMsg:
		m.currentView = ViewList
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		cmd := m.executeCommand(string(msg))
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}
		if !m.inputFocused() {
			if cmd, handled := m.handleGlobalKey(msg); handled {
				return m, cmd
			}
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// inputFocused reports whether the active view consumes raw key input.
func (m Model) inputFocused() bool {
	switch m.currentView {
	case ViewTaskForm, ViewLogin, ViewCommand:
		return true
	case ViewList:
		return m.taskList.Searching()
	case ViewDetail:
		return m.detail.Editing()
	case ViewTagList:
		return m.tagView.Editing()
	}
	return false
}

func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit) && m.currentView == ViewList:
		return m.quit(), true

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return nil, true

	case msg.String() == ":":
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m.commandView.Focus(), true

	case key.Matches(msg, m.keys.Back) && (m.currentView == ViewHelp):
		m.currentView = m.previousView
		return nil, true

	case key.Matches(msg, m.keys.Tags) && m.currentView == ViewList:
		m.previousView = m.currentView
		m.currentView = ViewTagList
		return m.tagView.Init(), true

	case key.Matches(msg, m.keys.Logout) && m.currentView == ViewList:
		return m.logout(), true
	}
	return nil, false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.taskList, cmd = m.taskList.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		if km, ok := msg.(tea.KeyMsg); ok && km.String() == "esc" {
			m.currentView = m.previousView
			return m, nil
		}
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewTaskForm:
		m.taskForm, cmd = m.taskForm.Update(msg)
	case ViewTagList:
		m.tagView, cmd = m.tagView.Update(msg)
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	}

	return m, cmd
}

// reloadFor refetches whatever the visible views derive from the
// invalidated families.
func (m Model) reloadFor(inv service.Invalidation) tea.Cmd {
	var cmds []tea.Cmd
	if inv.Has(service.FamilyTask) || inv.Has(service.FamilyTag) {
		cmds = append(cmds, m.taskList.LoadTasks())
	}
	if m.currentView == ViewDetail &&
		(inv.Has(service.FamilyTask) || inv.Has(service.FamilyTag) || inv.Has(service.FamilyComment)) {
		cmds = append(cmds, m.detail.Reload())
	}
	if inv.Has(service.FamilyTag) {
		cmds = append(cmds, m.tagView.Reload())
	}
	if inv.Has(service.FamilyUser) {
		cmds = append(cmds, m.refreshUser())
	}
	return tea.Batch(cmds...)
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	h := ui.Header{Notice: m.notice, SaveErr: m.svc.PersistError()}
	if m.user != nil {
		h.UserName = m.user.Name
	}
	filters := ""
	if m.currentView == ViewList {
		filters = m.taskList.FilterSummary()
	}
	header := m.layout.RenderHeader(h)
	statusBar := m.layout.RenderStatusBar(m.keyHints(), filters)

	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.taskList.View()
	case ViewDetail:
		return m.detail.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewTaskForm:
		return m.taskForm.View()
	case ViewTagList:
		return m.tagView.View()
	case ViewLogin:
		return m.loginView.View()
	default:
		return ""
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	case ViewDetail:
		return "esc back | n comment | e edit | d delete | j/k select"
	case ViewTaskForm:
		return "enter submit | esc cancel"
	case ViewTagList:
		return "n new | e edit | d delete | esc back"
	case ViewLogin:
		return "enter submit | ctrl+c quit"
	default:
		if status := m.taskList.Status(); status != "" {
			return status
		}
		return "q quit | ? help | n new | / search | tab sort"
	}
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	switch cmd {
	case "quit":
		return m.quit()
	case "logout":
		return m.logout()
	case "new task":
		m.currentView = ViewList
		return m.openNewTask()
	case "tags":
		m.previousView = ViewList
		m.currentView = ViewTagList
		return m.tagView.Init()
	case "hide completed":
		return m.taskList.ToggleHideDone()
	case "clear filters":
		return m.taskList.ClearFilters()
	case "overdue":
		return m.taskList.SetDueFilter(model.UrgencyOverdue)
	case "today":
		return m.taskList.SetDueFilter(model.UrgencyToday)
	case "tomorrow":
		return m.taskList.SetDueFilter(model.UrgencyTomorrow)
	case "upcoming":
		return m.taskList.SetDueFilter(model.UrgencyUpcoming)
	case "undated":
		return m.taskList.SetDueFilter(model.UrgencyNone)
	default:
		return nil
	}
}

func (m Model) quit() tea.Cmd {
	m.watcher.Stop()
	return tea.Quit
}
