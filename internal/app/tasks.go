package app

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/tasktracker/internal/model"
	"github.com/nhle/tasktracker/internal/service"
	"github.com/nhle/tasktracker/internal/ui/tasklist"
)

type userLoadedMsg struct {
	user *model.User
}

type userRefreshedMsg struct {
	user *model.User
}

type loginResultMsg struct {
	user model.User
	err  error
}

type logoutResultMsg struct {
	err error
}

type taskSavedMsg struct {
	status string
	err    error
}

// loadUser fetches the restored user, if any, to decide the first view.
func (m Model) loadUser() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		u, err := svc.FetchCurrentUser(context.Background())
		if err != nil {
			return userLoadedMsg{}
		}
		return userLoadedMsg{user: u}
	}
}

func (m Model) refreshUser() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		u, _ := svc.FetchCurrentUser(context.Background())
		return userRefreshedMsg{user: u}
	}
}

func (m Model) login(nu model.NewUser) tea.Cmd {
	svc, logger := m.svc, m.logger
	return func() tea.Msg {
		u, err := svc.Login(context.Background(), nu)
		if err != nil {
			logger.Warn("login failed", "error", err)
			return loginResultMsg{err: err}
		}
		logger.Info("logged in", "user", u.ID)
		return loginResultMsg{user: u}
	}
}

func (m Model) logout() tea.Cmd {
	svc, logger := m.svc, m.logger
	return func() tea.Msg {
		err := svc.Logout(context.Background())
		if err != nil {
			logger.Error("logout failed", "error", err)
		}
		return logoutResultMsg{err: err}
	}
}

// openNewTask fetches the tag options and then opens the create form.
func (m Model) openNewTask() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		tags, _ := svc.FetchTags(context.Background())
		return tasklist.EditTaskMsg{Tags: tags}
	}
}

func (m Model) createTask(nt model.NewTask) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		t, err := svc.CreateTask(context.Background(), nt)
		if errors.Is(err, service.ErrNotLoggedIn) {
			return logoutResultMsg{}
		}
		return taskSavedMsg{status: "Created " + t.Title, err: err}
	}
}

func (m Model) updateTask(id string, patch model.TaskPatch) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		t, err := svc.UpdateTask(context.Background(), id, patch)
		return taskSavedMsg{status: "Updated " + t.Title, err: err}
	}
}
