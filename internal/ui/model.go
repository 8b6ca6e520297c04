// Package ui renders short-lived notifications under a bubbletea view.
package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/coursecast/coursecast/style"
)

const lifetime = 3 * time.Second

// Model holds at most one notification.
type Model struct {
	notification string
	id           int
}

type notifyMsg string

type clearMsg struct{ id int }

// Notify shows text until it expires or another notification replaces it.
func Notify(text string) tea.Cmd {
	return func() tea.Msg {
		return notifyMsg(text)
	}
}

func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case notifyMsg:
		m.notification = string(msg)
		m.id++
		id := m.id
		return tea.Tick(lifetime, func(time.Time) tea.Msg {
			return clearMsg{id: id}
		})
	case clearMsg:
		if msg.id == m.id {
			m.notification = ""
		}
	}
	return nil
}

// Current is the visible notification, if any.
func (m *Model) Current() string {
	return m.notification
}

// View appends the notification to the last line of content.
func (m *Model) View(content string) string {
	if m.notification == "" {
		return content
	}

	lines := strings.Split(content, "\n")
	lines[len(lines)-1] += "  " + style.Faint(m.notification)
	return strings.Join(lines, "\n")
}
