// Package app hosts the root Bubble Tea model: view routing, engine
// wiring and the status bar.
package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailpilot/internal/enrich"
	"github.com/nhle/mailpilot/internal/keys"
	"github.com/nhle/mailpilot/internal/model"
	"github.com/nhle/mailpilot/internal/store"
	appsync "github.com/nhle/mailpilot/internal/sync"
	"github.com/nhle/mailpilot/internal/theme"
	"github.com/nhle/mailpilot/internal/ui"
	"github.com/nhle/mailpilot/internal/ui/compose"
	"github.com/nhle/mailpilot/internal/ui/detail"
	"github.com/nhle/mailpilot/internal/ui/maillist"
)

// snoozeDuration is how long the snooze key hides an email for.
const snoozeDuration = 24 * time.Hour

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewCompose
	ViewHelp
)

// storeChangedMsg signals that the cache published a change.
type storeChangedMsg struct{}

// profilesChangedMsg signals a sender profile state transition.
type profilesChangedMsg struct{}

// folderFetchedMsg reports a completed folder fetch.
type folderFetchedMsg struct {
	folder model.Folder
	err    error
}

// opDoneMsg reports a completed fire-and-forget operation.
type opDoneMsg struct{}

// healthMsg reports the startup backend health probe.
type healthMsg struct {
	err error
}

// Model is the root Bubble Tea model that manages view routing, layout,
// and access to the synchronization engine.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap

	store      *store.Store
	controller *appsync.Controller
	profiles   *enrich.Profiles

	mailList maillist.Model
	detail   detail.Model
	compose  compose.Model

	storeCh    <-chan struct{}
	profilesCh <-chan struct{}

	ready         bool
	statusMessage string
	statusIsError bool
}

// New creates the root application model.
func New(
	s *store.Store,
	controller *appsync.Controller,
	profiles *enrich.Profiles,
) Model {
	k := keys.DefaultKeyMap()

	return Model{
		currentView: ViewList,
		keys:        k,
		store:       s,
		controller:  controller,
		profiles:    profiles,
		mailList:    maillist.New(s, k, 80, 24),
		detail:      detail.New(profiles, k, 80, 24),
		compose:     compose.New(80, 24),
		storeCh:     s.Subscribe(),
		profilesCh:  profiles.Subscribe(),
	}
}

// Init kicks off the subscriptions, the health probe and the first
// folder fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.waitStore(),
		m.waitProfiles(),
		m.checkHealth(),
		m.fetchFolder(model.FolderUnified),
	)
}

// waitStore returns a command that waits for the next cache change
// signal. Re-issued after every receive to keep listening.
func (m Model) waitStore() tea.Cmd {
	ch := m.storeCh
	return func() tea.Msg {
		<-ch
		return storeChangedMsg{}
	}
}

// waitProfiles mirrors waitStore for the enrichment cache.
func (m Model) waitProfiles() tea.Cmd {
	ch := m.profilesCh
	return func() tea.Msg {
		<-ch
		return profilesChangedMsg{}
	}
}

// checkHealth probes the backend once at startup.
func (m Model) checkHealth() tea.Cmd {
	c := m.controller
	return func() tea.Msg {
		return healthMsg{err: c.Health(context.Background())}
	}
}

// fetchFolder runs a folder fetch off the UI loop.
func (m Model) fetchFolder(folder model.Folder) tea.Cmd {
	c := m.controller
	return func() tea.Msg {
		err := c.FetchFolder(context.Background(), folder, 0)
		return folderFetchedMsg{folder: folder, err: err}
	}
}

// selectEmail makes the email active and fetches its detail record.
func (m Model) selectEmail(email model.Email) tea.Cmd {
	c := m.controller
	return func() tea.Msg {
		merged := c.SelectEmail(context.Background(), email)
		return detail.EmailLoadedMsg{Email: merged}
	}
}

// remoteSearch widens a committed search query to the backend.
func (m Model) remoteSearch(query string) tea.Cmd {
	c := m.controller
	return func() tea.Msg {
		_ = c.Search(context.Background(), query)
		return opDoneMsg{}
	}
}

// generateDrafts runs agent draft generation for the batch selection.
func (m Model) generateDrafts() tea.Cmd {
	c := m.controller
	return func() tea.Msg {
		_ = c.GenerateAgentDrafts(context.Background())
		return opDoneMsg{}
	}
}

// agentFetch triggers a backend ingestion pass plus refetch.
func (m Model) agentFetch() tea.Cmd {
	c := m.controller
	return func() tea.Msg {
		_ = c.FetchWithAgent(context.Background())
		return opDoneMsg{}
	}
}

// saveDraft stores the composed message as a backend draft.
func (m Model) saveDraft(payload model.SendPayload) tea.Cmd {
	c := m.controller
	s := m.store
	return func() tea.Msg {
		err := c.CreateDraft(context.Background(), payload.To, payload.Subject, payload.Content)
		if err == nil {
			s.Notify(model.NewNotification(
				model.NotificationInfo, "", "Draft saved"))
		}
		return opDoneMsg{}
	}
}

// sendEmail submits a composed message.
func (m Model) sendEmail(payload model.SendPayload) tea.Cmd {
	c := m.controller
	return func() tea.Msg {
		_ = c.SendEmail(context.Background(), payload)
		return opDoneMsg{}
	}
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.mailList.SetSize(contentWidth, contentHeight)
		m.detail.SetSize(contentWidth, contentHeight)
		m.compose.SetSize(contentWidth, contentHeight)
		return m.updateActiveView(msg)

	case storeChangedMsg:
		m.mailList.Reload()
		m.drainNotifications()
		return m, m.waitStore()

	case profilesChangedMsg:
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(detail.ProfileChangedMsg{})
		return m, tea.Batch(cmd, m.waitProfiles())

	case folderFetchedMsg:
		m.mailList.Reload()
		return m, nil

	case opDoneMsg:
		m.mailList.Reload()
		return m, nil

	case healthMsg:
		if msg.err != nil {
			m.statusMessage = "backend unreachable: " + msg.err.Error()
			m.statusIsError = true
		}
		return m, nil

	case maillist.SelectedEmailMsg:
		m.previousView = m.currentView
		m.currentView = ViewDetail
		m.detail.SetLoading(true)
		return m, m.selectEmail(msg.Email)

	case maillist.SelectedDraftMsg:
		m.previousView = m.currentView
		m.currentView = ViewDetail
		draft := msg.Draft
		m.detail.ShowDraft(&draft)
		return m, nil

	case maillist.FolderChangedMsg:
		return m, m.fetchFolder(msg.Folder)

	case maillist.ToggleMarkMsg:
		m.controller.ToggleBatchSelection(msg.Email)
		return m, nil

	case maillist.ArchiveMsg:
		m.controller.Archive(msg.ID)
		return m, nil

	case maillist.DeleteMsg:
		m.controller.Delete(msg.ID)
		return m, nil

	case maillist.SnoozeMsg:
		m.controller.Snooze(msg.ID, time.Now().Add(snoozeDuration))
		return m, nil

	case maillist.GenerateDraftsMsg:
		if m.store.SelectedCount() == 0 {
			m.statusMessage = "no emails selected for draft generation"
			m.statusIsError = false
			return m, nil
		}
		return m, m.generateDrafts()

	case maillist.SearchCommittedMsg:
		return m, m.remoteSearch(msg.Query)

	case maillist.RefreshMsg:
		return m, m.fetchFolder(m.mailList.Folder())

	case maillist.AgentFetchMsg:
		m.statusMessage = "agent fetch running..."
		m.statusIsError = false
		return m, m.agentFetch()

	case maillist.ComposeMsg:
		m.previousView = m.currentView
		m.currentView = ViewCompose
		return m, m.compose.StartCompose()

	case detail.BackMsg:
		m.currentView = ViewList
		return m, nil

	case detail.ReplyMsg:
		m.previousView = m.currentView
		m.currentView = ViewCompose
		return m, m.compose.StartReply(msg.Email)

	case compose.SaveDraftMsg:
		m.currentView = ViewList
		return m, m.saveDraft(msg.Payload)

	case compose.SendRequestedMsg:
		m.currentView = ViewList
		return m, m.sendEmail(msg.Payload)

	case compose.CancelMsg:
		m.currentView = ViewList
		return m, nil

	case tea.KeyMsg:
		// Global keys checked before view dispatch.
		if m.currentView == ViewList {
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			case "?":
				m.previousView = m.currentView
				m.currentView = ViewHelp
				return m, nil
			}
		}
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil
		}
	}

	return m.updateActiveView(msg)
}

// updateActiveView forwards a message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.mailList, cmd = m.mailList.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewCompose:
		m.compose, cmd = m.compose.Update(msg)
	}

	return m, cmd
}

// drainNotifications pulls queued notifications into the status bar,
// keeping the most recent one visible.
func (m *Model) drainNotifications() {
	for _, n := range m.store.TakeNotifications() {
		m.statusMessage = n.Message
		m.statusIsError = n.Kind == model.NotificationError
	}
}

// View renders the active view inside the standard frame.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var content string
	switch m.currentView {
	case ViewList:
		content = m.mailList.View()
	case ViewDetail:
		content = m.detail.View()
	case ViewCompose:
		content = m.compose.View()
	case ViewHelp:
		content = m.renderHelp()
	}

	header := m.layout.RenderHeader("mailpilot", string(m.mailList.Folder()))
	statusBar := m.layout.RenderStatusBar(m.statusLine())
	return m.layout.RenderWithFrame(header, content, statusBar)
}

// statusLine combines the transient notification, the active error slot
// and the short help hints.
func (m Model) statusLine() string {
	if m.statusMessage != "" {
		if m.statusIsError {
			return theme.ErrorStyle.Render(m.statusMessage)
		}
		return m.statusMessage
	}
	if errMsg := m.store.Err(); errMsg != "" {
		return theme.ErrorStyle.Render(errMsg)
	}
	return "enter open · space mark · g drafts · tab folder · / search · ? help"
}

// renderHelp renders the expanded keybinding help.
func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(theme.HeaderStyle.Render(" Keybindings ") + "\n\n")
	for _, group := range m.keys.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			fmt.Fprintf(&b, "  %-12s %s\n", h.Key, h.Desc)
		}
		b.WriteString("\n")
	}
	b.WriteString(theme.HelpStyle.Render("press any key to close"))
	return b.String()
}
