package detail

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailpilot/internal/enrich"
	"github.com/nhle/mailpilot/internal/keys"
	"github.com/nhle/mailpilot/internal/model"
	"github.com/nhle/mailpilot/internal/theme"
	"github.com/nhle/mailpilot/internal/view"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// EmailLoadedMsg carries the merged email after a detail fetch.
type EmailLoadedMsg struct {
	Email *model.Email
}

// ProfileChangedMsg tells the view to re-render the profile panel.
type ProfileChangedMsg struct{}

// ReplyMsg asks the parent to open the compose form as a reply to the
// shown email.
type ReplyMsg struct {
	Email model.Email
}

// Model is the email detail view component. It owns the profile poll
// lifetime: opening the profile panel starts the poll, leaving the view
// stops it.
type Model struct {
	email       *model.Email
	draft       *model.Draft
	viewport    viewport.Model
	keys        *keys.KeyMap
	profiles    *enrich.Profiles
	pollHandle  *enrich.Handle
	showProfile bool
	loading     bool
	width       int
	height      int
}

// New creates a new detail view model.
func New(profiles *enrich.Profiles, k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     k,
		profiles: profiles,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetLoading toggles the loading placeholder.
func (m *Model) SetLoading(loading bool) {
	m.loading = loading
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
}

// ShowEmail switches the view to a cache email.
func (m *Model) ShowEmail(email *model.Email) {
	m.email = email
	m.draft = nil
	m.loading = false
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// ShowDraft switches the view to a saved AI draft.
func (m *Model) ShowDraft(draft *model.Draft) {
	m.draft = draft
	m.email = nil
	m.loading = false
	m.showProfile = false
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// stopPoll cancels any running profile poll. Called whenever the view
// closes so the poll cannot outlive it.
func (m *Model) stopPoll() {
	if m.pollHandle != nil {
		m.pollHandle.Stop()
		m.pollHandle = nil
	}
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EmailLoadedMsg:
		if msg.Email != nil {
			m.ShowEmail(msg.Email)
		} else {
			m.loading = false
			m.viewport.SetContent(m.renderContent())
		}
		return m, nil

	case ProfileChangedMsg:
		m.viewport.SetContent(m.renderContent())
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			m.stopPoll()
			m.showProfile = false
			return m, func() tea.Msg { return BackMsg{} }

		case key.Matches(msg, m.keys.Profile):
			return m.toggleProfile()

		case key.Matches(msg, m.keys.Compose):
			if m.email != nil {
				email := *m.email
				m.stopPoll()
				m.showProfile = false
				return m, func() tea.Msg { return ReplyMsg{Email: email} }
			}
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn).
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// toggleProfile opens or closes the sender profile panel, lazily
// starting the enrichment poll on first open and retrying from a
// timed-out or failed state.
func (m Model) toggleProfile() (Model, tea.Cmd) {
	if m.email == nil {
		return m, nil
	}

	if m.showProfile {
		m.showProfile = false
		m.stopPoll()
		m.viewport.SetContent(m.renderContent())
		return m, nil
	}

	m.showProfile = true
	addr := m.email.Sender.Email
	name := m.email.Sender.Name

	switch m.profiles.Get(addr).State {
	case model.ProfileAbsent:
		m.pollHandle = m.profiles.Load(context.Background(), addr, name)
	case model.ProfileError:
		m.pollHandle = m.profiles.Retry(context.Background(), addr, name)
	}

	m.viewport.SetContent(m.renderContent())
	return m, nil
}

// View renders the detail view.
func (m Model) View() string {
	if m.loading {
		loadingStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return loadingStyle.Render("Loading email...")
	}

	if m.email == nil && m.draft == nil {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render("No email selected")
	}

	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.draft != nil {
		return m.renderDraft()
	}
	if m.email == nil {
		return ""
	}

	email := m.email
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(email.Subject))

	from := email.Sender.Name
	if email.Sender.Email != "" {
		from = fmt.Sprintf("%s <%s>", email.Sender.Name, email.Sender.Email)
	}
	sections = append(sections, "From: "+from)

	if len(email.Recipients) > 0 {
		var tos []string
		for _, r := range email.Recipients {
			tos = append(tos, r.Email)
		}
		sections = append(sections, "To: "+strings.Join(tos, ", "))
	}

	if !email.Date.IsZero() {
		sections = append(sections, "Date: "+email.Date.Format("Mon, 2 Jan 2006 15:04"))
	}

	var badges []string
	for _, c := range email.Categories {
		badges = append(badges, theme.CategoryStyle(string(c)).Render(string(c)))
	}
	if email.Snoozed {
		badges = append(badges, theme.MarkedStyle.Render("snoozed"))
	}
	if email.Archived {
		badges = append(badges, theme.HelpStyle.Render("archived"))
	}
	if len(badges) > 0 {
		sections = append(sections, strings.Join(badges, " "))
	}

	sections = append(sections, "", email.Content)

	if len(email.Drafts) > 0 {
		sections = append(sections, "", theme.HeaderStyle.Render(
			fmt.Sprintf(" AI Drafts (%d) ", len(email.Drafts))))
		for _, d := range email.Drafts {
			meta := theme.HelpStyle.Render(fmt.Sprintf(
				"%s · %s", d.Status, d.CreatedAt.Format("2 Jan 15:04")))
			sections = append(sections, meta, d.Content, "")
		}
	}

	if m.showProfile {
		sections = append(sections, "", m.renderProfile())
	}

	return strings.Join(sections, "\n")
}

// renderDraft renders a saved AI draft from the drafts folder.
func (m Model) renderDraft() string {
	d := m.draft
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render("AI draft"))
	sections = append(sections, "From: "+view.AssistantName)
	if !d.CreatedAt.IsZero() {
		sections = append(sections, "Created: "+d.CreatedAt.Format("Mon, 2 Jan 2006 15:04"))
	}
	sections = append(sections, theme.HelpStyle.Render(d.Status+" · "+d.ResponseType))
	sections = append(sections, "", d.Content)

	return strings.Join(sections, "\n")
}

// renderProfile renders the sender enrichment panel for the current
// email's sender.
func (m Model) renderProfile() string {
	prof := m.profiles.Get(m.email.Sender.Email)

	header := theme.HeaderStyle.Render(" Sender profile ")
	state := theme.ProfileStateStyle(prof.State.String()).Render(prof.State.String())

	switch prof.State {
	case model.ProfileLoading, model.ProfilePolling:
		return lipgloss.JoinVertical(lipgloss.Left, header,
			state+" researching "+prof.Email+"...")

	case model.ProfileError:
		return lipgloss.JoinVertical(lipgloss.Left, header,
			theme.ErrorStyle.Render(prof.Message),
			theme.HelpStyle.Render("press p twice to retry"))

	case model.ProfileResolved:
		d := prof.Details
		lines := []string{header}
		if d.Name != "" {
			lines = append(lines, "Name: "+d.Name)
		}
		if d.Role != "" || d.Company != "" {
			lines = append(lines, strings.TrimSpace("Role: "+d.Role+" @ "+d.Company))
		}
		if d.Location != "" {
			lines = append(lines, "Location: "+d.Location)
		}
		if d.Industry != "" {
			lines = append(lines, "Industry: "+d.Industry)
		}
		if d.Bio != "" {
			lines = append(lines, "", d.Bio)
		}
		var links []string
		for _, url := range []string{d.LinkedInURL, d.TwitterURL, d.Website} {
			if url != "" {
				links = append(links, url)
			}
		}
		if len(links) > 0 {
			lines = append(lines, "", strings.Join(links, "  "))
		}
		return lipgloss.JoinVertical(lipgloss.Left, lines...)

	default:
		return lipgloss.JoinVertical(lipgloss.Left, header, state)
	}
}
