package compose

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailpilot/internal/model"
	"github.com/nhle/mailpilot/internal/theme"
)

// SendRequestedMsg is dispatched when the user submits the compose form.
type SendRequestedMsg struct {
	Payload model.SendPayload
}

// SaveDraftMsg is dispatched when the user saves the form as a draft
// instead of sending.
type SaveDraftMsg struct {
	Payload model.SendPayload
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	to      string
	cc      string
	bcc     string
	subject string
	content string
}

// Model is the Bubble Tea model for the compose/reply form.
type Model struct {
	form      *huh.Form
	fb        *formBindings
	replyToID string
	width     int
	height    int
}

// New creates a new compose form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// StartCompose initializes an empty form.
func (m *Model) StartCompose() tea.Cmd {
	*m.fb = formBindings{}
	m.replyToID = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// StartReply initializes the form as a reply to the given email.
func (m *Model) StartReply(email model.Email) tea.Cmd {
	*m.fb = formBindings{
		to:      email.Sender.Email,
		subject: replySubject(email.Subject),
	}
	m.replyToID = email.ID
	m.form = m.buildForm()
	return m.form.Init()
}

// buildForm constructs the huh form over the shared bindings.
func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("To").
				Value(&m.fb.to).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errEmptyRecipient
					}
					return nil
				}),
			huh.NewInput().Title("Cc").Value(&m.fb.cc),
			huh.NewInput().Title("Bcc").Value(&m.fb.bcc),
			huh.NewInput().Title("Subject").Value(&m.fb.subject),
			huh.NewText().Title("Message").Value(&m.fb.content).Lines(8),
		),
	).WithShowHelp(true)
}

// Update handles messages for the compose form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, func() tea.Msg { return CancelMsg{} }
		case "ctrl+s":
			payload := m.payload()
			return m, func() tea.Msg { return SaveDraftMsg{Payload: payload} }
		}
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		payload := m.payload()
		return m, func() tea.Msg { return SendRequestedMsg{Payload: payload} }
	}

	return m, cmd
}

// payload collects the current form fields into a send payload.
func (m Model) payload() model.SendPayload {
	return model.SendPayload{
		To:        strings.TrimSpace(m.fb.to),
		CC:        strings.TrimSpace(m.fb.cc),
		BCC:       strings.TrimSpace(m.fb.bcc),
		Subject:   strings.TrimSpace(m.fb.subject),
		Content:   m.fb.content,
		ReplyToID: m.replyToID,
	}
}

// View renders the compose form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	title := theme.HeaderStyle.Render(" Compose ")
	if m.replyToID != "" {
		title = theme.HeaderStyle.Render(" Reply ")
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, m.form.View())
}

// replySubject prefixes Re: unless the subject already carries it.
func replySubject(subject string) string {
	if strings.HasPrefix(strings.ToLower(subject), "re:") {
		return subject
	}
	return "Re: " + subject
}

// errEmptyRecipient rejects a send without a recipient.
var errEmptyRecipient = errors.New("recipient is required")
