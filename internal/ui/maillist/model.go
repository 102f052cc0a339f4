package maillist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailpilot/internal/keys"
	"github.com/nhle/mailpilot/internal/model"
	"github.com/nhle/mailpilot/internal/store"
	"github.com/nhle/mailpilot/internal/theme"
	"github.com/nhle/mailpilot/internal/view"
)

// folderCycle is the folder order used by next/prev folder keys.
var folderCycle = []model.Folder{
	model.FolderUnified,
	model.FolderUnread,
	model.FolderFlagged,
	model.FolderSnoozed,
	model.FolderArchived,
	model.FolderDrafts,
}

// SelectedEmailMsg is sent when the user opens an email.
type SelectedEmailMsg struct {
	Email model.Email
}

// SelectedDraftMsg is sent when the user opens a saved AI draft.
type SelectedDraftMsg struct {
	Draft model.Draft
}

// FolderChangedMsg asks the parent to fetch the newly selected folder.
type FolderChangedMsg struct {
	Folder model.Folder
}

// ToggleMarkMsg asks the parent to toggle batch selection for an email.
type ToggleMarkMsg struct {
	Email model.Email
}

// ArchiveMsg, DeleteMsg and SnoozeMsg request local-only mutations.
type ArchiveMsg struct{ ID string }
type DeleteMsg struct{ ID string }
type SnoozeMsg struct{ ID string }

// GenerateDraftsMsg asks the parent to run agent draft generation for
// the current batch selection.
type GenerateDraftsMsg struct{}

// SearchCommittedMsg asks the parent to run a remote search for the
// committed query. Typing already filters the cached rows locally; the
// commit widens the search to full bodies on the backend.
type SearchCommittedMsg struct {
	Query string
}

// RefreshMsg asks the parent to refetch the current folder.
type RefreshMsg struct{}

// AgentFetchMsg asks the parent to trigger a backend ingestion pass.
type AgentFetchMsg struct{}

// ComposeMsg asks the parent to open the compose form.
type ComposeMsg struct{}

// Model is the folder list view component.
type Model struct {
	list        list.Model
	store       *store.Store
	keys        *keys.KeyMap
	folder      model.Folder
	sort        view.Sort
	searchMode  bool
	searchInput textinput.Model
	search      string
	marked      map[string]bool
	width       int
	height      int
}

// New creates a new mail list model.
func New(s *store.Store, k *keys.KeyMap, width, height int) Model {
	marked := make(map[string]bool)
	delegate := RowDelegate{marked: marked}

	l := list.New([]list.Item{}, delegate, width, height-2)
	l.Title = "Inbox"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search mail..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		store:       s,
		keys:        k,
		folder:      model.FolderUnified,
		sort:        view.DefaultSort(),
		searchInput: si,
		marked:      marked,
		width:       width,
		height:      height,
	}
}

// Init returns the initial command for the list view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Folder returns the folder currently shown.
func (m Model) Folder() model.Folder {
	return m.folder
}

// SetSize updates the component dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}

// Reload recomputes the visible rows from the current store snapshot.
// The view derivation is pure; the store stays the single source of
// truth.
func (m *Model) Reload() {
	rows := view.Derive(
		m.store.Snapshot(),
		m.store.Drafts(),
		m.folder,
		m.search,
		m.sort,
	)

	for id := range m.marked {
		delete(m.marked, id)
	}
	for _, id := range m.store.SelectedIDs() {
		m.marked[id] = true
	}

	items := make([]list.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, RowItem{Row: row})
	}
	m.list.SetItems(items)
	m.list.Title = folderTitle(m.folder, len(rows), m.store.SelectedCount())
}

// Update handles messages for the list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.searchMode {
		return m.updateSearch(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(keyMsg, m.keys.Search):
		m.searchMode = true
		m.searchInput.SetValue(m.search)
		m.searchInput.Focus()
		return m, textinput.Blink

	case key.Matches(keyMsg, m.keys.NextFolder):
		return m.changeFolder(1)

	case key.Matches(keyMsg, m.keys.PrevFolder):
		return m.changeFolder(-1)

	case key.Matches(keyMsg, m.keys.SortDate):
		m.sort.Toggle(view.SortByDate)
		m.Reload()
		return m, nil

	case key.Matches(keyMsg, m.keys.SortSender):
		m.sort.Toggle(view.SortBySender)
		m.Reload()
		return m, nil

	case key.Matches(keyMsg, m.keys.Select):
		return m, m.openSelected()

	case key.Matches(keyMsg, m.keys.ToggleMark):
		if email, ok := m.selectedEmail(); ok {
			return m, func() tea.Msg { return ToggleMarkMsg{Email: email} }
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.Archive):
		if email, ok := m.selectedEmail(); ok {
			return m, func() tea.Msg { return ArchiveMsg{ID: email.ID} }
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.Delete):
		if email, ok := m.selectedEmail(); ok {
			return m, func() tea.Msg { return DeleteMsg{ID: email.ID} }
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.Snooze):
		if email, ok := m.selectedEmail(); ok {
			return m, func() tea.Msg { return SnoozeMsg{ID: email.ID} }
		}
		return m, nil

	case key.Matches(keyMsg, m.keys.Drafts):
		return m, func() tea.Msg { return GenerateDraftsMsg{} }

	case key.Matches(keyMsg, m.keys.Refresh):
		return m, func() tea.Msg { return RefreshMsg{} }

	case key.Matches(keyMsg, m.keys.AgentFetch):
		return m, func() tea.Msg { return AgentFetchMsg{} }

	case key.Matches(keyMsg, m.keys.Compose):
		return m, func() tea.Msg { return ComposeMsg{} }
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// updateSearch handles key input while the search prompt is focused.
func (m Model) updateSearch(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			m.searchMode = false
			m.search = strings.TrimSpace(m.searchInput.Value())
			m.searchInput.Blur()
			m.Reload()
			if m.search != "" {
				query := m.search
				return m, func() tea.Msg { return SearchCommittedMsg{Query: query} }
			}
			return m, nil
		case "esc":
			m.searchMode = false
			m.search = ""
			m.searchInput.SetValue("")
			m.searchInput.Blur()
			m.Reload()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	// Live filtering while typing.
	m.search = strings.TrimSpace(m.searchInput.Value())
	m.Reload()
	return m, cmd
}

// changeFolder cycles to the next or previous folder and notifies the
// parent so it can fetch the backing batch.
func (m Model) changeFolder(step int) (Model, tea.Cmd) {
	idx := 0
	for i, f := range folderCycle {
		if f == m.folder {
			idx = i
			break
		}
	}
	idx = (idx + step + len(folderCycle)) % len(folderCycle)
	m.folder = folderCycle[idx]
	m.Reload()

	folder := m.folder
	return m, func() tea.Msg { return FolderChangedMsg{Folder: folder} }
}

// openSelected emits the selection message for the focused row.
func (m Model) openSelected() tea.Cmd {
	item, ok := m.list.SelectedItem().(RowItem)
	if !ok {
		return nil
	}

	switch row := item.Row.(type) {
	case view.MailRow:
		email := row.Email
		return func() tea.Msg { return SelectedEmailMsg{Email: email} }
	case view.DraftRow:
		draft := row.Draft
		return func() tea.Msg { return SelectedDraftMsg{Draft: draft} }
	}
	return nil
}

// selectedEmail returns the focused email, if the focused row is one.
func (m Model) selectedEmail() (model.Email, bool) {
	item, ok := m.list.SelectedItem().(RowItem)
	if !ok {
		return model.Email{}, false
	}
	mailRow, ok := item.Row.(view.MailRow)
	if !ok {
		return model.Email{}, false
	}
	return mailRow.Email, true
}

// View renders the list view.
func (m Model) View() string {
	if m.searchMode {
		return lipgloss.JoinVertical(
			lipgloss.Left,
			m.searchInput.View(),
			m.list.View(),
		)
	}
	return m.list.View()
}

// folderTitle builds the list header for the current folder.
func folderTitle(folder model.Folder, count, selected int) string {
	name := string(folder)
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	if selected > 0 {
		return fmt.Sprintf("%s (%d shown, %d marked)", name, count, selected)
	}
	return fmt.Sprintf("%s (%d shown)", name, count)
}
