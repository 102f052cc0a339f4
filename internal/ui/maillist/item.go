package maillist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailpilot/internal/model"
	"github.com/nhle/mailpilot/internal/theme"
	"github.com/nhle/mailpilot/internal/view"
)

// RowItem wraps a view.Row so it can be used in a bubbles/list.
type RowItem struct {
	Row view.Row
}

// FilterValue returns the string used for fuzzy filtering.
func (i RowItem) FilterValue() string {
	return i.Row.Title()
}

// Title returns the row title for the list.
func (i RowItem) Title() string {
	return i.Row.Title()
}

// Description returns a short summary line for the list.
func (i RowItem) Description() string {
	parts := []string{
		i.Row.From(),
		relativeTime(i.Row.When()),
	}
	return strings.Join(parts, " | ")
}

// RowDelegate implements list.ItemDelegate for rendering list rows.
type RowDelegate struct {
	// marked maps email ids currently batch-selected for draft
	// generation. Shared by reference with the maillist Model.
	marked map[string]bool
}

// Height returns the number of lines each row takes.
func (d RowDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between rows.
func (d RowDelegate) Spacing() int { return 0 }

// Update handles per-row messages (unused).
func (d RowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single list row line.
func (d RowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	rowItem, ok := item.(RowItem)
	if !ok {
		return
	}

	isSelected := index == m.Index()

	switch row := rowItem.Row.(type) {
	case view.MailRow:
		d.renderEmail(w, row.Email, isSelected)
	case view.DraftRow:
		d.renderDraft(w, row, isSelected)
	}
}

// renderEmail draws one cached email line.
func (d RowDelegate) renderEmail(w io.Writer, e model.Email, isSelected bool) {
	marker := " "
	if d.marked[e.ID] {
		marker = theme.MarkedStyle.Render("✓")
	}

	readDot := "●"
	if e.Read {
		readDot = " "
	}

	sender := e.Sender.Name
	if sender == "" {
		sender = e.Sender.Email
	}

	category := ""
	if len(e.Categories) > 0 {
		category = theme.CategoryStyle(string(e.Categories[0])).
			Render(string(e.Categories[0]))
	}

	line := fmt.Sprintf("%s %s %-22.22s %s %s",
		marker, readDot, sender, e.Subject, category)

	d.writeLine(w, line, isSelected, !e.Read)
}

// renderDraft draws one AI draft line in the drafts folder.
func (d RowDelegate) renderDraft(w io.Writer, row view.DraftRow, isSelected bool) {
	badge := theme.CategoryStyle("work").Render("draft")
	line := fmt.Sprintf("  %s %-22.22s %s", badge, view.AssistantName, row.Title())
	d.writeLine(w, line, isSelected, false)
}

// writeLine applies selection/unread styling and writes the line.
func (d RowDelegate) writeLine(w io.Writer, line string, isSelected, unread bool) {
	style := theme.ListItemStyle
	if unread {
		style = theme.ListItemStyle.Inherit(theme.UnreadStyle)
	}
	if isSelected {
		style = theme.SelectedItemStyle
	}
	fmt.Fprint(w, style.Render(line))
}

// relativeTime formats a timestamp as a compact age like "5m" or "2d".
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
