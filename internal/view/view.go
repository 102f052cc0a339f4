// Package view derives "which rows are visible" from a cache snapshot,
// the selected folder and the search/sort criteria. Derivation is pure:
// it never touches the store and never mutates its inputs.
package view

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/nhle/mailpilot/internal/model"
)

// AssistantName is the fixed display identity for AI-generated drafts in
// the drafts folder.
const AssistantName = "AI Assistant"

// SortKey selects the list ordering attribute.
type SortKey string

const (
	SortByDate   SortKey = "date"
	SortBySender SortKey = "sender"
)

// Sort holds the current list ordering state. Selecting the same key
// again flips the direction; selecting a different key resets to
// descending.
type Sort struct {
	Key  SortKey
	Desc bool
}

// DefaultSort is newest-first by date.
func DefaultSort() Sort {
	return Sort{Key: SortByDate, Desc: true}
}

// Toggle applies a sort key selection to the state.
func (s *Sort) Toggle(key SortKey) {
	if s.Key == key {
		s.Desc = !s.Desc
		return
	}
	s.Key = key
	s.Desc = true
}

// Row is one visible entry in the list view. Mail items and AI drafts
// are two variants of this sum; the renderer consumes the interface and
// type-switches only where the variants genuinely differ.
type Row interface {
	// RowID identifies the underlying entity.
	RowID() string

	// Title is the primary line (subject, or a draft excerpt).
	Title() string

	// From is the display identity shown in the list.
	From() string

	// Preview is the secondary content line.
	Preview() string

	// When is the timestamp used for date ordering.
	When() time.Time
}

// MailRow is a cache email visible in the current folder.
type MailRow struct {
	Email model.Email
}

func (r MailRow) RowID() string   { return r.Email.ID }
func (r MailRow) Title() string   { return r.Email.Subject }
func (r MailRow) From() string    { return r.Email.Sender.Name }
func (r MailRow) Preview() string { return r.Email.Snippet }
func (r MailRow) When() time.Time { return r.Email.Date }

// DraftRow is a saved AI draft materialized in the drafts folder.
type DraftRow struct {
	Draft model.Draft
}

func (r DraftRow) RowID() string { return r.Draft.ID }

func (r DraftRow) Title() string {
	title := strings.TrimSpace(r.Draft.Content)
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = title[:i]
	}
	if title == "" {
		title = "(empty draft)"
	}
	return title
}

func (r DraftRow) From() string    { return AssistantName }
func (r DraftRow) Preview() string { return r.Draft.Content }
func (r DraftRow) When() time.Time { return r.Draft.CreatedAt }

// senderCollator compares display names locale-aware and caseless.
var senderCollator = collate.New(language.Und, collate.IgnoreCase)

// Visible reports whether the email belongs to the given folder. The
// precedence chain is fixed: deleted tombstones are excluded everywhere;
// snoozed wins over archived; archived wins over the remaining folder
// predicates; any folder name outside the known constants is an account
// identifier requiring an exact match.
func Visible(e model.Email, folder model.Folder) bool {
	if e.Deleted {
		return false
	}
	if e.Snoozed {
		return folder == model.FolderSnoozed
	}
	if e.Archived {
		return folder == model.FolderArchived
	}

	switch folder {
	case model.FolderSnoozed, model.FolderArchived:
		return false
	case model.FolderUnified:
		return true
	case model.FolderUnread:
		return !e.Read
	case model.FolderFlagged:
		return e.Flagged
	default:
		return e.Account == string(folder)
	}
}

// matches applies the case-insensitive substring search over subject,
// sender display name and content.
func matches(search string, subject, from, content string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(subject), needle) ||
		strings.Contains(strings.ToLower(from), needle) ||
		strings.Contains(strings.ToLower(content), needle)
}

// Derive computes the ordered visible rows for a folder. The drafts
// folder bypasses the email cache entirely and lists saved agent drafts;
// every other folder filters the email snapshot. Search applies before
// sort.
func Derive(
	emails []model.Email,
	drafts []model.Draft,
	folder model.Folder,
	search string,
	s Sort,
) []Row {
	var rows []Row

	if folder == model.FolderDrafts {
		for _, d := range drafts {
			row := DraftRow{Draft: d}
			if matches(search, row.Title(), AssistantName, d.Content) {
				rows = append(rows, row)
			}
		}
	} else {
		for _, e := range emails {
			if !Visible(e, folder) {
				continue
			}
			if matches(search, e.Subject, e.Sender.Name, e.Content) {
				rows = append(rows, MailRow{Email: e})
			}
		}
	}

	sortRows(rows, s)
	return rows
}

// sortRows orders rows in place by the selected key and direction.
func sortRows(rows []Row, s Sort) {
	less := func(a, b Row) bool {
		switch s.Key {
		case SortBySender:
			if cmp := senderCollator.CompareString(a.From(), b.From()); cmp != 0 {
				return cmp < 0
			}
			return a.When().Before(b.When())
		default:
			return a.When().Before(b.When())
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if s.Desc {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})
}
