package view

import (
	"testing"
	"time"

	"github.com/nhle/mailpilot/internal/model"
)

func day(n int) time.Time {
	return time.Date(2026, 8, n, 12, 0, 0, 0, time.UTC)
}

func TestVisiblePrecedence(t *testing.T) {
	tests := []struct {
		name   string
		email  model.Email
		folder model.Folder
		want   bool
	}{
		{"deleted excluded from unified", model.Email{Deleted: true}, model.FolderUnified, false},
		{"deleted excluded from snoozed", model.Email{Deleted: true, Snoozed: true}, model.FolderSnoozed, false},
		{"deleted excluded from archived", model.Email{Deleted: true, Archived: true}, model.FolderArchived, false},
		{"snoozed only in snoozed", model.Email{Snoozed: true}, model.FolderSnoozed, true},
		{"snoozed hidden from unified", model.Email{Snoozed: true}, model.FolderUnified, false},
		{"snoozed wins over archived", model.Email{Snoozed: true, Archived: true}, model.FolderArchived, false},
		{"snoozed+archived shows in snoozed", model.Email{Snoozed: true, Archived: true}, model.FolderSnoozed, true},
		{"archived only in archived", model.Email{Archived: true}, model.FolderArchived, true},
		{"archived hidden from unified", model.Email{Archived: true}, model.FolderUnified, false},
		{"plain email in unified", model.Email{}, model.FolderUnified, true},
		{"plain email not in snoozed", model.Email{}, model.FolderSnoozed, false},
		{"plain email not in archived", model.Email{}, model.FolderArchived, false},
		{"unread folder excludes read", model.Email{Read: true}, model.FolderUnread, false},
		{"unread folder includes unread", model.Email{}, model.FolderUnread, true},
		{"flagged folder", model.Email{Flagged: true}, model.FolderFlagged, true},
		{"flagged folder excludes plain", model.Email{}, model.FolderFlagged, false},
		{"account folder matches", model.Email{Account: "me@gmail.com"}, model.Folder("me@gmail.com"), true},
		{"account folder mismatch", model.Email{Account: "other@gmail.com"}, model.Folder("me@gmail.com"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Visible(tt.email, tt.folder); got != tt.want {
				t.Errorf("Visible = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeriveDefaultSortNewestFirst(t *testing.T) {
	emails := []model.Email{
		{ID: "old", Date: day(1)},
		{ID: "new", Date: day(20)},
		{ID: "mid", Date: day(10)},
	}

	rows := Derive(emails, nil, model.FolderUnified, "", DefaultSort())
	got := rowIDs(rows)
	want := []string{"new", "mid", "old"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestSortToggle(t *testing.T) {
	s := DefaultSort()
	if s.Key != SortByDate || !s.Desc {
		t.Fatalf("DefaultSort = %+v", s)
	}

	s.Toggle(SortByDate)
	if s.Desc {
		t.Error("toggling the active key should flip direction")
	}
	s.Toggle(SortByDate)
	if !s.Desc {
		t.Error("second toggle should flip back")
	}

	s.Toggle(SortBySender)
	if s.Key != SortBySender || !s.Desc {
		t.Errorf("switching key should reset to descending, got %+v", s)
	}
}

func TestDeriveSenderSortCaseless(t *testing.T) {
	emails := []model.Email{
		{ID: "b", Sender: model.Sender{Name: "bob"}, Date: day(1)},
		{ID: "a", Sender: model.Sender{Name: "Alice"}, Date: day(2)},
		{ID: "c", Sender: model.Sender{Name: "carol"}, Date: day(3)},
	}

	rows := Derive(emails, nil, model.FolderUnified, "", Sort{Key: SortBySender, Desc: false})
	got := rowIDs(rows)
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want caseless %v", got, want)
		}
	}
}

func TestDeriveSenderTiebreakByDate(t *testing.T) {
	emails := []model.Email{
		{ID: "late", Sender: model.Sender{Name: "Same"}, Date: day(20)},
		{ID: "early", Sender: model.Sender{Name: "Same"}, Date: day(1)},
	}

	rows := Derive(emails, nil, model.FolderUnified, "", Sort{Key: SortBySender, Desc: false})
	if got := rowIDs(rows); got[0] != "early" {
		t.Errorf("order = %v, want date tiebreak", got)
	}
}

func TestDeriveSearchBeforeSort(t *testing.T) {
	emails := []model.Email{
		{ID: "m1", Subject: "Standup notes", Date: day(1)},
		{ID: "m2", Subject: "Invoice", Sender: model.Sender{Name: "Billing"}, Date: day(2)},
		{ID: "m3", Subject: "standup recording", Content: "link inside", Date: day(3)},
	}

	rows := Derive(emails, nil, model.FolderUnified, "STANDUP", DefaultSort())
	got := rowIDs(rows)
	if len(got) != 2 || got[0] != "m3" || got[1] != "m1" {
		t.Errorf("rows = %v, want filtered then sorted [m3 m1]", got)
	}
}

func TestDeriveSearchMatchesContentAndSender(t *testing.T) {
	emails := []model.Email{
		{ID: "m1", Content: "the quarterly report is attached"},
		{ID: "m2", Sender: model.Sender{Name: "Reporting Bot"}},
		{ID: "m3", Subject: "lunch"},
	}

	rows := Derive(emails, nil, model.FolderUnified, "report", DefaultSort())
	if len(rows) != 2 {
		t.Errorf("matched %d rows, want 2 (content + sender)", len(rows))
	}
}

func TestDeriveDraftsFolder(t *testing.T) {
	emails := []model.Email{{ID: "m1", Subject: "should not appear"}}
	drafts := []model.Draft{
		{ID: "d1", Content: "First line\nsecond line", CreatedAt: day(2)},
		{ID: "d2", Content: "  ", CreatedAt: day(5)},
	}

	rows := Derive(emails, drafts, model.FolderDrafts, "", DefaultSort())
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want drafts only", len(rows))
	}

	// Newest first; every row is a DraftRow attributed to the assistant.
	first, ok := rows[0].(DraftRow)
	if !ok {
		t.Fatalf("row type = %T, want DraftRow", rows[0])
	}
	if first.RowID() != "d2" {
		t.Errorf("first row = %s, want newest draft", first.RowID())
	}
	if first.Title() != "(empty draft)" {
		t.Errorf("blank draft title = %q", first.Title())
	}
	if rows[1].Title() != "First line" {
		t.Errorf("Title = %q, want first line only", rows[1].Title())
	}
	if rows[0].From() != AssistantName {
		t.Errorf("From = %q, want %q", rows[0].From(), AssistantName)
	}
}

func TestDeriveDraftsFolderSearch(t *testing.T) {
	drafts := []model.Draft{
		{ID: "d1", Content: "Thanks for the update"},
		{ID: "d2", Content: "See you Friday"},
	}

	rows := Derive(nil, drafts, model.FolderDrafts, "friday", DefaultSort())
	if len(rows) != 1 || rows[0].RowID() != "d2" {
		t.Errorf("rows = %v, want only d2", rowIDs(rows))
	}
}

func rowIDs(rows []Row) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.RowID()
	}
	return ids
}
