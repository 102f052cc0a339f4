package sync

import (
	"context"
	"strings"
	"testing"

	"github.com/nhle/mailpilot/internal/model"
	"github.com/nhle/mailpilot/internal/remote"
	"github.com/nhle/mailpilot/internal/store"
)

// fakeAPI is a scripted remote.API. Unset methods return empty success
// responses.
type fakeAPI struct {
	listEmails        func(opts remote.ListOptions) (*remote.EmailBatch, error)
	unreadEmails      func(limit int) (*remote.EmailBatch, error)
	importantEmails   func(limit int) (*remote.EmailBatch, error)
	getEmail          func(id string) (*remote.WireEmail, error)
	listDrafts        func() (*remote.DraftList, error)
	createAgentDrafts func(req remote.AgentDraftRequest) (*remote.DraftResponse, error)
	triggerFetch      func() (*remote.FetchResponse, error)
	sendEmail         func(req remote.SendEmailRequest) (*remote.SendEmailResponse, error)
}

func (f *fakeAPI) Health(context.Context) (*remote.HealthResponse, error) {
	return &remote.HealthResponse{Status: "healthy"}, nil
}

func (f *fakeAPI) ListEmails(_ context.Context, opts remote.ListOptions) (*remote.EmailBatch, error) {
	if f.listEmails != nil {
		return f.listEmails(opts)
	}
	return &remote.EmailBatch{}, nil
}

func (f *fakeAPI) UnreadEmails(_ context.Context, limit int) (*remote.EmailBatch, error) {
	if f.unreadEmails != nil {
		return f.unreadEmails(limit)
	}
	return &remote.EmailBatch{}, nil
}

func (f *fakeAPI) ImportantEmails(_ context.Context, limit int) (*remote.EmailBatch, error) {
	if f.importantEmails != nil {
		return f.importantEmails(limit)
	}
	return &remote.EmailBatch{}, nil
}

func (f *fakeAPI) SearchEmails(ctx context.Context, query string, limit int) (*remote.EmailBatch, error) {
	return f.ListEmails(ctx, remote.ListOptions{Query: query, Limit: limit})
}

func (f *fakeAPI) GetEmail(_ context.Context, id string) (*remote.WireEmail, error) {
	if f.getEmail != nil {
		return f.getEmail(id)
	}
	return &remote.WireEmail{ID: id}, nil
}

func (f *fakeAPI) ListDrafts(context.Context) (*remote.DraftList, error) {
	if f.listDrafts != nil {
		return f.listDrafts()
	}
	return &remote.DraftList{Success: true}, nil
}

func (f *fakeAPI) CreateDraft(context.Context, remote.DraftRequest) (*remote.DraftResponse, error) {
	return &remote.DraftResponse{Success: true}, nil
}

func (f *fakeAPI) CreateAgentDrafts(_ context.Context, req remote.AgentDraftRequest) (*remote.DraftResponse, error) {
	if f.createAgentDrafts != nil {
		return f.createAgentDrafts(req)
	}
	return &remote.DraftResponse{Success: true}, nil
}

func (f *fakeAPI) TriggerFetch(context.Context) (*remote.FetchResponse, error) {
	if f.triggerFetch != nil {
		return f.triggerFetch()
	}
	return &remote.FetchResponse{Success: true}, nil
}

func (f *fakeAPI) SendEmail(_ context.Context, req remote.SendEmailRequest) (*remote.SendEmailResponse, error) {
	if f.sendEmail != nil {
		return f.sendEmail(req)
	}
	return &remote.SendEmailResponse{Success: true}, nil
}

func (f *fakeAPI) LookupProfile(context.Context, string) (*remote.ProfileResponse, error) {
	return &remote.ProfileResponse{}, nil
}

func (f *fakeAPI) RequestProfile(context.Context, remote.ProfileRequest) (*remote.ProfileResponse, error) {
	return &remote.ProfileResponse{}, nil
}

func batchOf(ids ...string) *remote.EmailBatch {
	b := &remote.EmailBatch{}
	for _, id := range ids {
		b.Emails = append(b.Emails, remote.WireEmail{ID: id, Sender: id + "@example.com"})
	}
	b.TotalCount = len(b.Emails)
	return b
}

func newTestController(api remote.API) (*Controller, *store.Store) {
	s := store.New()
	return NewController(api, s, 50, 7), s
}

func TestFetchFolderRoutesToEndpoints(t *testing.T) {
	var calls []string
	api := &fakeAPI{
		listEmails: func(opts remote.ListOptions) (*remote.EmailBatch, error) {
			calls = append(calls, "list")
			if opts.Days != 7 {
				t.Errorf("Days = %d, want window applied", opts.Days)
			}
			return batchOf("m1"), nil
		},
		unreadEmails: func(int) (*remote.EmailBatch, error) {
			calls = append(calls, "unread")
			return batchOf("m2"), nil
		},
		importantEmails: func(int) (*remote.EmailBatch, error) {
			calls = append(calls, "important")
			return batchOf("m3"), nil
		},
	}
	c, s := newTestController(api)
	ctx := context.Background()

	for _, folder := range []model.Folder{
		model.FolderUnified, model.FolderUnread, model.FolderFlagged,
	} {
		if err := c.FetchFolder(ctx, folder, 0); err != nil {
			t.Fatalf("FetchFolder(%s): %v", folder, err)
		}
		if c.Folder() != folder {
			t.Errorf("Folder = %s, want %s", c.Folder(), folder)
		}
	}

	want := []string{"list", "unread", "important"}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", calls, want)
		}
	}
	if s.Len() != 1 {
		t.Errorf("cache len = %d, want last batch only", s.Len())
	}
}

func TestFetchFolderFailureLeavesCacheUntouched(t *testing.T) {
	api := &fakeAPI{
		listEmails: func(remote.ListOptions) (*remote.EmailBatch, error) {
			return batchOf("m1"), nil
		},
	}
	c, s := newTestController(api)
	ctx := context.Background()

	if err := c.FetchFolder(ctx, model.FolderUnified, 0); err != nil {
		t.Fatalf("seed fetch: %v", err)
	}

	api.listEmails = func(remote.ListOptions) (*remote.EmailBatch, error) {
		return nil, &remote.APIError{Message: "connection refused"}
	}
	if err := c.FetchFolder(ctx, model.FolderUnified, 0); err == nil {
		t.Fatal("expected fetch error")
	}

	if s.Len() != 1 {
		t.Errorf("cache len = %d, want previous batch kept", s.Len())
	}
	if !strings.Contains(s.Err(), "connection refused") {
		t.Errorf("error slot = %q, want failure message", s.Err())
	}

	// The next successful fetch clears the error slot.
	api.listEmails = func(remote.ListOptions) (*remote.EmailBatch, error) {
		return batchOf("m2"), nil
	}
	if err := c.FetchFolder(ctx, model.FolderUnified, 0); err != nil {
		t.Fatalf("recovery fetch: %v", err)
	}
	if s.Err() != "" {
		t.Errorf("error slot = %q after success, want cleared", s.Err())
	}
}

func TestFetchFolderRevertsLocalMutation(t *testing.T) {
	api := &fakeAPI{
		listEmails: func(remote.ListOptions) (*remote.EmailBatch, error) {
			return batchOf("m1"), nil
		},
	}
	c, s := newTestController(api)
	ctx := context.Background()

	if err := c.FetchFolder(ctx, model.FolderUnified, 0); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	c.Archive("m1")

	// The archive flag is never sent upstream; the next replace loses it.
	if err := c.FetchFolder(ctx, model.FolderUnified, 0); err != nil {
		t.Fatalf("refetch: %v", err)
	}
	got, _ := s.Get("m1")
	if got.Archived {
		t.Error("local archive survived a folder refetch")
	}
}

func TestSelectEmailOptimisticReadAndMerge(t *testing.T) {
	api := &fakeAPI{
		listEmails: func(remote.ListOptions) (*remote.EmailBatch, error) {
			return batchOf("m1"), nil
		},
		getEmail: func(id string) (*remote.WireEmail, error) {
			return &remote.WireEmail{
				ID:     id,
				Body:   "full body",
				IsRead: false,
				Drafts: []remote.WireDraft{
					{DraftID: "d-1", Content: "reply one"},
					{DraftID: "d-2", Content: "reply two"},
				},
			}, nil
		},
	}
	c, s := newTestController(api)
	ctx := context.Background()

	if err := c.FetchFolder(ctx, model.FolderUnified, 0); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	seed, _ := s.Get("m1")

	merged := c.SelectEmail(ctx, seed)
	if merged == nil {
		t.Fatal("SelectEmail returned nil on success")
	}
	if !merged.Read {
		t.Error("optimistic read flag lost through the detail merge")
	}
	if merged.Content != "full body" {
		t.Errorf("Content = %q, want detail body", merged.Content)
	}
	if len(merged.Drafts) != 2 {
		t.Errorf("drafts = %d, want the incoming list", len(merged.Drafts))
	}
	if s.ActiveID() != "m1" {
		t.Errorf("ActiveID = %q, want m1", s.ActiveID())
	}
}

func TestSelectEmailDetailFailureKeepsOptimisticState(t *testing.T) {
	api := &fakeAPI{
		listEmails: func(remote.ListOptions) (*remote.EmailBatch, error) {
			return batchOf("m1"), nil
		},
		getEmail: func(string) (*remote.WireEmail, error) {
			return nil, &remote.APIError{Message: "timeout", StatusCode: 0}
		},
	}
	c, s := newTestController(api)
	ctx := context.Background()

	if err := c.FetchFolder(ctx, model.FolderUnified, 0); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	seed, _ := s.Get("m1")

	if got := c.SelectEmail(ctx, seed); got != nil {
		t.Errorf("SelectEmail = %+v on failure, want nil", got)
	}

	cached, _ := s.Get("m1")
	if !cached.Read {
		t.Error("optimistic mark-read rolled back on detail failure")
	}
	if s.Err() == "" {
		t.Error("error slot empty after detail failure")
	}
}

func TestGenerateAgentDrafts(t *testing.T) {
	var gotReq remote.AgentDraftRequest
	api := &fakeAPI{
		listEmails: func(remote.ListOptions) (*remote.EmailBatch, error) {
			b := batchOf("m1", "m2", "m3")
			b.Emails[0].Body = strings.Repeat("x", 500)
			return b, nil
		},
		createAgentDrafts: func(req remote.AgentDraftRequest) (*remote.DraftResponse, error) {
			gotReq = req
			return &remote.DraftResponse{Success: true}, nil
		},
	}
	c, s := newTestController(api)
	ctx := context.Background()

	if err := c.FetchFolder(ctx, model.FolderUnified, 0); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	c.ToggleBatchSelection(model.Email{ID: "m1"})
	c.ToggleBatchSelection(model.Email{ID: "m3"})

	if err := c.GenerateAgentDrafts(ctx); err != nil {
		t.Fatalf("GenerateAgentDrafts: %v", err)
	}

	if len(gotReq.Emails) != 2 {
		t.Fatalf("projected %d emails, want 2", len(gotReq.Emails))
	}
	if got := len([]rune(gotReq.Emails[0].Snippet)); got > snippetLimit {
		t.Errorf("snippet length = %d, want capped at %d", got, snippetLimit)
	}
	if s.SelectedCount() != 0 {
		t.Error("selection not cleared after success")
	}

	notes := s.TakeNotifications()
	if len(notes) == 0 || notes[len(notes)-1].Kind != model.NotificationInfo {
		t.Errorf("notifications = %+v, want success info", notes)
	}
}

func TestGenerateAgentDraftsFailureKeepsSelection(t *testing.T) {
	api := &fakeAPI{
		listEmails: func(remote.ListOptions) (*remote.EmailBatch, error) {
			return batchOf("m1"), nil
		},
		createAgentDrafts: func(remote.AgentDraftRequest) (*remote.DraftResponse, error) {
			return nil, &remote.APIError{Message: "agent unavailable"}
		},
	}
	c, s := newTestController(api)
	ctx := context.Background()

	if err := c.FetchFolder(ctx, model.FolderUnified, 0); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	c.ToggleBatchSelection(model.Email{ID: "m1"})

	if err := c.GenerateAgentDrafts(ctx); err == nil {
		t.Fatal("expected generation error")
	}
	if s.SelectedCount() != 1 {
		t.Error("selection cleared on failure, want kept for retry")
	}
}

func TestGenerateAgentDraftsEmptySelectionIsNoop(t *testing.T) {
	called := false
	api := &fakeAPI{
		createAgentDrafts: func(remote.AgentDraftRequest) (*remote.DraftResponse, error) {
			called = true
			return &remote.DraftResponse{Success: true}, nil
		},
	}
	c, _ := newTestController(api)

	if err := c.GenerateAgentDrafts(context.Background()); err != nil {
		t.Fatalf("GenerateAgentDrafts: %v", err)
	}
	if called {
		t.Error("agent endpoint called with empty selection")
	}
}

func TestFetchWithAgentRefetchesEvenOnFailure(t *testing.T) {
	listCalls := 0
	api := &fakeAPI{
		listEmails: func(remote.ListOptions) (*remote.EmailBatch, error) {
			listCalls++
			return batchOf("m1"), nil
		},
		triggerFetch: func() (*remote.FetchResponse, error) {
			return nil, &remote.APIError{Message: "ingestion failed"}
		},
	}
	c, s := newTestController(api)

	if err := c.FetchWithAgent(context.Background()); err != nil {
		t.Fatalf("refetch after failed trigger: %v", err)
	}
	if listCalls != 1 {
		t.Errorf("list calls = %d, want refetch despite trigger failure", listCalls)
	}
	// The refetch succeeded, so the cache holds the batch; the trigger
	// failure was recorded before the refetch cleared the slot.
	if s.Len() != 1 {
		t.Errorf("cache len = %d, want 1", s.Len())
	}
}

func TestFetchWithAgentSuccessNotifies(t *testing.T) {
	api := &fakeAPI{
		triggerFetch: func() (*remote.FetchResponse, error) {
			return &remote.FetchResponse{Success: true, NewEmailCount: 3, TotalChecked: 12}, nil
		},
	}
	c, s := newTestController(api)

	if err := c.FetchWithAgent(context.Background()); err != nil {
		t.Fatalf("FetchWithAgent: %v", err)
	}

	notes := s.TakeNotifications()
	if len(notes) != 1 || !strings.Contains(notes[0].Message, "3 new emails") {
		t.Errorf("notifications = %+v, want ingestion summary", notes)
	}
}

func TestSendEmailDoesNotTouchCache(t *testing.T) {
	api := &fakeAPI{
		listEmails: func(remote.ListOptions) (*remote.EmailBatch, error) {
			return batchOf("m1"), nil
		},
	}
	c, s := newTestController(api)
	ctx := context.Background()

	if err := c.FetchFolder(ctx, model.FolderUnified, 0); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	before := s.Snapshot()

	err := c.SendEmail(ctx, model.SendPayload{To: "x@y.com", Subject: "hi", Content: "body"})
	if err != nil {
		t.Fatalf("SendEmail: %v", err)
	}

	after := s.Snapshot()
	if len(before) != len(after) {
		t.Error("send mutated the email cache")
	}
	notes := s.TakeNotifications()
	if len(notes) != 1 || notes[0].Kind != model.NotificationInfo {
		t.Errorf("notifications = %+v, want send confirmation", notes)
	}
}

func TestSendEmailBackendRejection(t *testing.T) {
	api := &fakeAPI{
		sendEmail: func(remote.SendEmailRequest) (*remote.SendEmailResponse, error) {
			return &remote.SendEmailResponse{Success: false, Message: "invalid recipient"}, nil
		},
	}
	c, s := newTestController(api)

	err := c.SendEmail(context.Background(), model.SendPayload{To: "bad"})
	if err == nil {
		t.Fatal("expected error for rejected send")
	}
	if !strings.Contains(s.Err(), "invalid recipient") {
		t.Errorf("error slot = %q", s.Err())
	}
}

func TestFetchFolderDraftsLoadsDraftList(t *testing.T) {
	api := &fakeAPI{
		listDrafts: func() (*remote.DraftList, error) {
			return &remote.DraftList{
				Success: true,
				Drafts: []remote.DraftRecord{
					{DraftID: "d1", AgentResponse: "hello", CreatedAt: "2026-08-27T10:00:00Z"},
				},
				TotalCount: 1,
			}, nil
		},
	}
	c, s := newTestController(api)

	if err := c.FetchFolder(context.Background(), model.FolderDrafts, 0); err != nil {
		t.Fatalf("FetchFolder(drafts): %v", err)
	}

	drafts := s.Drafts()
	if len(drafts) != 1 || drafts[0].Content != "hello" {
		t.Errorf("drafts = %+v", drafts)
	}
	if s.Len() != 0 {
		t.Error("drafts fetch touched the email cache")
	}
}

func TestSearchReplacesCache(t *testing.T) {
	api := &fakeAPI{
		listEmails: func(opts remote.ListOptions) (*remote.EmailBatch, error) {
			if opts.Query == "invoice" {
				return batchOf("hit"), nil
			}
			return batchOf("m1", "m2"), nil
		},
	}
	c, s := newTestController(api)
	ctx := context.Background()

	if err := c.FetchFolder(ctx, model.FolderUnified, 0); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if err := c.Search(ctx, "invoice"); err != nil {
		t.Fatalf("Search: %v", err)
	}

	snap := s.Snapshot()
	if len(snap) != 1 || snap[0].ID != "hit" {
		t.Errorf("cache after search = %v", snap)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("héllo wörld", 5); got != "héllo" {
		t.Errorf("truncate = %q, want rune-aware cut", got)
	}
	if got := truncate("short", 100); got != "short" {
		t.Errorf("truncate = %q, want unchanged", got)
	}
}
