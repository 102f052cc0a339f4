// Package sync orchestrates reconciliation between the backend API and
// the local cache: folder fetches, detail merges, optimistic local
// mutations and agent-driven operations.
package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"github.com/nhle/mailpilot/internal/model"
	"github.com/nhle/mailpilot/internal/remote"
	"github.com/nhle/mailpilot/internal/store"
)

// snippetLimit caps the content excerpt sent per email to the agent
// draft endpoint.
const snippetLimit = 150

// Controller exposes the reconciliation operations consumed by the UI.
// Every network operation catches transport failures at its own
// boundary: it records a human-readable message in the store error slot
// and leaves the cache untouched (no partial apply).
//
// Concurrent folder fetches are not coalesced; the last response to
// resolve wins. A folder fetch in flight can also overwrite local-only
// archive/delete/snooze flags, since those are never sent upstream.
type Controller struct {
	api   remote.API
	store *store.Store

	fetchLimit int
	windowDays int

	mu     gosync.Mutex
	folder model.Folder
}

// NewController creates a controller with the given backend client and
// cache. fetchLimit and windowDays fall back to the backend defaults
// when non-positive.
func NewController(api remote.API, s *store.Store, fetchLimit, windowDays int) *Controller {
	if fetchLimit <= 0 {
		fetchLimit = 50
	}
	if windowDays <= 0 {
		windowDays = 7
	}
	return &Controller{
		api:        api,
		store:      s,
		fetchLimit: fetchLimit,
		windowDays: windowDays,
		folder:     model.FolderUnified,
	}
}

// Folder returns the folder the controller last fetched.
func (c *Controller) Folder() model.Folder {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.folder
}

func (c *Controller) setFolder(folder model.Folder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.folder = folder
}

// fail records an operation failure in the store error slot.
func (c *Controller) fail(format string, args ...interface{}) {
	c.store.SetError(fmt.Sprintf(format, args...))
}

// Health probes backend availability once. Used at startup so the UI
// can surface an unreachable backend before the first fetch fails.
func (c *Controller) Health(ctx context.Context) error {
	_, err := c.api.Health(ctx)
	return err
}

// FetchFolder loads the backend batch backing the given folder and
// replaces the cache wholesale with the mapped result. Unread and
// flagged map to their dedicated endpoints; every other folder uses the
// generic windowed query. The drafts folder refreshes the saved draft
// list instead of the email cache.
func (c *Controller) FetchFolder(ctx context.Context, folder model.Folder, limit int) error {
	c.setFolder(folder)

	if folder == model.FolderDrafts {
		return c.RefreshDrafts(ctx)
	}

	if limit <= 0 {
		limit = c.fetchLimit
	}

	var (
		batch *remote.EmailBatch
		err   error
	)
	switch folder {
	case model.FolderUnread:
		batch, err = c.api.UnreadEmails(ctx, limit)
	case model.FolderFlagged:
		batch, err = c.api.ImportantEmails(ctx, limit)
	default:
		batch, err = c.api.ListEmails(ctx, remote.ListOptions{
			Limit: limit,
			Days:  c.windowDays,
		})
	}
	if err != nil {
		c.fail("loading %s: %v", folder, err)
		return err
	}

	c.store.ReplaceAll(remote.MapBatch(batch))
	c.store.ClearError()
	return nil
}

// Search runs a free-text remote search and replaces the cache with the
// result, like a folder fetch.
func (c *Controller) Search(ctx context.Context, query string) error {
	batch, err := c.api.SearchEmails(ctx, query, c.fetchLimit)
	if err != nil {
		c.fail("searching %q: %v", query, err)
		return err
	}

	c.store.ReplaceAll(remote.MapBatch(batch))
	c.store.ClearError()
	return nil
}

// FetchDetail loads the richer single-email record and merge-patches it
// into the cache entry with the matching id. It returns the merged
// entity, the unmerged record when the id is not cached, or nil on
// failure.
func (c *Controller) FetchDetail(ctx context.Context, id string) *model.Email {
	wire, err := c.api.GetEmail(ctx, id)
	if err != nil {
		c.fail("loading email %s: %v", id, err)
		return nil
	}

	mapped := remote.MapEmail(*wire)
	if merged, ok := c.store.MergePatch(mapped); ok {
		return &merged
	}
	return &mapped
}

// SelectEmail makes the email the active selection, optimistically marks
// it read before the network round trip, then fetches and merges the
// detail record so the latest draft list is shown.
func (c *Controller) SelectEmail(ctx context.Context, email model.Email) *model.Email {
	c.store.SetActive(email.ID)
	c.store.MarkRead(email.ID)
	return c.FetchDetail(ctx, email.ID)
}

// ToggleBatchSelection adds or removes the email from the batch
// selection set used for agent draft generation.
func (c *Controller) ToggleBatchSelection(email model.Email) {
	c.store.ToggleSelected(email.ID)
}

// Archive flags the email archived. Local-only; a later folder fetch
// restores the server's view of the email.
func (c *Controller) Archive(id string) {
	c.store.Archive(id)
}

// Delete tombstones the email locally.
func (c *Controller) Delete(id string) {
	c.store.Delete(id)
}

// Snooze hides the email until the given time. Local-only.
func (c *Controller) Snooze(id string, until time.Time) {
	c.store.Snooze(id, until)
}

// SendEmail sends a composed message through the backend. The cache is
// not touched either way; sent mail only appears after a backend
// ingestion pass.
func (c *Controller) SendEmail(ctx context.Context, payload model.SendPayload) error {
	resp, err := c.api.SendEmail(ctx, remote.SendEmailRequest{
		To:        payload.To,
		CC:        payload.CC,
		BCC:       payload.BCC,
		Subject:   payload.Subject,
		Content:   payload.Content,
		ReplyToID: payload.ReplyToID,
	})
	if err != nil {
		c.fail("sending email: %v", err)
		return err
	}
	if !resp.Success {
		c.fail("sending email: %s", resp.Message)
		return &remote.APIError{Message: resp.Message}
	}

	c.store.Notify(model.NewNotification(
		model.NotificationInfo, "",
		fmt.Sprintf("Email sent to %s", payload.To),
	))
	return nil
}

// CreateDraft saves a single manual draft on the backend.
func (c *Controller) CreateDraft(ctx context.Context, to, subject, message string) error {
	resp, err := c.api.CreateDraft(ctx, remote.DraftRequest{
		To:      to,
		Subject: subject,
		Message: message,
	})
	if err != nil {
		c.fail("creating draft: %v", err)
		return err
	}
	if !resp.Success {
		c.fail("creating draft: %s", resp.Message)
		return &remote.APIError{Message: resp.Message}
	}
	return nil
}

// GenerateAgentDrafts sends a compact projection of every batch-selected
// email to the agent draft endpoint. On success the selection set is
// cleared and, when the drafts folder is active, the saved draft list is
// refetched. On failure the selection set and cache stay exactly as
// before the call.
func (c *Controller) GenerateAgentDrafts(ctx context.Context) error {
	ids := c.store.SelectedIDs()
	if len(ids) == 0 {
		return nil
	}

	req := remote.AgentDraftRequest{}
	for _, id := range ids {
		email, ok := c.store.Get(id)
		if !ok {
			continue
		}
		req.Emails = append(req.Emails, remote.AgentEmail{
			ID:       email.ID,
			ThreadID: email.ThreadID,
			Snippet:  truncate(email.Content, snippetLimit),
			Sender:   email.Sender.Email,
		})
	}
	if len(req.Emails) == 0 {
		return nil
	}

	resp, err := c.api.CreateAgentDrafts(ctx, req)
	if err != nil {
		c.fail("generating drafts: %v", err)
		return err
	}
	if !resp.Success {
		c.fail("generating drafts: %s", resp.Message)
		return &remote.APIError{Message: resp.Message}
	}

	c.store.ClearSelected()
	c.store.Notify(model.NewNotification(
		model.NotificationInfo, "",
		fmt.Sprintf("Generated drafts for %d emails", len(req.Emails)),
	))

	if c.Folder() == model.FolderDrafts {
		return c.RefreshDrafts(ctx)
	}
	return nil
}

// FetchWithAgent triggers a backend-side mail ingestion pass and then
// refetches the current folder. The refetch happens on success and on
// (already-caught) failure alike, so the list always reflects whatever
// the backend now holds.
func (c *Controller) FetchWithAgent(ctx context.Context) error {
	resp, err := c.api.TriggerFetch(ctx)
	if err != nil {
		c.fail("agent fetch: %v", err)
	} else if resp.Success {
		c.store.Notify(model.NewNotification(
			model.NotificationInfo, "",
			fmt.Sprintf("Agent fetched %d new emails (%d checked)",
				resp.NewEmailCount, resp.TotalChecked),
		))
	}

	return c.FetchFolder(ctx, c.Folder(), 0)
}

// RefreshDrafts reloads the saved agent drafts backing the drafts
// folder.
func (c *Controller) RefreshDrafts(ctx context.Context) error {
	list, err := c.api.ListDrafts(ctx)
	if err != nil {
		c.fail("loading drafts: %v", err)
		return err
	}

	drafts := make([]model.Draft, 0, len(list.Drafts))
	for _, rec := range list.Drafts {
		drafts = append(drafts, remote.MapDraftRecord(rec))
	}
	c.store.SetDrafts(drafts)
	c.store.ClearError()
	return nil
}

// truncate shortens s to at most limit runes.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
