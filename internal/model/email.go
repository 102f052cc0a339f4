package model

import "time"

// Folder names a predicate over the email cache that determines which
// emails are visible in the list view. Any value outside the constants
// below is treated as an account identifier.
type Folder string

const (
	FolderUnified  Folder = "unified"
	FolderUnread   Folder = "unread"
	FolderFlagged  Folder = "flagged"
	FolderSnoozed  Folder = "snoozed"
	FolderArchived Folder = "archived"
	FolderDrafts   Folder = "drafts"
)

// Category is a derived tag classifying an email by its labels and
// sender domain.
type Category string

const (
	CategoryWork       Category = "work"
	CategorySocial     Category = "social"
	CategoryPromotions Category = "promotions"
	CategoryPersonal   Category = "personal"
)

// Draft status values as reported by the backend.
const (
	DraftStatusDraft = "draft"
	DraftStatusSent  = "sent"
)

// Sender identifies the originator of an email.
type Sender struct {
	// Name is the display name parsed from the wire sender string.
	Name string `json:"name"`

	// Email is the bare address.
	Email string `json:"email"`

	// Avatar is an optional URL to a profile image.
	Avatar string `json:"avatar,omitempty"`

	// Organization is an optional company/organization name.
	Organization string `json:"organization,omitempty"`
}

// Attachment describes a file attached to an email.
type Attachment struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

// Draft is an AI-generated response attached to an email. Drafts are
// immutable once created except for Status.
type Draft struct {
	// ID is the backend-assigned draft identifier.
	ID string `json:"draft_id"`

	// EmailID links the draft to its parent email, when known.
	EmailID string `json:"email_id,omitempty"`

	// Content is the generated response text.
	Content string `json:"content"`

	// CreatedAt is when the backend generated the draft.
	CreatedAt time.Time `json:"created_at"`

	// Status is the draft lifecycle state (use DraftStatus* constants).
	Status string `json:"status"`

	// ResponseType records how the draft was produced
	// (e.g. "agent_generated").
	ResponseType string `json:"response_type"`
}

// Email is the canonical mail entity held in the local cache. It is
// created by the entity mapper from a remote fetch and mutated in place
// by the reconciliation controller; Deleted is a tombstone flag, never
// removal from the cache.
type Email struct {
	// ID is the opaque, stable, unique identifier from the backend.
	ID string `json:"id"`

	// ThreadID groups the email with its conversation thread.
	ThreadID string `json:"thread_id"`

	// Subject is the message subject line.
	Subject string `json:"subject"`

	// Sender is the parsed originator.
	Sender Sender `json:"sender"`

	// Recipients is the ordered list of parsed recipients.
	Recipients []Sender `json:"recipients"`

	// Content is the message body, falling back to the snippet and
	// then to the empty string. Never absent.
	Content string `json:"content"`

	// Snippet is the short preview text from the backend.
	Snippet string `json:"snippet"`

	// Date is the message timestamp.
	Date time.Time `json:"date"`

	// Read, Flagged, Snoozed, Archived and Deleted are local-only
	// state flags; they are never sent back to the backend.
	Read     bool `json:"read"`
	Flagged  bool `json:"flagged"`
	Snoozed  bool `json:"snoozed"`
	Archived bool `json:"archived"`
	Deleted  bool `json:"deleted"`

	// SnoozeUntil is set whenever Snoozed is true.
	SnoozeUntil *time.Time `json:"snooze_until,omitempty"`

	// Labels is the set of backend label strings.
	Labels []string `json:"labels"`

	// Account identifies the source mailbox.
	Account string `json:"account"`

	// Categories holds the derived classification tags, label rules
	// first, then domain rules.
	Categories []Category `json:"categories"`

	// Attachments is the optional list of attached files.
	Attachments []Attachment `json:"attachments,omitempty"`

	// Drafts is the ordered list of AI-generated response drafts.
	Drafts []Draft `json:"drafts"`
}

// HasCategory reports whether the email carries the given derived tag.
func (e Email) HasCategory(c Category) bool {
	for _, have := range e.Categories {
		if have == c {
			return true
		}
	}
	return false
}

// SendPayload is the outbound message handed to the send operation.
type SendPayload struct {
	To        string `json:"to"`
	CC        string `json:"cc,omitempty"`
	BCC       string `json:"bcc,omitempty"`
	Subject   string `json:"subject"`
	Content   string `json:"content"`
	ReplyToID string `json:"reply_to_id,omitempty"`
}
