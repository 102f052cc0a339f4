package remote

// WireDraft is an AI-generated draft as nested under an email in the
// backend's responses.
type WireDraft struct {
	DraftID      string `json:"draft_id"`
	Content      string `json:"content"`
	CreatedAt    string `json:"created_at"`
	Status       string `json:"status"`
	ResponseType string `json:"response_type"`
}

// WireEmail is a single email record in the backend's API format.
type WireEmail struct {
	ID          string      `json:"id"`
	ThreadID    string      `json:"threadId"`
	Subject     string      `json:"subject"`
	Sender      string      `json:"sender"`
	Recipient   string      `json:"recipient"`
	Body        string      `json:"body"`
	Snippet     string      `json:"snippet"`
	Timestamp   string      `json:"timestamp"`
	Labels      []string    `json:"labels"`
	IsRead      bool        `json:"is_read"`
	IsImportant bool        `json:"is_important"`
	Drafts      []WireDraft `json:"drafts,omitempty"`
}

// EmailBatch is a page of emails returned by the list and search
// endpoints.
type EmailBatch struct {
	Emails        []WireEmail `json:"emails"`
	TotalCount    int         `json:"total_count"`
	HasMore       bool        `json:"has_more"`
	NextPageToken string      `json:"next_page_token,omitempty"`
}

// ListOptions controls the generic email list query.
type ListOptions struct {
	// Query is an optional free-text query string.
	Query string

	// Days restricts results to the last N days when positive.
	Days int

	// Limit caps the number of returned emails.
	Limit int

	// IncludeBody requests full bodies instead of snippets.
	IncludeBody bool
}

// DraftRequest creates a single draft on the backend.
type DraftRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// DraftResponse is the backend's reply to draft creation requests.
type DraftResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	DraftID string `json:"draft_id,omitempty"`
}

// AgentEmail is the compact projection of a selected email sent to the
// agent draft endpoint.
type AgentEmail struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
	Snippet  string `json:"snippet"`
	Sender   string `json:"sender"`
}

// AgentDraftRequest asks the backend agent to generate reply drafts for
// a batch of emails.
type AgentDraftRequest struct {
	Emails []AgentEmail `json:"emails"`
}

// DraftRecord is a saved agent draft as returned by the drafts listing
// endpoint. The backend stores the generated text under agent_response
// for agent drafts and message for manual ones.
type DraftRecord struct {
	DraftID       string `json:"draft_id"`
	AgentResponse string `json:"agent_response,omitempty"`
	Message       string `json:"message,omitempty"`
	CreatedAt     string `json:"created_at"`
	Status        string `json:"status"`
	ResponseType  string `json:"response_type"`
}

// DraftList is the response of the drafts listing endpoint.
type DraftList struct {
	Success    bool          `json:"success"`
	Drafts     []DraftRecord `json:"drafts"`
	TotalCount int           `json:"total_count"`
}

// FetchResponse reports the outcome of a backend-side mail ingestion
// pass.
type FetchResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	NewEmailCount int    `json:"new_emails_count"`
	TotalChecked  int    `json:"total_checked"`
}

// SendEmailRequest sends a message through the backend.
type SendEmailRequest struct {
	To        string `json:"to"`
	CC        string `json:"cc,omitempty"`
	BCC       string `json:"bcc,omitempty"`
	Subject   string `json:"subject"`
	Content   string `json:"content"`
	FromEmail string `json:"from_email,omitempty"`
	ReplyToID string `json:"reply_to_id,omitempty"`
}

// SendEmailResponse is the backend's reply to a send request.
type SendEmailResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	EmailID string `json:"email_id,omitempty"`
}

// WireProfile holds researched sender details in the backend's format.
type WireProfile struct {
	Email       string `json:"email"`
	Name        string `json:"name,omitempty"`
	Company     string `json:"company,omitempty"`
	Role        string `json:"role,omitempty"`
	Bio         string `json:"bio,omitempty"`
	LinkedInURL string `json:"linkedin_url,omitempty"`
	TwitterURL  string `json:"twitter_url,omitempty"`
	Website     string `json:"website,omitempty"`
	Location    string `json:"location,omitempty"`
	Industry    string `json:"industry,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	Source      string `json:"source"`
}

// ProfileRequest asks the backend for sender details, optionally forcing
// a fresh research pass.
type ProfileRequest struct {
	Email        string `json:"email"`
	Name         string `json:"name,omitempty"`
	ForceRefresh bool   `json:"force_refresh"`
}

// ProfileResponse is the backend's reply to profile lookups. When the
// research was merely initiated, Success is true, UserDetails is nil and
// Message explains that the search is in progress.
type ProfileResponse struct {
	Success     bool         `json:"success"`
	UserDetails *WireProfile `json:"user_details,omitempty"`
	Message     string       `json:"message"`
	FromCache   bool         `json:"from_cache"`
}

// HealthResponse is the backend health check payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
