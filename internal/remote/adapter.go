package remote

import (
	"strings"
	"time"

	"github.com/nhle/mailpilot/internal/model"
)

// freeMailDomains are common consumer mail providers; senders from these
// domains classify as personal.
var freeMailDomains = map[string]bool{
	"gmail.com":      true,
	"googlemail.com": true,
	"yahoo.com":      true,
	"hotmail.com":    true,
	"outlook.com":    true,
	"live.com":       true,
	"icloud.com":     true,
	"aol.com":        true,
	"protonmail.com": true,
	"proton.me":      true,
}

// corporateTokens mark a sender domain as work-related when any of them
// occurs in the domain string.
var corporateTokens = []string{"corp", "inc", "llc", "ltd", "enterprise"}

// timestampLayouts are tried in order when parsing backend timestamps.
// The backend emits Python isoformat strings, with or without zone and
// fractional seconds.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseAddress splits a wire sender/recipient string into display name
// and bare address. It accepts both the "Display Name <addr>" form and a
// bare address, and never fails: malformed input maps to a best-effort
// Sender rather than an error.
func ParseAddress(raw string) model.Sender {
	raw = strings.TrimSpace(raw)

	if open := strings.Index(raw, "<"); open >= 0 {
		if end := strings.Index(raw[open:], ">"); end > 0 {
			addr := strings.TrimSpace(raw[open+1 : open+end])
			name := strings.TrimSpace(raw[:open])
			if name == "" {
				name = localPart(addr)
			}
			return model.Sender{Name: name, Email: addr}
		}
	}

	return model.Sender{Name: localPart(raw), Email: raw}
}

// localPart returns the portion of an address before the @, or the whole
// string when there is none.
func localPart(addr string) string {
	if at := strings.Index(addr, "@"); at >= 0 {
		return addr[:at]
	}
	return addr
}

// domainOf returns the lowercased portion of an address after the @.
func domainOf(addr string) string {
	if at := strings.LastIndex(addr, "@"); at >= 0 {
		return strings.ToLower(addr[at+1:])
	}
	return ""
}

// DeriveCategories classifies an email from its label set and sender
// domain. Label rules apply before domain rules, so label-derived
// categories appear first; membership is a set (no duplicates). When no
// rule fires the email defaults to personal.
func DeriveCategories(labels []string, senderEmail string) []model.Category {
	var categories []model.Category
	seen := make(map[model.Category]bool)

	add := func(c model.Category) {
		if !seen[c] {
			seen[c] = true
			categories = append(categories, c)
		}
	}

	for _, label := range labels {
		l := strings.ToLower(label)
		switch {
		case strings.Contains(l, "important"), strings.Contains(l, "starred"):
			add(model.CategoryWork)
		case strings.Contains(l, "social"), strings.Contains(l, "updates"):
			add(model.CategorySocial)
		case strings.Contains(l, "promotions"):
			add(model.CategoryPromotions)
		}
	}

	domain := domainOf(senderEmail)
	if domain != "" {
		for _, token := range corporateTokens {
			if strings.Contains(domain, token) {
				add(model.CategoryWork)
				break
			}
		}
		if freeMailDomains[domain] {
			add(model.CategoryPersonal)
		}
	}

	if len(categories) == 0 {
		add(model.CategoryPersonal)
	}

	return categories
}

// parseTimestamp parses a backend timestamp, returning the zero time for
// values no layout matches.
func parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// MapDraft converts a nested wire draft into the canonical Draft.
func MapDraft(wire WireDraft, emailID string) model.Draft {
	status := wire.Status
	if status == "" {
		status = model.DraftStatusDraft
	}
	return model.Draft{
		ID:           wire.DraftID,
		EmailID:      emailID,
		Content:      wire.Content,
		CreatedAt:    parseTimestamp(wire.CreatedAt),
		Status:       status,
		ResponseType: wire.ResponseType,
	}
}

// MapDraftRecord converts a saved agent draft from the drafts listing
// into the canonical Draft. Agent drafts store their text under
// agent_response; manual ones under message.
func MapDraftRecord(rec DraftRecord) model.Draft {
	content := rec.AgentResponse
	if content == "" {
		content = rec.Message
	}
	status := rec.Status
	if status == "" {
		status = model.DraftStatusDraft
	}
	return model.Draft{
		ID:           rec.DraftID,
		Content:      content,
		CreatedAt:    parseTimestamp(rec.CreatedAt),
		Status:       status,
		ResponseType: rec.ResponseType,
	}
}

// MapEmail converts a wire email record into the canonical Email entity.
// The mapping is total: malformed sender strings, missing bodies and
// unparseable timestamps all map to defined values instead of errors.
func MapEmail(wire WireEmail) model.Email {
	sender := ParseAddress(wire.Sender)

	var recipients []model.Sender
	account := ""
	if strings.TrimSpace(wire.Recipient) != "" {
		recipient := ParseAddress(wire.Recipient)
		recipients = append(recipients, recipient)
		account = recipient.Email
	}

	content := wire.Body
	if content == "" {
		content = wire.Snippet
	}

	drafts := make([]model.Draft, 0, len(wire.Drafts))
	for _, d := range wire.Drafts {
		drafts = append(drafts, MapDraft(d, wire.ID))
	}

	return model.Email{
		ID:         wire.ID,
		ThreadID:   wire.ThreadID,
		Subject:    wire.Subject,
		Sender:     sender,
		Recipients: recipients,
		Content:    content,
		Snippet:    wire.Snippet,
		Date:       parseTimestamp(wire.Timestamp),
		Read:       wire.IsRead,
		Flagged:    wire.IsImportant,
		Labels:     wire.Labels,
		Account:    account,
		Categories: DeriveCategories(wire.Labels, sender.Email),
		Drafts:     drafts,
	}
}

// MapBatch maps a whole email batch, preserving order.
func MapBatch(batch *EmailBatch) []model.Email {
	if batch == nil {
		return nil
	}
	emails := make([]model.Email, 0, len(batch.Emails))
	for _, w := range batch.Emails {
		emails = append(emails, MapEmail(w))
	}
	return emails
}

// MapProfile converts wire sender details into the canonical form.
func MapProfile(wire *WireProfile) *model.ProfileDetails {
	if wire == nil {
		return nil
	}
	return &model.ProfileDetails{
		Email:       strings.ToLower(wire.Email),
		Name:        wire.Name,
		Company:     wire.Company,
		Role:        wire.Role,
		Bio:         wire.Bio,
		LinkedInURL: wire.LinkedInURL,
		TwitterURL:  wire.TwitterURL,
		Website:     wire.Website,
		Location:    wire.Location,
		Industry:    wire.Industry,
		CreatedAt:   parseTimestamp(wire.CreatedAt),
		UpdatedAt:   parseTimestamp(wire.UpdatedAt),
		Source:      wire.Source,
	}
}
