package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second)
}

func TestClientListEmails(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		json.NewEncoder(w).Encode(EmailBatch{
			Emails:     []WireEmail{{ID: "m1", Subject: "hello"}},
			TotalCount: 1,
		})
	})

	batch, err := client.ListEmails(context.Background(), ListOptions{Limit: 10, Days: 7})
	if err != nil {
		t.Fatalf("ListEmails: %v", err)
	}
	if gotPath != "/api/emails?days=7&limit=10" {
		t.Errorf("path = %q, want /api/emails?days=7&limit=10", gotPath)
	}
	if len(batch.Emails) != 1 || batch.Emails[0].ID != "m1" {
		t.Errorf("unexpected batch: %+v", batch)
	}
}

func TestClientUnreadAndImportantPaths(t *testing.T) {
	var paths []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.String())
		json.NewEncoder(w).Encode(EmailBatch{})
	})

	if _, err := client.UnreadEmails(context.Background(), 5); err != nil {
		t.Fatalf("UnreadEmails: %v", err)
	}
	if _, err := client.ImportantEmails(context.Background(), 0); err != nil {
		t.Fatalf("ImportantEmails: %v", err)
	}

	want := []string{"/api/emails/unread?limit=5", "/api/emails/important"}
	for i, p := range want {
		if paths[i] != p {
			t.Errorf("request %d path = %q, want %q", i, paths[i], p)
		}
	}
}

func TestClientExtractsDetailOnFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Email not found"})
	})

	_, err := client.GetEmail(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error for 404 response")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
	if apiErr.Message != "Email not found" {
		t.Errorf("Message = %q, want backend detail", apiErr.Message)
	}
}

func TestClientNonJSONFailureBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	})

	_, err := client.Health(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.Message != "upstream exploded" {
		t.Errorf("Message = %q, want raw body", apiErr.Message)
	}
}

func TestClientNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // deliberately unreachable

	client := NewClient(srv.URL, time.Second)
	_, err := client.Health(context.Background())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for network failure", apiErr.StatusCode)
	}
	if !IsAPIError(err) {
		t.Error("IsAPIError = false, want true")
	}
}

func TestClientDecodeFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	})

	_, err := client.ListDrafts(context.Background())
	if !IsAPIError(err) {
		t.Fatalf("err = %v, want APIError for malformed body", err)
	}
}

func TestClientPostsJSONBody(t *testing.T) {
	var gotContentType string
	var gotReq AgentDraftRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(DraftResponse{Success: true})
	})

	req := AgentDraftRequest{
		Emails: []AgentEmail{{ID: "m1", ThreadID: "t1", Snippet: "hi", Sender: "a@b.c"}},
	}
	resp, err := client.CreateAgentDrafts(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateAgentDrafts: %v", err)
	}
	if !resp.Success {
		t.Error("Success = false, want true")
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if len(gotReq.Emails) != 1 || gotReq.Emails[0].ID != "m1" {
		t.Errorf("decoded request = %+v", gotReq)
	}
}

func TestClientLookupProfileLowercasesAddress(t *testing.T) {
	var gotPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(ProfileResponse{Success: true})
	})

	if _, err := client.LookupProfile(context.Background(), "Sarah@TechCorp.com"); err != nil {
		t.Fatalf("LookupProfile: %v", err)
	}
	if gotPath != "/api/users/sarah@techcorp.com" {
		t.Errorf("path = %q, want lowercased address", gotPath)
	}
}
