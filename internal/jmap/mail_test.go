package jmap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fastmailctl/fastmailctl/internal/model"
)

// methodHandler produces the response arguments for one method call.
type methodHandler func(t *testing.T, args json.RawMessage, callID string) (name string, result any)

// newTestClient runs a fake JMAP server whose /api endpoint answers
// each method call via the matching handler, and returns an
// authenticated client pointed at it.
func newTestClient(t *testing.T, handlers map[string]methodHandler) *Client {
	t.Helper()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	mux.HandleFunc("/session", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{
			"capabilities": {
				"urn:ietf:params:jmap:core": {},
				"urn:ietf:params:jmap:mail": {},
				"urn:ietf:params:jmap:submission": {},
				"https://www.fastmail.com/dev/maskedemail": {}
			},
			"accounts": {"acc1": {"name": "ada"}},
			"primaryAccounts": {"urn:ietf:params:jmap:mail": "acc1"},
			"username": "ada@example.com",
			"apiUrl": %q,
			"downloadUrl": %q
		}`, server.URL+"/api", server.URL+"/download/{accountId}/{blobId}/{name}?type={type}")
	})

	mux.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			MethodCalls []json.RawMessage `json:"methodCalls"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding api request: %v", err)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		var responses []any
		for _, raw := range req.MethodCalls {
			var call []json.RawMessage
			if err := json.Unmarshal(raw, &call); err != nil || len(call) != 3 {
				t.Errorf("malformed method call: %s", raw)
				continue
			}
			var name, callID string
			json.Unmarshal(call[0], &name)
			json.Unmarshal(call[2], &callID)

			handler, ok := handlers[name]
			if !ok {
				t.Errorf("no handler for method %s", name)
				responses = append(responses, []any{"error", map[string]string{"type": "unknownMethod"}, callID})
				continue
			}
			respName, result := handler(t, call[1], callID)
			responses = append(responses, []any{respName, result, callID})
		}

		json.NewEncoder(w).Encode(map[string]any{
			"methodResponses": responses,
			"sessionState":    "s1",
		})
	})

	client := NewClient(server.URL+"/session", "test-token", 5*time.Second, nil)
	if _, err := client.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	return client
}

func identityHandler(t *testing.T, _ json.RawMessage, _ string) (string, any) {
	return "Identity/get", map[string]any{
		"list": []map[string]any{{"id": "id1", "name": "Ada", "email": "ada@example.com"}},
	}
}

func mailboxHandler(t *testing.T, _ json.RawMessage, _ string) (string, any) {
	return "Mailbox/get", map[string]any{
		"list": []map[string]any{
			{"id": "mb-inbox", "name": "Inbox", "role": "inbox"},
			{"id": "mb-drafts", "name": "Drafts", "role": "drafts"},
			{"id": "mb-sent", "name": "Sent", "role": "sent"},
		},
	}
}

// emailSetCreated answers Email/set by echoing every creation id back
// as created with the given server-side id.
func emailSetCreated(serverID string) methodHandler {
	return func(t *testing.T, args json.RawMessage, _ string) (string, any) {
		var setArgs struct {
			Create map[string]json.RawMessage `json:"create"`
		}
		if err := json.Unmarshal(args, &setArgs); err != nil {
			t.Errorf("decoding Email/set args: %v", err)
		}
		created := map[string]any{}
		for creationID := range setArgs.Create {
			created[creationID] = map[string]string{"id": serverID}
		}
		return "Email/set", map[string]any{"created": created}
	}
}

func TestSubmitReturnsSubmissionIncompleteWithCreatedID(t *testing.T) {
	client := newTestClient(t, map[string]methodHandler{
		"Identity/get": identityHandler,
		"Mailbox/get":  mailboxHandler,
		"Email/set":    emailSetCreated("M42"),
		"EmailSubmission/set": func(t *testing.T, _ json.RawMessage, _ string) (string, any) {
			return "EmailSubmission/set", map[string]any{
				"notCreated": map[string]any{
					"submission": map[string]string{
						"type":        "forbiddenFrom",
						"description": "sender not allowed",
					},
				},
			}
		},
	})

	draft, err := ComposeNew([]model.EmailAddress{addr("bob@example.com")}, nil, nil, "hello", "body text")
	if err != nil {
		t.Fatal(err)
	}
	_, err = client.Submit(context.Background(), draft)
	if err == nil {
		t.Fatal("expected an error when the submission is refused")
	}
	if !IsSubmissionIncomplete(err) {
		t.Fatalf("got %T (%v), want SubmissionIncomplete", err, err)
	}
	var incomplete *SubmissionIncomplete
	if !errors.As(err, &incomplete) {
		t.Fatal("errors.As failed for SubmissionIncomplete")
	}
	if incomplete.EmailID != "M42" {
		t.Errorf("EmailID = %q, want M42; the created object must stay recoverable", incomplete.EmailID)
	}
}

func TestSubmitSuccessReturnsCreatedID(t *testing.T) {
	client := newTestClient(t, map[string]methodHandler{
		"Identity/get": identityHandler,
		"Mailbox/get":  mailboxHandler,
		"Email/set":    emailSetCreated("M7"),
		"EmailSubmission/set": func(t *testing.T, _ json.RawMessage, _ string) (string, any) {
			return "EmailSubmission/set", map[string]any{
				"created": map[string]any{"submission": map[string]string{"id": "S1"}},
			}
		},
	})

	draft, err := ComposeNew([]model.EmailAddress{addr("bob@example.com")}, nil, nil, "hello", "body text")
	if err != nil {
		t.Fatal(err)
	}
	emailID, err := client.Submit(context.Background(), draft)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if emailID != "M7" {
		t.Errorf("emailID = %q, want M7", emailID)
	}
}

func authedClient(t *testing.T, apiHandler http.HandlerFunc) *Client {
	t.Helper()
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	mux.HandleFunc("/session", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"capabilities": {"urn:ietf:params:jmap:core": {}, "urn:ietf:params:jmap:mail": {}},
			"primaryAccounts": {"urn:ietf:params:jmap:mail": "acc1"},
			"apiUrl": %q, "downloadUrl": "u"}`, server.URL+"/api")
	})
	mux.HandleFunc("/api", apiHandler)
	client := NewClient(server.URL+"/session", "test-token", 5*time.Second, nil)
	if _, err := client.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	return client
}

func TestDoStatusMapping(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantCheck func(error) bool
		wantName  string
	}{
		{
			name:      "401 is a transport error",
			status:    http.StatusUnauthorized,
			wantCheck: IsTransportError,
			wantName:  "TransportError",
		},
		{
			name:      "429 is a transport error",
			status:    http.StatusTooManyRequests,
			wantCheck: IsTransportError,
			wantName:  "TransportError",
		},
		{
			name:      "500 is a transport error",
			status:    http.StatusInternalServerError,
			wantCheck: IsTransportError,
			wantName:  "TransportError",
		},
		{
			name:      "400 is a protocol error",
			status:    http.StatusBadRequest,
			body:      "unsupported batch",
			wantCheck: IsProtocolError,
			wantName:  "ProtocolError",
		},
		{
			name:      "malformed body is a protocol error",
			status:    http.StatusOK,
			body:      "not json at all",
			wantCheck: IsProtocolError,
			wantName:  "ProtocolError",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := authedClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})
			batch := NewBatch()
			batch.MustAdd("m0", "Mailbox/get", map[string]any{"accountId": "acc1"})
			_, err := client.Do(context.Background(), batch)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !tt.wantCheck(err) {
				t.Errorf("got %T (%v), want %s", err, err, tt.wantName)
			}
		})
	}
}
