package jmap

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestBatchAdd(t *testing.T) {
	tests := []struct {
		name    string
		build   func(b *Batch) error
		wantErr string
	}{
		{
			name: "independent calls",
			build: func(b *Batch) error {
				if err := b.Add("a", "Mailbox/get", map[string]any{"accountId": "u1"}); err != nil {
					return err
				}
				return b.Add("b", "Identity/get", map[string]any{"accountId": "u1"})
			},
		},
		{
			name: "back reference to earlier call",
			build: func(b *Batch) error {
				if err := b.Add("q0", "Email/query", map[string]any{"accountId": "u1"}); err != nil {
					return err
				}
				return b.Add("g0", "Email/get", map[string]any{
					"ids": ResultReference{ResultOf: "q0", Name: "Email/query", Path: "/ids"},
				})
			},
		},
		{
			name: "duplicate call id",
			build: func(b *Batch) error {
				if err := b.Add("a", "Mailbox/get", nil); err != nil {
					return err
				}
				return b.Add("a", "Email/get", nil)
			},
			wantErr: "duplicate call id",
		},
		{
			name: "empty call id",
			build: func(b *Batch) error {
				return b.Add("", "Mailbox/get", nil)
			},
			wantErr: "empty call id",
		},
		{
			name: "reference to unknown call",
			build: func(b *Batch) error {
				return b.Add("g0", "Email/get", map[string]any{
					"ids": ResultReference{ResultOf: "q0", Name: "Email/query", Path: "/ids"},
				})
			},
			wantErr: "not an earlier call",
		},
		{
			name: "forward reference",
			build: func(b *Batch) error {
				if err := b.Add("g0", "Email/get", map[string]any{
					"ids": ResultReference{ResultOf: "q0", Name: "Email/query", Path: "/ids"},
				}); err != nil {
					return err
				}
				return b.Add("q0", "Email/query", map[string]any{"accountId": "u1"})
			},
			wantErr: "not an earlier call",
		},
		{
			name: "reference nested in a slice",
			build: func(b *Batch) error {
				return b.Add("g0", "Email/get", map[string]any{
					"nested": []any{
						map[string]any{"ids": ResultReference{ResultOf: "missing", Name: "Email/query", Path: "/ids"}},
					},
				})
			},
			wantErr: "not an earlier call",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build(NewBatch())
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestBatchFailsBeforeAppending(t *testing.T) {
	b := NewBatch()
	if err := b.Add("q0", "Email/query", nil); err != nil {
		t.Fatal(err)
	}
	err := b.Add("g0", "Email/get", map[string]any{
		"ids": ResultReference{ResultOf: "later", Name: "Email/query", Path: "/ids"},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if b.Len() != 1 {
		t.Fatalf("rejected call was appended: len = %d", b.Len())
	}
}

func TestInvocationMarshalPrefixesReferences(t *testing.T) {
	inv := Invocation{
		Name: "Email/get",
		Args: map[string]any{
			"accountId": "u1",
			"ids":       ResultReference{ResultOf: "q0", Name: "Email/query", Path: "/ids"},
		},
		CallID: "g0",
	}

	data, err := json.Marshal(inv)
	if err != nil {
		t.Fatal(err)
	}

	var triple []json.RawMessage
	if err := json.Unmarshal(data, &triple); err != nil || len(triple) != 3 {
		t.Fatalf("not a triple: %s", data)
	}

	var args map[string]json.RawMessage
	if err := json.Unmarshal(triple[1], &args); err != nil {
		t.Fatal(err)
	}
	if _, ok := args["#ids"]; !ok {
		t.Errorf("reference key not rewritten with # prefix: %s", triple[1])
	}
	if _, ok := args["ids"]; ok {
		t.Errorf("unprefixed reference key still present: %s", triple[1])
	}
	if _, ok := args["accountId"]; !ok {
		t.Errorf("literal key missing: %s", triple[1])
	}

	var ref ResultReference
	if err := json.Unmarshal(args["#ids"], &ref); err != nil {
		t.Fatal(err)
	}
	if ref.ResultOf != "q0" || ref.Name != "Email/query" || ref.Path != "/ids" {
		t.Errorf("reference round-trip mismatch: %+v", ref)
	}
}
