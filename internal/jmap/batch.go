package jmap

import (
	"encoding/json"
	"fmt"
)

// ResultReference points an argument of a later call at part of an
// earlier call's result. The server substitutes the value; the client
// never materializes it. Used as a value inside Invocation arguments,
// where marshaling rewrites the argument key with the "#" prefix the
// protocol requires.
type ResultReference struct {
	ResultOf string `json:"resultOf"`
	Name     string `json:"name"`
	Path     string `json:"path"`
}

// Invocation is one method call within a batch: a method name, an
// argument object, and a caller-assigned call id unique within the
// batch.
type Invocation struct {
	Name   string
	Args   map[string]any
	CallID string
}

// MarshalJSON renders the protocol's ["method", {args}, "callId"]
// triple. Argument keys whose value is a ResultReference are prefixed
// with "#".
func (inv Invocation) MarshalJSON() ([]byte, error) {
	args := make(map[string]any, len(inv.Args))
	for k, v := range inv.Args {
		switch v.(type) {
		case ResultReference, *ResultReference:
			args["#"+k] = v
		default:
			args[k] = v
		}
	}
	return json.Marshal([]any{inv.Name, args, inv.CallID})
}

// Batch is an ordered sequence of method calls sent as one request.
// Ordering is significant: a ResultReference may only name a call that
// appears earlier in the same batch.
type Batch struct {
	calls []Invocation
	ids   map[string]bool
}

// NewBatch returns an empty batch.
func NewBatch() *Batch {
	return &Batch{ids: make(map[string]bool)}
}

// Add appends a call to the batch. It fails fast, before any network
// I/O, when callID duplicates an existing call id or when any
// ResultReference in args names a call id not already in the batch
// (a forward or dangling reference would be unresolvable server-side).
func (b *Batch) Add(callID, method string, args map[string]any) error {
	if callID == "" {
		return fmt.Errorf("batch: empty call id for %s", method)
	}
	if b.ids[callID] {
		return fmt.Errorf("batch: duplicate call id %q", callID)
	}
	if err := b.checkReferences(method, args); err != nil {
		return err
	}
	b.calls = append(b.calls, Invocation{Name: method, Args: args, CallID: callID})
	b.ids[callID] = true
	return nil
}

// MustAdd is Add for statically-constructed batches where the call ids
// and references are fixed at compile time. It panics on the invariant
// violations Add reports, which in such batches are programming errors.
func (b *Batch) MustAdd(callID, method string, args map[string]any) {
	if err := b.Add(callID, method, args); err != nil {
		panic(err)
	}
}

func (b *Batch) checkReferences(method string, args any) error {
	switch v := args.(type) {
	case ResultReference:
		if !b.ids[v.ResultOf] {
			return fmt.Errorf("batch: %s references %q which is not an earlier call in this batch", method, v.ResultOf)
		}
	case *ResultReference:
		return b.checkReferences(method, *v)
	case map[string]any:
		for _, sub := range v {
			if err := b.checkReferences(method, sub); err != nil {
				return err
			}
		}
	case []any:
		for _, sub := range v {
			if err := b.checkReferences(method, sub); err != nil {
				return err
			}
		}
	}
	return nil
}

// Calls returns the calls in insertion order.
func (b *Batch) Calls() []Invocation {
	return b.calls
}

// Len returns the number of calls in the batch.
func (b *Batch) Len() int {
	return len(b.calls)
}
