package jmap

import (
	"encoding/json"
	"fmt"
)

// CallResult is one tagged method response. Name is the method the
// server answered with, which is "error" for a failed call.
type CallResult struct {
	CallID string
	Name   string
	Args   json.RawMessage
}

// Decode unmarshals the result payload into v. When the server
// answered with the "error" method, Decode returns a *MethodError
// instead, so one failed call surfaces as a localized error while its
// siblings decode normally.
func (r CallResult) Decode(v any) error {
	if r.Name == "error" {
		var desc struct {
			Type        string `json:"type"`
			Description string `json:"description"`
		}
		// Best effort: a malformed error descriptor still yields a
		// MethodError, just without details.
		_ = json.Unmarshal(r.Args, &desc)
		if desc.Type == "" {
			desc.Type = "unknown"
		}
		return &MethodError{CallID: r.CallID, Method: r.Name, Type: desc.Type, Description: desc.Description}
	}
	if v == nil {
		return nil
	}
	if err := json.Unmarshal(r.Args, v); err != nil {
		return &ProtocolError{Message: fmt.Sprintf("decoding %s result for call %q: %v", r.Name, r.CallID, err)}
	}
	return nil
}

// Response holds the method responses of one executed batch, indexed
// by call id. Response order is never assumed to match request order:
// tags are a permutation-stable echo of the request tags.
type Response struct {
	SessionState string
	byID         map[string][]CallResult
}

// parseResponse decodes the wire-level {methodResponses: [...]} body.
func parseResponse(body []byte) (*Response, error) {
	var wire struct {
		MethodResponses []json.RawMessage `json:"methodResponses"`
		SessionState    string            `json:"sessionState"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, &ProtocolError{Message: fmt.Sprintf("decoding response body: %v", err)}
	}
	resp := &Response{
		SessionState: wire.SessionState,
		byID:         make(map[string][]CallResult, len(wire.MethodResponses)),
	}
	for i, raw := range wire.MethodResponses {
		var triple []json.RawMessage
		if err := json.Unmarshal(raw, &triple); err != nil || len(triple) != 3 {
			return nil, &ProtocolError{Message: fmt.Sprintf("method response %d is not a [name, args, id] triple", i)}
		}
		var name, callID string
		if err := json.Unmarshal(triple[0], &name); err != nil {
			return nil, &ProtocolError{Message: fmt.Sprintf("method response %d has a non-string name", i)}
		}
		if err := json.Unmarshal(triple[2], &callID); err != nil {
			return nil, &ProtocolError{Message: fmt.Sprintf("method response %d has a non-string call id", i)}
		}
		resp.byID[callID] = append(resp.byID[callID], CallResult{CallID: callID, Name: name, Args: triple[1]})
	}
	return resp, nil
}

// Get returns the first result tagged callID. The server may attach
// several responses to one tag (implicit set calls triggered by
// onSuccess instructions); Get returns the primary one.
func (r *Response) Get(callID string) (CallResult, error) {
	results := r.byID[callID]
	if len(results) == 0 {
		return CallResult{}, &ProtocolError{Message: fmt.Sprintf("no response for call %q", callID)}
	}
	return results[0], nil
}

// GetMethod returns the result tagged callID whose method name matches
// method, or the "error" response for that tag if the call failed.
func (r *Response) GetMethod(callID, method string) (CallResult, error) {
	var errResult *CallResult
	for _, res := range r.byID[callID] {
		if res.Name == method {
			return res, nil
		}
		if res.Name == "error" {
			errResult = &res
		}
	}
	if errResult != nil {
		return *errResult, nil
	}
	return CallResult{}, &ProtocolError{Message: fmt.Sprintf("no %s response for call %q", method, callID)}
}

// DecodeGet fetches the result tagged callID and decodes it into v in
// one step.
func (r *Response) DecodeGet(callID string, v any) error {
	res, err := r.Get(callID)
	if err != nil {
		return err
	}
	return res.Decode(v)
}

// setError is the error descriptor attached to notCreated/notUpdated
// entries of a */set response.
type setError struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

func (e setError) toMethodError(callID, method string) *MethodError {
	t := e.Type
	if t == "" {
		t = "unknown"
	}
	return &MethodError{CallID: callID, Method: method, Type: t, Description: e.Description}
}
