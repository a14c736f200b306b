package jmap

import (
	"errors"
	"fmt"
)

// SessionError indicates that capability or account resolution failed:
// the token was rejected, no primary account exists, or the server does
// not advertise a capability the requested command needs. It is fatal
// for the invocation and is raised before any batch is built.
type SessionError struct {
	Capability string
	Message    string
}

func (e *SessionError) Error() string {
	if e.Capability != "" {
		return fmt.Sprintf("session error: server does not advertise %s (%s)", e.Capability, e.Message)
	}
	return fmt.Sprintf("session error: %s", e.Message)
}

// IsSessionError reports whether err (or any error in its chain) is a
// SessionError.
func IsSessionError(err error) bool {
	var se *SessionError
	return errors.As(err, &se)
}

// TransportError indicates a network or authentication failure while
// executing a request. It is fatal for the batch; earlier batches in
// the same process remain valid.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transport error during %s: HTTP %d", e.Op, e.Status)
	}
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransportError reports whether err (or any error in its chain) is
// a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// ProtocolError indicates the server rejected or returned something
// the client cannot interpret: a malformed response body, a response
// that is not a valid method-response array, or a request-level
// rejection. Treated as a compatibility defect, never retried.
type ProtocolError struct {
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error: %s", e.Message)
}

// IsProtocolError reports whether err (or any error in its chain) is a
// ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// MethodError is a per-call failure within an otherwise successful
// batch: the server answered the call tagged CallID with the "error"
// method. Sibling calls in the batch are unaffected.
type MethodError struct {
	CallID      string
	Method      string
	Type        string
	Description string
}

func (e *MethodError) Error() string {
	desc := e.Description
	if desc == "" {
		desc = "no description"
	}
	return fmt.Sprintf("%s failed (%s): %s", e.Method, e.Type, desc)
}

// IsMethodError reports whether err (or any error in its chain) is a
// MethodError.
func IsMethodError(err error) bool {
	var me *MethodError
	return errors.As(err, &me)
}

// SubmissionIncomplete indicates the message object was created but
// the submission step failed, so a draft may be left behind. EmailID
// is the created object's id so the operator can complete or clean up.
type SubmissionIncomplete struct {
	EmailID string
	Err     error
}

func (e *SubmissionIncomplete) Error() string {
	return fmt.Sprintf("email %s was created but not submitted: %v", e.EmailID, e.Err)
}

func (e *SubmissionIncomplete) Unwrap() error { return e.Err }

// IsSubmissionIncomplete reports whether err (or any error in its
// chain) is a SubmissionIncomplete.
func IsSubmissionIncomplete(err error) bool {
	var si *SubmissionIncomplete
	return errors.As(err, &si)
}

// NotFoundError indicates a named object (mailbox, email, attachment)
// does not exist on the server.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Name)
}

// IsNotFound reports whether err (or any error in its chain) is a
// NotFoundError.
func IsNotFound(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}
