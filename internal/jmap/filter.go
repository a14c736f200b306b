package jmap

import (
	"fmt"
	"sort"
	"time"
)

// Predicate is one atomic search condition: a JMAP Email/query filter
// field and its value.
type Predicate struct {
	Field string
	Value any
}

// FilterNode is a compiled filter: either a single leaf condition or a
// conjunction of nodes. The compiler only ever produces conjunctions;
// no disjunction or negation surface is exposed, deliberately.
type FilterNode struct {
	// Leaf condition, set when Operator is empty.
	Field string
	Value any

	// Conjunction, set when Operator is "AND".
	Operator   string
	Conditions []FilterNode
}

// MarshalArgs renders the node as the filter argument object for
// Email/query.
func (n FilterNode) MarshalArgs() map[string]any {
	if n.Operator == "" {
		return map[string]any{n.Field: n.Value}
	}
	conds := make([]any, len(n.Conditions))
	for i, c := range n.Conditions {
		conds[i] = c.MarshalArgs()
	}
	return map[string]any{"operator": n.Operator, "conditions": conds}
}

// CompileFilter combines a set of independent predicates into a single
// conjunctive filter. Compilation is deterministic: predicates are
// ordered by field, then by rendered value, so compiling the same set
// twice yields structurally identical trees. The empty set compiles to
// nil, which matches everything.
func CompileFilter(predicates []Predicate) *FilterNode {
	if len(predicates) == 0 {
		return nil
	}

	sorted := make([]Predicate, len(predicates))
	copy(sorted, predicates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Field != sorted[j].Field {
			return sorted[i].Field < sorted[j].Field
		}
		return fmt.Sprint(sorted[i].Value) < fmt.Sprint(sorted[j].Value)
	})

	if len(sorted) == 1 {
		return &FilterNode{Field: sorted[0].Field, Value: sorted[0].Value}
	}

	node := &FilterNode{Operator: "AND", Conditions: make([]FilterNode, len(sorted))}
	for i, p := range sorted {
		node.Conditions[i] = FilterNode{Field: p.Field, Value: p.Value}
	}
	return node
}

// SearchOptions is the caller-facing search surface. It is translated
// to predicates at this boundary; the compiler itself only sees atomic
// predicates.
type SearchOptions struct {
	Text          string
	From          string
	To            string
	CC            string
	BCC           string
	Subject       string
	Body          string
	MailboxID     string
	HasAttachment bool
	MinSize       uint32
	MaxSize       uint32
	Before        string
	After         string
	Unread        bool
	Flagged       bool

	// Pinned is a convenience predicate: it expands to flagged plus
	// in-inbox before compilation. InboxID must be set when Pinned is.
	Pinned  bool
	InboxID string
}

// Predicates expands the options into atomic predicates. Size bounds
// follow RFC 8621: minSize is inclusive (size >= min), maxSize is
// exclusive (size < max). Date-only values (YYYY-MM-DD) normalize to
// start of day UTC, making "after" inclusive of the named day and
// "before" exclusive of it.
func (o SearchOptions) Predicates() ([]Predicate, error) {
	var preds []Predicate
	addString := func(field, value string) {
		if value != "" {
			preds = append(preds, Predicate{Field: field, Value: value})
		}
	}
	addString("text", o.Text)
	addString("from", o.From)
	addString("to", o.To)
	addString("cc", o.CC)
	addString("bcc", o.BCC)
	addString("subject", o.Subject)
	addString("body", o.Body)
	addString("inMailbox", o.MailboxID)

	if o.HasAttachment {
		preds = append(preds, Predicate{Field: "hasAttachment", Value: true})
	}
	if o.MinSize > 0 {
		preds = append(preds, Predicate{Field: "minSize", Value: o.MinSize})
	}
	if o.MaxSize > 0 {
		preds = append(preds, Predicate{Field: "maxSize", Value: o.MaxSize})
	}
	if o.Before != "" {
		ts, err := normalizeDate(o.Before)
		if err != nil {
			return nil, fmt.Errorf("invalid before date: %w", err)
		}
		preds = append(preds, Predicate{Field: "before", Value: ts})
	}
	if o.After != "" {
		ts, err := normalizeDate(o.After)
		if err != nil {
			return nil, fmt.Errorf("invalid after date: %w", err)
		}
		preds = append(preds, Predicate{Field: "after", Value: ts})
	}
	if o.Unread {
		preds = append(preds, Predicate{Field: "notKeyword", Value: "$seen"})
	}
	if o.Flagged {
		preds = append(preds, Predicate{Field: "hasKeyword", Value: "$flagged"})
	}
	if o.Pinned {
		if o.InboxID == "" {
			return nil, fmt.Errorf("pinned search requires a resolved inbox id")
		}
		preds = append(preds,
			Predicate{Field: "hasKeyword", Value: "$flagged"},
			Predicate{Field: "inMailbox", Value: o.InboxID},
		)
	}
	return preds, nil
}

// normalizeDate accepts a calendar date or a full timestamp and
// returns the UTCDate string the protocol requires. Calendar dates map
// to start of day UTC.
func normalizeDate(s string) (string, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC().Format(time.RFC3339), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return "", fmt.Errorf("%q is neither YYYY-MM-DD nor RFC 3339", s)
	}
	return t.UTC().Format(time.RFC3339), nil
}
