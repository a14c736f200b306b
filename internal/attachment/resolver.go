package attachment

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// TruncationMarker is appended to text cut off by a size bound so the
// cut is visible in the rendered output as well as in the Truncated
// flag.
const TruncationMarker = "\n\n[content truncated]"

// Content is the outcome of resolving one attachment blob.
// Exactly one of Text or Data carries the payload: Text for decoded
// documents, Data for images and for raw-byte fallback when no
// decoder matches.
type Content struct {
	MIMEType  string
	Text      string
	Data      []byte
	Truncated bool
}

// BlobFetcher fetches raw attachment bytes by blob id.
type BlobFetcher interface {
	DownloadBlob(ctx context.Context, blobID string) ([]byte, error)
}

// Resolver turns attachment blobs into bounded, displayable content:
// fetch, sniff the real type, dispatch to a decoder, and apply the
// caller's size bound.
type Resolver struct {
	fetcher    BlobFetcher
	tools      Tools
	scaleRatio float64
}

// NewResolver builds a resolver. scaleRatio of zero selects the
// default image downscale step.
func NewResolver(fetcher BlobFetcher, tools Tools, scaleRatio float64) *Resolver {
	return &Resolver{fetcher: fetcher, tools: tools, scaleRatio: scaleRatio}
}

// Resolve fetches and decodes one attachment. sizeBound of zero means
// unbounded. The declared type and filename only break ties; the
// sniffed signature decides which decoder runs. Content with no
// matching decoder comes back as raw bytes so the caller can fall
// back to saving it.
func (r *Resolver) Resolve(ctx context.Context, blobID, declaredType, filename string, sizeBound int) (*Content, error) {
	data, err := r.fetcher.DownloadBlob(ctx, blobID)
	if err != nil {
		return nil, fmt.Errorf("fetching blob %s: %w", blobID, err)
	}
	return r.resolveBytes(ctx, data, declaredType, filename, sizeBound)
}

func (r *Resolver) resolveBytes(ctx context.Context, data []byte, declaredType, filename string, sizeBound int) (*Content, error) {
	sniffed := Sniff(data, declaredType, filename)

	if strings.HasPrefix(sniffed, "image/") {
		bounded, mimeType, err := BoundImage(ctx, data, sniffed, sizeBound, r.scaleRatio)
		if err != nil {
			return nil, err
		}
		return &Content{
			MIMEType:  mimeType,
			Data:      bounded,
			Truncated: len(bounded) < len(data),
		}, nil
	}

	decoder := DecoderFor(sniffed, declaredType, r.tools)
	if decoder == nil {
		return &Content{MIMEType: sniffed, Data: data}, nil
	}

	text, err := decoder.Decode(ctx, data)
	if err != nil {
		return nil, err
	}

	content := &Content{MIMEType: sniffed, Text: text}
	if sizeBound > 0 && len(text) > sizeBound {
		content.Text = TruncateText(text, sizeBound)
		content.Truncated = true
	}
	return content, nil
}

// ResolveText fetches one attachment and forces text extraction,
// running OCR on images instead of returning scaled bytes. Used when
// the caller wants text or nothing.
func (r *Resolver) ResolveText(ctx context.Context, blobID, declaredType, filename string, sizeBound int) (*Content, error) {
	data, err := r.fetcher.DownloadBlob(ctx, blobID)
	if err != nil {
		return nil, fmt.Errorf("fetching blob %s: %w", blobID, err)
	}

	sniffed := Sniff(data, declaredType, filename)
	decoder := DecoderFor(sniffed, declaredType, r.tools)
	if decoder == nil {
		return nil, &DecodeFailed{Format: sniffed, Err: fmt.Errorf("no text representation")}
	}

	text, err := decoder.Decode(ctx, data)
	if err != nil {
		return nil, err
	}
	content := &Content{MIMEType: sniffed, Text: text}
	if sizeBound > 0 && len(text) > sizeBound {
		content.Text = TruncateText(text, sizeBound)
		content.Truncated = true
	}
	return content, nil
}

// TruncateText cuts text to at most maxBytes and appends the
// truncation marker. The cut lands on a rune boundary so the result
// stays valid UTF-8.
func TruncateText(text string, maxBytes int) string {
	if len(text) <= maxBytes {
		return text
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + TruncationMarker
}
