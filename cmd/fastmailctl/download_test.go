package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"testing"

	"github.com/fastmailctl/fastmailctl/internal/attachment"
	"github.com/fastmailctl/fastmailctl/internal/model"
)

type fakeBlobStore struct {
	blobs map[string][]byte
}

func (f *fakeBlobStore) DownloadBlob(_ context.Context, blobID string) ([]byte, error) {
	data, ok := f.blobs[blobID]
	if !ok {
		return nil, fmt.Errorf("blob %s not found", blobID)
	}
	return data, nil
}

func noisyPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rng := rand.New(rand.NewSource(7))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)), 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestRawAttachmentPassesBytesThroughUnmodified(t *testing.T) {
	// A PDF must come back byte for byte, never routed through a text
	// decoder, and must not require pdftotext to be installed.
	pdf := []byte("%PDF-1.4\n1 0 obj\n<< >>\nendobj\ntrailer\n%%EOF\n")
	fetcher := &fakeBlobStore{blobs: map[string][]byte{"b1": pdf}}
	part := model.EmailBodyPart{BlobID: "b1", Name: "report.pdf", Type: "application/pdf"}

	name, data, mimeType, resized, err := rawAttachment(context.Background(), fetcher, part, 0, attachment.DefaultScaleRatio)
	if err != nil {
		t.Fatalf("rawAttachment: %v", err)
	}
	if !bytes.Equal(data, pdf) {
		t.Error("bytes were modified")
	}
	if name != "report.pdf" {
		t.Errorf("name = %q, want report.pdf", name)
	}
	if mimeType != attachment.TypePDF {
		t.Errorf("mimeType = %q, want %q", mimeType, attachment.TypePDF)
	}
	if resized {
		t.Error("non-image reported as resized")
	}
}

func TestRawAttachmentIgnoresBoundForNonImages(t *testing.T) {
	text := bytes.Repeat([]byte("all work and no play. "), 100)
	fetcher := &fakeBlobStore{blobs: map[string][]byte{"b1": text}}
	part := model.EmailBodyPart{BlobID: "b1", Name: "notes.txt", Type: "text/plain"}

	_, data, _, resized, err := rawAttachment(context.Background(), fetcher, part, 64, attachment.DefaultScaleRatio)
	if err != nil {
		t.Fatalf("rawAttachment: %v", err)
	}
	if !bytes.Equal(data, text) {
		t.Error("text attachment was truncated or modified")
	}
	if resized {
		t.Error("text attachment reported as resized")
	}
}

func TestRawAttachmentDownscalesOversizedImage(t *testing.T) {
	src := noisyPNG(t, 400, 300)
	bound := 16 * 1024
	if len(src) <= bound {
		t.Fatalf("fixture too small to exercise the bound: %d bytes", len(src))
	}
	fetcher := &fakeBlobStore{blobs: map[string][]byte{"b1": src}}
	part := model.EmailBodyPart{BlobID: "b1", Name: "photo.png", Type: "image/png"}

	name, data, mimeType, resized, err := rawAttachment(context.Background(), fetcher, part, bound, attachment.DefaultScaleRatio)
	if err != nil {
		t.Fatalf("rawAttachment: %v", err)
	}
	if len(data) > bound {
		t.Errorf("got %d bytes, want <= %d", len(data), bound)
	}
	if !resized {
		t.Error("oversized image not reported as resized")
	}
	if mimeType != attachment.TypeJPEG {
		t.Errorf("mimeType = %q, want %q", mimeType, attachment.TypeJPEG)
	}
	if name != "photo.jpg" {
		t.Errorf("name = %q, want photo.jpg", name)
	}
}

func TestRawAttachmentKeepsSmallImage(t *testing.T) {
	src := noisyPNG(t, 40, 30)
	fetcher := &fakeBlobStore{blobs: map[string][]byte{"b1": src}}
	part := model.EmailBodyPart{BlobID: "b1", Name: "icon.png", Type: "image/png"}

	name, data, _, resized, err := rawAttachment(context.Background(), fetcher, part, 1024*1024, attachment.DefaultScaleRatio)
	if err != nil {
		t.Fatalf("rawAttachment: %v", err)
	}
	if !bytes.Equal(data, src) {
		t.Error("image under the bound was modified")
	}
	if resized || name != "icon.png" {
		t.Errorf("resized = %v, name = %q", resized, name)
	}
}

func TestParseByteSize(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{input: "500K", want: 500 * 1024},
		{input: "1M", want: 1024 * 1024},
		{input: "2048", want: 2048},
		{input: "1m", want: 1024 * 1024},
		{input: "abc", wantErr: true},
		{input: "-5K", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseByteSize(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseByteSize(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseByteSize(%q): %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseByteSize(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
