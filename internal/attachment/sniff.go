// Package attachment resolves attachment blobs into displayable
// content. The declared content type of an attachment is metadata
// under the sender's control, so the real type is always re-derived
// from the byte signature before a decoder is chosen.
package attachment

import (
	"archive/zip"
	"bytes"
	"strings"
	"unicode/utf8"
)

// Sniffed content types. OOXML formats get their own names because
// they dispatch to a different decoder than plain ZIP archives.
const (
	TypePDF   = "application/pdf"
	TypeDocx  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	TypePptx  = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	TypeXlsx  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	TypeZip   = "application/zip"
	TypeOLE   = "application/x-ole-storage"
	TypeRTF   = "application/rtf"
	TypeGzip  = "application/gzip"
	TypePNG   = "image/png"
	TypeJPEG  = "image/jpeg"
	TypeGIF   = "image/gif"
	TypeHTML  = "text/html"
	TypeText  = "text/plain"
	TypeOctet = "application/octet-stream"
)

// Sniff derives the content type of data from its byte signature.
// The declared type and filename are tie-breakers only, consulted when
// the signature is ambiguous (a ZIP container, an OLE container, or
// plain text that may be HTML). A declared type that contradicts the
// signature loses.
func Sniff(data []byte, declaredType, filename string) string {
	switch {
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return TypePDF
	case bytes.HasPrefix(data, []byte("PK\x03\x04")):
		return sniffZip(data, declaredType, filename)
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return TypePNG
	case bytes.HasPrefix(data, []byte("\xff\xd8\xff")):
		return TypeJPEG
	case bytes.HasPrefix(data, []byte("GIF87a")) || bytes.HasPrefix(data, []byte("GIF89a")):
		return TypeGIF
	case bytes.HasPrefix(data, []byte("{\\rtf")):
		return TypeRTF
	case bytes.HasPrefix(data, []byte("\xd0\xcf\x11\xe0\xa1\xb1\x1a\xe1")):
		return TypeOLE
	case bytes.HasPrefix(data, []byte("\x1f\x8b")):
		return TypeGzip
	}

	if looksLikeText(data) {
		if looksLikeHTML(data, declaredType, filename) {
			return TypeHTML
		}
		return TypeText
	}
	return TypeOctet
}

// sniffZip distinguishes OOXML documents from plain ZIP archives by
// the entry names in the central directory.
func sniffZip(data []byte, declaredType, filename string) string {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return TypeZip
	}
	for _, f := range reader.File {
		switch {
		case strings.HasPrefix(f.Name, "word/"):
			return TypeDocx
		case strings.HasPrefix(f.Name, "ppt/"):
			return TypePptx
		case strings.HasPrefix(f.Name, "xl/"):
			return TypeXlsx
		}
	}
	return TypeZip
}

// looksLikeText reports whether data is valid UTF-8 without NUL bytes,
// checking at most the first 8 KiB.
func looksLikeText(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	sample := data
	if len(sample) > 8192 {
		sample = sample[:8192]
		// Trim a possibly split trailing rune, at most 3 bytes.
		for i := 0; i < 3 && len(sample) > 0 && !utf8.Valid(sample); i++ {
			sample = sample[:len(sample)-1]
		}
	}
	if bytes.IndexByte(sample, 0) >= 0 {
		return false
	}
	return utf8.Valid(sample)
}

func looksLikeHTML(data []byte, declaredType, filename string) bool {
	head := strings.ToLower(string(bytes.TrimSpace(data[:min(len(data), 512)])))
	if strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html") {
		return true
	}
	if strings.Contains(head, "<body") || strings.Contains(head, "<div") || strings.Contains(head, "<p>") {
		return true
	}
	if strings.HasPrefix(strings.ToLower(declaredType), "text/html") {
		return true
	}
	ext := strings.ToLower(filename)
	return strings.HasSuffix(ext, ".html") || strings.HasSuffix(ext, ".htm")
}
