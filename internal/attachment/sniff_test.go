package attachment

import (
	"archive/zip"
	"bytes"
	"testing"
)

func zipWithEntry(t *testing.T, name string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write([]byte("<x/>")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		declared string
		filename string
		want     string
	}{
		{
			name: "pdf signature",
			data: []byte("%PDF-1.7\n..."),
			want: TypePDF,
		},
		{
			name:     "pdf bytes declared as docx",
			data:     []byte("%PDF-1.4\n..."),
			declared: TypeDocx,
			filename: "report.docx",
			want:     TypePDF,
		},
		{
			name: "png",
			data: []byte("\x89PNG\r\n\x1a\nrest"),
			want: TypePNG,
		},
		{
			name: "jpeg",
			data: []byte("\xff\xd8\xff\xe0rest"),
			want: TypeJPEG,
		},
		{
			name: "gif",
			data: []byte("GIF89a..."),
			want: TypeGIF,
		},
		{
			name: "rtf",
			data: []byte(`{\rtf1\ansi hello}`),
			want: TypeRTF,
		},
		{
			name: "ole compound",
			data: []byte("\xd0\xcf\x11\xe0\xa1\xb1\x1a\xe1rest"),
			want: TypeOLE,
		},
		{
			name: "gzip",
			data: []byte("\x1f\x8b\x08rest"),
			want: TypeGzip,
		},
		{
			name: "plain text",
			data: []byte("just some notes\n"),
			want: TypeText,
		},
		{
			name: "html document",
			data: []byte("<!DOCTYPE html><html><body>hi</body></html>"),
			want: TypeHTML,
		},
		{
			name:     "text declared as html",
			data:     []byte("plain looking but declared html"),
			declared: "text/html; charset=utf-8",
			want:     TypeHTML,
		},
		{
			name: "binary garbage",
			data: []byte{0x00, 0x01, 0x02, 0xfe, 0xff},
			want: TypeOctet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sniff(tt.data, tt.declared, tt.filename); got != tt.want {
				t.Errorf("Sniff() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSniffZipContainers(t *testing.T) {
	tests := []struct {
		entry string
		want  string
	}{
		{"word/document.xml", TypeDocx},
		{"ppt/slides/slide1.xml", TypePptx},
		{"xl/sharedStrings.xml", TypeXlsx},
		{"random.txt", TypeZip},
	}
	for _, tt := range tests {
		t.Run(tt.entry, func(t *testing.T) {
			data := zipWithEntry(t, tt.entry)
			// Declared type must not override the container inspection.
			if got := Sniff(data, TypePDF, "whatever.pdf"); got != tt.want {
				t.Errorf("Sniff() = %q, want %q", got, tt.want)
			}
		})
	}
}
