package attachment

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ooxmlDecoder extracts text from Office Open XML containers (docx,
// pptx, xlsx) by reading the relevant document parts and collecting
// character data.
type ooxmlDecoder struct {
	contentType string
}

func (d *ooxmlDecoder) Format() string {
	switch d.contentType {
	case TypeDocx:
		return "DOCX"
	case TypePptx:
		return "PPTX"
	case TypeXlsx:
		return "XLSX"
	}
	return "OOXML"
}

func (d *ooxmlDecoder) Decode(_ context.Context, data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &DecodeFailed{Format: d.Format(), Err: fmt.Errorf("opening container: %w", err)}
	}

	parts := d.selectParts(reader)
	if len(parts) == 0 {
		return "", &DecodeFailed{Format: d.Format(), Err: fmt.Errorf("no document parts in container")}
	}

	var sections []string
	for _, part := range parts {
		rc, err := part.Open()
		if err != nil {
			return "", &DecodeFailed{Format: d.Format(), Err: fmt.Errorf("opening %s: %w", part.Name, err)}
		}
		text, err := extractXMLText(rc)
		rc.Close()
		if err != nil {
			return "", &DecodeFailed{Format: d.Format(), Err: fmt.Errorf("parsing %s: %w", part.Name, err)}
		}
		if text != "" {
			sections = append(sections, text)
		}
	}

	result := strings.TrimSpace(strings.Join(sections, "\n\n"))
	if result == "" {
		return "", &DecodeFailed{Format: d.Format(), Err: fmt.Errorf("document contains no text")}
	}
	return result, nil
}

// selectParts picks the XML parts carrying body text: the main
// document for docx, every slide for pptx, the shared string table
// plus sheets for xlsx.
func (d *ooxmlDecoder) selectParts(reader *zip.Reader) []*zip.File {
	var parts []*zip.File
	for _, f := range reader.File {
		name := f.Name
		switch d.contentType {
		case TypeDocx:
			if name == "word/document.xml" {
				parts = append(parts, f)
			}
		case TypePptx:
			if strings.HasPrefix(name, "ppt/slides/slide") && strings.HasSuffix(name, ".xml") {
				parts = append(parts, f)
			}
		case TypeXlsx:
			if name == "xl/sharedStrings.xml" {
				parts = append(parts, f)
			}
		}
	}
	// Slides come back in archive order; present them in slide order.
	sort.Slice(parts, func(i, j int) bool { return parts[i].Name < parts[j].Name })
	return parts
}

// extractXMLText walks an XML stream and joins its character data.
// Paragraph and row boundaries become newlines so words from separate
// blocks do not run together.
func extractXMLText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.EndElement:
			switch t.Name.Local {
			case "p", "row", "si", "br":
				b.WriteByte('\n')
			case "tab":
				b.WriteByte('\t')
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}
