package attachment

import (
	"context"
	"strings"
)

// Decoder maps raw attachment bytes to extracted text.
// In-process decoders (OOXML, HTML, plain text) parse directly;
// subprocess decoders shell out to an external tool and return
// *DecoderUnavailable when the tool is not installed.
type Decoder interface {
	// Format names the content format this decoder handles, for
	// error reporting.
	Format() string
	Decode(ctx context.Context, data []byte) (string, error)
}

// Tools names the external binaries the subprocess decoders invoke.
// Empty fields fall back to the conventional tool names.
type Tools struct {
	PDFToText string
	Antiword  string
	Tesseract string
}

func (t Tools) withDefaults() Tools {
	if t.PDFToText == "" {
		t.PDFToText = "pdftotext"
	}
	if t.Antiword == "" {
		t.Antiword = "antiword"
	}
	if t.Tesseract == "" {
		t.Tesseract = "tesseract"
	}
	return t
}

// DecoderFor selects the decoder for a sniffed content type, or nil
// when the type has no text representation (archives, unknown binary).
// declaredType is passed through to the text decoder for its charset
// parameter.
func DecoderFor(sniffedType, declaredType string, tools Tools) Decoder {
	tools = tools.withDefaults()
	switch sniffedType {
	case TypePDF:
		return &execDecoder{
			format: "PDF",
			tool:   tools.PDFToText,
			args:   []string{"-", "-"},
			stdin:  true,
		}
	case TypeDocx, TypePptx, TypeXlsx:
		return &ooxmlDecoder{contentType: sniffedType}
	case TypeOLE:
		return &execDecoder{
			format:   "legacy Office document",
			tool:     tools.Antiword,
			tempFile: true,
		}
	case TypeHTML:
		return htmlDecoder{}
	case TypeText:
		return textDecoder{declaredType: declaredType}
	}
	if strings.HasPrefix(sniffedType, "image/") {
		return &execDecoder{
			format: "image OCR",
			tool:   tools.Tesseract,
			args:   []string{"stdin", "stdout"},
			stdin:  true,
		}
	}
	return nil
}
