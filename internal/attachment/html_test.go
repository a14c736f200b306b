package attachment

import (
	"context"
	"strings"
	"testing"
)

func TestHTMLDecoder(t *testing.T) {
	input := `<!DOCTYPE html>
<html>
<head><title>ignored</title><style>body { color: red }</style></head>
<body>
  <script>var hidden = true;</script>
  <h1>Greetings</h1>
  <p>First <b>bold</b> paragraph.</p>
  <p>Second paragraph.</p>
</body>
</html>`

	text, err := htmlDecoder{}.Decode(context.Background(), []byte(input))
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"Greetings", "First bold paragraph.", "Second paragraph."} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in %q", want, text)
		}
	}
	for _, banned := range []string{"hidden", "color: red", "ignored"} {
		if strings.Contains(text, banned) {
			t.Errorf("non-content %q leaked into %q", banned, text)
		}
	}
	if !strings.Contains(text, "\n") {
		t.Errorf("block elements must produce line breaks: %q", text)
	}
}

func TestTextDecoderCharset(t *testing.T) {
	// "café" in ISO-8859-1.
	latin1 := []byte{'c', 'a', 'f', 0xe9}

	text, err := textDecoder{declaredType: "text/plain; charset=iso-8859-1"}.Decode(context.Background(), latin1)
	if err != nil {
		t.Fatal(err)
	}
	if text != "café" {
		t.Errorf("text = %q", text)
	}

	// The same bytes with no charset parameter are not valid UTF-8.
	_, err = textDecoder{declaredType: "text/plain"}.Decode(context.Background(), latin1)
	if !IsDecodeFailed(err) {
		t.Fatalf("want *DecodeFailed, got %v", err)
	}
}
