package attachment

import (
	"bytes"
	"context"
	"strings"

	"golang.org/x/net/html"
)

// htmlDecoder converts an HTML document to plain text by walking the
// parse tree, skipping non-content elements.
type htmlDecoder struct{}

func (htmlDecoder) Format() string { return "HTML" }

func (htmlDecoder) Decode(_ context.Context, data []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", &DecodeFailed{Format: "HTML", Err: err}
	}

	var b strings.Builder
	walkHTML(doc, &b)
	return collapseBlankLines(b.String()), nil
}

var skippedElements = map[string]bool{
	"script": true,
	"style":  true,
	"head":   true,
}

var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "table": true, "ul": true, "ol": true,
}

func walkHTML(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode && skippedElements[n.Data] {
		return
	}
	if n.Type == html.TextNode {
		text := strings.TrimSpace(n.Data)
		if text != "" {
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
				b.WriteByte(' ')
			}
			b.WriteString(text)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkHTML(c, b)
	}
	if n.Type == html.ElementNode && blockElements[n.Data] {
		b.WriteByte('\n')
	}
}

// collapseBlankLines trims trailing space per line and folds runs of
// blank lines into one.
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			blank = true
			continue
		}
		if blank && len(out) > 0 {
			out = append(out, "")
		}
		blank = false
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
