package report

import (
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

var (
	spacesRegex = regexp.MustCompile(`\s+`)

	blockTags = map[string]bool{
		"address": true, "article": true, "aside": true, "blockquote": true, "br": true, "dd": true,
		"div": true, "dl": true, "dt": true, "footer": true, "form": true, "h1": true, "h2": true,
		"h3": true, "h4": true, "h5": true, "h6": true, "header": true, "hr": true, "li": true,
		"main": true, "nav": true, "ol": true, "p": true, "pre": true, "section": true, "table": true,
		"tbody": true, "td": true, "th": true, "thead": true, "tr": true, "ul": true,
	}
)

// LooksLikeHTML reports whether `s` seems to be an HTML document rather than plain report text.
func LooksLikeHTML(s string) bool {
	head := strings.ToLower(strings.TrimSpace(s))
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.HasPrefix(head, "<!doctype html") ||
		strings.HasPrefix(head, "<html") ||
		strings.Contains(head, "<body")
}

// ExtractText reduces an HTML page saved from the LMS to report text: one line per block element,
// whitespace collapsed, scripts and styles dropped.
func ExtractText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", errors.Wrap(err, "reading html")
	}
	doc.Find("script, style, noscript, template, head").Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	var b strings.Builder
	writeText(&b, root)

	lines := strings.Split(b.String(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n"), nil
}

func writeText(b *strings.Builder, sel *goquery.Selection) {
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		name := goquery.NodeName(s)
		if name == "#text" {
			b.WriteString(spacesRegex.ReplaceAllString(s.Text(), " "))
			return
		}
		block := blockTags[name]
		if block {
			b.WriteByte('\n')
		}
		writeText(b, s)
		if block {
			b.WriteByte('\n')
		}
	})
}
