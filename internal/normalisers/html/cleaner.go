package html

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	nethtml "golang.org/x/net/html"
)

// BulletMarker prefixes every list-item segment.
const BulletMarker = "• "

// blockSelector lists the elements that each contribute one segment.
const blockSelector = "p, h1, h2, h3, h4, h5, h6, li, div, span"

// Cleaner converts HTML fragments into plain text.
// A Cleaner holds no mutable state and is safe for concurrent use.
type Cleaner struct {
	preserveLinks     bool
	preserveStructure bool
	keepImageAlt      bool
}

// Option configures a Cleaner.
type Option func(*Cleaner)

// WithLinks controls whether anchors keep their href as "text (href)".
func WithLinks(preserve bool) Option {
	return func(c *Cleaner) {
		c.preserveLinks = preserve
	}
}

// WithStructure controls whether text is segmented per block element.
// Without structure the flat document text is used.
func WithStructure(preserve bool) Option {
	return func(c *Cleaner) {
		c.preserveStructure = preserve
	}
}

// WithImageAlt replaces images carrying alt text with "[Image: alt]"
// instead of removing them.
func WithImageAlt(keep bool) Option {
	return func(c *Cleaner) {
		c.keepImageAlt = keep
	}
}

// NewCleaner creates a Cleaner. By default links and structure are
// preserved and images are removed without trace.
func NewCleaner(opts ...Option) *Cleaner {
	c := &Cleaner{
		preserveLinks:     true,
		preserveStructure: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultCleaner = NewCleaner()

// Normalize converts an HTML document into plain text using the default Cleaner.
//
// Entities are decoded, so escaped markup comes out tag-shaped:
// "<p>a &lt;b&gt; c</p>" gives "a <b> c". The result is text, not HTML.
// Feeding it back through Normalize parses "<b>" as a tag and yields "a c",
// so Normalize is idempotent only on output free of '<'.
func Normalize(html string) string {
	return defaultCleaner.Clean(html)
}

// Clean converts an HTML document into plain text.
// Malformed markup never fails; the parser recovers the way browsers do.
func (c *Cleaner) Clean(html string) string {
	if html == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return normalizeWhitespace(html)
	}

	doc.Find("script, style").Remove()
	c.rewriteImages(doc)
	c.rewriteLinks(doc)

	var text string
	if c.preserveStructure {
		text = structuredText(doc)
	} else {
		text = doc.Text()
	}

	return normalizeWhitespace(text)
}

// Flatten returns all text of the document with entities decoded and
// whitespace normalised. No segmentation, links or image handling.
func Flatten(html string) string {
	if html == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return normalizeWhitespace(html)
	}
	return normalizeWhitespace(doc.Text())
}

func (c *Cleaner) rewriteImages(doc *goquery.Document) {
	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		if c.keepImageAlt {
			if alt := strings.TrimSpace(img.AttrOr("alt", "")); alt != "" {
				img.ReplaceWithNodes(textNode("[Image: " + alt + "]"))
				return
			}
		}
		img.Remove()
	})
}

func (c *Cleaner) rewriteLinks(doc *goquery.Document) {
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		text := strings.TrimSpace(a.Text())
		href := strings.TrimSpace(a.AttrOr("href", ""))

		switch {
		case text == "":
			a.Remove()
		case href != "" && c.preserveLinks:
			a.ReplaceWithNodes(textNode(text + " (" + href + ")"))
		default:
			a.ReplaceWithNodes(textNode(text))
		}
	})
}

// structuredText emits one segment per block element in document order,
// skipping empty and already emitted text. It falls back to the whole
// document text when no segment was produced.
func structuredText(doc *goquery.Document) string {
	var segments []string
	seen := make(map[string]struct{})

	doc.Find(blockSelector).Each(func(_ int, el *goquery.Selection) {
		text := strings.TrimSpace(el.Text())
		if text == "" {
			return
		}
		if _, dup := seen[text]; dup {
			return
		}
		seen[text] = struct{}{}

		if goquery.NodeName(el) == "li" {
			text = BulletMarker + text
		}
		segments = append(segments, text)
	})

	if len(segments) == 0 {
		return doc.Text()
	}
	return strings.Join(segments, "\n")
}

func textNode(data string) *nethtml.Node {
	return &nethtml.Node{Type: nethtml.TextNode, Data: data}
}
