package crawler

import (
	"bytes"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// Document is the parsed view of one HTML page: the plain text, the metadata
// contents, and the anchors, which is everything the link scorer and the
// extraction strategies consume.
//
// Design decision: a single parsing pass produces everything rather than
// exposing per-query methods, because the scorer and every extractor read
// from the same page and a DOM walk is the expensive part.
type Document struct {
	// URL is the page's own URL, used as the base for link resolution.
	URL string

	// Title is the contents of the <title> tag.
	Title string

	// Text is the whitespace-collapsed plain text of the page, including
	// HTML comments (contact details hide in odd places).
	Text string

	// MetaContents holds the content attributes of description/keywords
	// meta tags.
	MetaContents []string

	// Anchors are hyperlinks with resolved absolute targets.
	Anchors []Anchor

	// Mailtos are email addresses taken from mailto: hrefs.
	Mailtos []string

	// LinkedInProfiles are hrefs pointing at LinkedIn profile pages.
	LinkedInProfiles []string
}

// Anchor is one hyperlink: its visible text and resolved absolute target.
type Anchor struct {
	Text string
	URL  string
}

// ParseDocument parses an HTML page into a Document. Relative hrefs are
// resolved against pageURL; mailto:, javascript:, tel: and data: targets are
// diverted or dropped. Page text is NFC-normalized so extractor regexes see
// a canonical byte form.
func ParseDocument(pageURL string, body []byte) (*Document, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}

	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	doc := &Document{URL: pageURL}

	var text strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			switch n.Data {
			case "script", "style":
				return // no text, no children of interest
			case "title":
				if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					doc.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "a":
				if href := getAttr(n, "href"); href != "" {
					doc.addAnchor(base, href, nodeText(n))
				}
			case "meta":
				name := strings.ToLower(getAttr(n, "name"))
				if strings.Contains(name, "description") || strings.Contains(name, "keywords") {
					if content := getAttr(n, "content"); content != "" {
						doc.MetaContents = append(doc.MetaContents, content)
					}
				}
			}
		case html.TextNode:
			text.WriteString(n.Data)
			text.WriteString(" ")
		case html.CommentNode:
			text.WriteString(n.Data)
			text.WriteString(" ")
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	doc.Text = collapseSpace(norm.NFC.String(text.String()))
	return doc, nil
}

// addAnchor classifies one href and records it on the document.
func (d *Document) addAnchor(base *url.URL, href, anchorText string) {
	href = strings.TrimSpace(href)
	switch {
	case href == "" || href == "#":
		return
	case strings.HasPrefix(href, "mailto:"):
		addr := strings.TrimPrefix(href, "mailto:")
		if i := strings.IndexByte(addr, '?'); i >= 0 {
			addr = addr[:i]
		}
		if addr != "" {
			d.Mailtos = append(d.Mailtos, addr)
		}
		return
	case strings.HasPrefix(href, "javascript:"),
		strings.HasPrefix(href, "tel:"),
		strings.HasPrefix(href, "data:"):
		return
	}

	u, err := url.Parse(href)
	if err != nil {
		return
	}
	resolved := base.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return
	}

	target := resolved.String()
	if strings.Contains(strings.ToLower(resolved.Host), "linkedin.com") &&
		strings.Contains(resolved.Path, "/in/") {
		d.LinkedInProfiles = append(d.LinkedInProfiles, target)
	}
	d.Anchors = append(d.Anchors, Anchor{Text: strings.TrimSpace(anchorText), URL: target})
}

// nodeText returns the concatenated text content of a node's subtree.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// collapseSpace reduces runs of whitespace to single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
