// Package markup extracts self-contained fragments from HTML documents.
//
// A remote print service sees nothing of the source page except what is
// sent to it, so the fragment travels with the document's styles.
package markup

import (
	"errors"
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrTargetNotFound is returned when no element matches the selector.
var ErrTargetNotFound = errors.New("target element not found")

// ErrInvalidSelector is returned when the selector does not parse.
var ErrInvalidSelector = errors.New("invalid selector")

// Snapshot is a detached copy of one element and the head resources it
// depends on.
type Snapshot struct {
	Lang            string
	Title           string
	Body            string   // outer HTML of the target
	Styles          []string // inline <style> contents, document order
	StylesheetLinks []string // href of every rel=stylesheet link
}

// Take parses document and snapshots the first element, in document order,
// matching selector. Selectors follow querySelector semantics.
func Take(document, selector string) (*Snapshot, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidSelector, selector, err)
	}

	root, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	target := sel.MatchFirst(root)
	if target == nil {
		return nil, fmt.Errorf("%w: %q", ErrTargetNotFound, selector)
	}

	snap := &Snapshot{}
	collectHead(root, snap)

	var b strings.Builder
	if err := html.Render(&b, target); err != nil {
		return nil, fmt.Errorf("rendering target: %w", err)
	}
	snap.Body = b.String()
	return snap, nil
}

func collectHead(n *html.Node, snap *Snapshot) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Html:
			snap.Lang = attr(n, "lang")
		case atom.Title:
			if snap.Title == "" {
				snap.Title = strings.TrimSpace(text(n))
			}
		case atom.Style:
			snap.Styles = append(snap.Styles, text(n))
		case atom.Link:
			if isStylesheet(n) {
				if href := attr(n, "href"); href != "" {
					snap.StylesheetLinks = append(snap.StylesheetLinks, href)
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectHead(c, snap)
	}
}

func isStylesheet(n *html.Node) bool {
	for _, rel := range strings.Fields(attr(n, "rel")) {
		if strings.EqualFold(rel, "stylesheet") {
			return true
		}
	}
	return false
}

func text(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

func attr(n *html.Node, key string) string {
	v, _ := lookupAttr(n, key)
	return v
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}
