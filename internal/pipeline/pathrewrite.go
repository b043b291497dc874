package pipeline

import (
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alnah/go-pagepdf/internal/fileutil"
)

// rewrittenAttrs lists, per element, the attributes that may point at a
// local file the capture page has to load.
var rewrittenAttrs = map[atom.Atom][]string{
	atom.Img:    {"src", "srcset"},
	atom.Image:  {"href", "xlink:href"}, // SVG <image>
	atom.Source: {"srcset"},
	atom.Link:   {"href"}, // stylesheets only, see rewriteNode
	atom.A:      {"href"},
	atom.Object: {"data"},
}

// RewriteRelativePaths resolves relative resource paths against sourceDir
// and turns them into file:// URLs, so that a document loaded from a temp
// file still finds its images and stylesheets.
// Paths escaping sourceDir, URLs and anchors are left untouched.
// If sourceDir is empty, htmlContent is returned unchanged.
func RewriteRelativePaths(htmlContent, sourceDir string) (string, error) {
	if sourceDir == "" {
		return htmlContent, nil
	}

	base, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", err
	}

	root, fragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}
	rewriteNode(root, base)
	return renderHTML(root, fragment)
}

// IsFullDocument reports whether content is a complete HTML document
// rather than a body fragment.
func IsFullDocument(content string) bool {
	head := strings.ToLower(strings.TrimSpace(content))
	return strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html")
}

// parseHTML parses a document, or a fragment in body context.
func parseHTML(content string) (root *html.Node, fragment bool, err error) {
	if IsFullDocument(content) {
		root, err = html.Parse(strings.NewReader(content))
		return root, false, err
	}

	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, true, err
	}
	root = &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, true, nil
}

// renderHTML serializes root. Fragments render their children only.
func renderHTML(root *html.Node, fragment bool) (string, error) {
	var b strings.Builder
	if !fragment {
		err := html.Render(&b, root)
		return b.String(), err
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func rewriteNode(n *html.Node, base string) {
	if n.Type == html.ElementNode {
		if attrs, ok := rewrittenAttrs[n.DataAtom]; ok && (n.DataAtom != atom.Link || isStylesheetLink(n)) {
			for i := range n.Attr {
				for _, key := range attrs {
					if attrKey(n.Attr[i]) != key {
						continue
					}
					if key == "srcset" {
						n.Attr[i].Val = rewriteSrcset(n.Attr[i].Val, base)
					} else {
						n.Attr[i].Val = resolveLocal(n.Attr[i].Val, base)
					}
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteNode(c, base)
	}
}

func attrKey(a html.Attribute) string {
	if a.Namespace != "" {
		return a.Namespace + ":" + a.Key
	}
	return a.Key
}

func isStylesheetLink(n *html.Node) bool {
	for _, a := range n.Attr {
		if a.Key == "rel" {
			for _, rel := range strings.Fields(a.Val) {
				if strings.EqualFold(rel, "stylesheet") {
					return true
				}
			}
		}
	}
	return false
}

// rewriteSrcset resolves every candidate URL of a srcset list, keeping
// the width or density descriptors.
func rewriteSrcset(val, base string) string {
	candidates := strings.Split(val, ",")
	for i, c := range candidates {
		fields := strings.Fields(c)
		if len(fields) == 0 {
			continue
		}
		fields[0] = resolveLocal(fields[0], base)
		candidates[i] = strings.Join(fields, " ")
	}
	return strings.Join(candidates, ", ")
}

// resolveLocal returns the file:// URL of a relative path under base, or
// ref unchanged.
func resolveLocal(ref, base string) string {
	if !isRelativePath(ref) {
		return ref
	}
	abs := filepath.Join(base, ref)
	if !isPathUnderDir(abs, base) {
		return ref
	}
	u, err := fileutil.FileURL(abs)
	if err != nil {
		return ref
	}
	return u
}

// isRelativePath reports whether ref names a relative filesystem path.
func isRelativePath(ref string) bool {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "//") {
		return false
	}
	if i := strings.Index(ref, ":"); i > 1 {
		// Any scheme: http:, https:, file:, data:, mailto:
		// Single letters are Windows drive letters.
		if !strings.ContainsAny(ref[:i], "/\\.") {
			return false
		}
	}
	return !filepath.IsAbs(ref)
}

// isPathUnderDir reports whether path stays inside dir once cleaned.
func isPathUnderDir(path, dir string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
