package pipeline

import (
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RewriteImageSources points relative img[src] attributes at the files the
// LaTeX body uses, so the preview written next to the .tex shows the same
// images. Sources the resolver cannot find are left as authored.
func RewriteImageSources(htmlContent string, resolver *ImageResolver, lang string) (string, error) {
	if resolver == nil {
		return htmlContent, nil
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}
	rewriteImages(doc, func(src string) (string, bool) {
		dest, err := resolver.Resolve(src, lang)
		return dest, err == nil
	})
	return renderHTML(doc, isFragment)
}

// parseHTML parses either a full document or a body fragment.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))
	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, true, err
	}
	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, true, nil
}

// renderHTML renders the tree back; fragments render their children only.
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder
	if !isFragment {
		if err := html.Render(&buf, doc); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func rewriteImages(n *html.Node, resolve func(string) (string, bool)) {
	if n.Type == html.ElementNode && n.DataAtom == atom.Img {
		for i, attr := range n.Attr {
			if attr.Key != "src" || !isRelativePath(attr.Val) {
				continue
			}
			if dest, ok := resolve(attr.Val); ok {
				n.Attr[i].Val = dest
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteImages(c, resolve)
	}
}

// isRelativePath reports whether src names a local relative file.
func isRelativePath(src string) bool {
	if src == "" || strings.HasPrefix(src, "#") || strings.HasPrefix(src, "//") {
		return false
	}
	for _, scheme := range []string{"http://", "https://", "file://", "data:"} {
		if strings.HasPrefix(src, scheme) {
			return false
		}
	}
	return !filepath.IsAbs(src)
}
