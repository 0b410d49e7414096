package sanitizer

import (
	"strings"

	"golang.org/x/net/html"
)

// chromeElements are element types that never carry article content.
var chromeElements = map[string]bool{
	"script":   true,
	"style":    true,
	"nav":      true,
	"header":   true,
	"footer":   true,
	"aside":    true,
	"form":     true,
	"iframe":   true,
	"noscript": true,
}

// chromeClassFragments flag containers that are navigation or widgets by
// class convention rather than element type.
var chromeClassFragments = []string{
	"menu",
	"navigation",
	"sidebar",
	"share",
	"related",
	"comments",
	"advert",
}

// removeChrome strips site chrome from the tree in place.
func removeChrome(node *html.Node) {
	if node == nil {
		return
	}

	// Collect children first; removal mutates the sibling list
	var children []*html.Node
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		children = append(children, child)
	}

	for _, child := range children {
		if child.Type == html.ElementNode && isChrome(child) {
			node.RemoveChild(child)
			continue
		}
		removeChrome(child)
	}
}

func isChrome(node *html.Node) bool {
	if chromeElements[node.Data] {
		return true
	}

	for _, attr := range node.Attr {
		if attr.Key != "class" && attr.Key != "id" {
			continue
		}
		value := strings.ToLower(attr.Val)
		for _, fragment := range chromeClassFragments {
			if strings.Contains(value, fragment) {
				return true
			}
		}
	}
	return false
}

// removeEmptyNodesBottomUp performs a post-order traversal to remove empty nodes.
// This ensures nested empty containers are fully cleaned (innermost first).
func removeEmptyNodesBottomUp(node *html.Node) {
	if node == nil {
		return
	}

	var children []*html.Node
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		children = append(children, child)
	}

	for _, child := range children {
		removeEmptyNodesBottomUp(child)
	}

	if node.Type == html.ElementNode && isEmptyNode(node) && shouldRemoveEmptyElement(node.Data) {
		if node.Parent != nil {
			node.Parent.RemoveChild(node)
		}
	}
}

// isEmptyNode reports whether a node has no child elements and no
// non-whitespace text.
func isEmptyNode(node *html.Node) bool {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.ElementNode:
			return false
		case html.TextNode:
			if strings.TrimSpace(child.Data) != "" {
				return false
			}
		}
	}
	return true
}

// shouldRemoveEmptyElement returns true if an empty element of this type should be removed.
// Some empty elements like <img>, <br>, <hr> are valid even when empty.
func shouldRemoveEmptyElement(tag string) bool {
	// Void elements (self-closing) are valid when empty
	voidElements := map[string]bool{
		"area": true, "base": true, "br": true, "col": true, "embed": true,
		"hr": true, "img": true, "input": true, "link": true, "meta": true,
		"param": true, "source": true, "track": true, "wbr": true,
	}

	if voidElements[tag] {
		return false
	}

	// Never remove structural containers even if empty
	structuralElements := map[string]bool{
		"html": true, "head": true, "body": true, "main": true, "article": true,
	}

	return !structuralElements[tag]
}
