package dom

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	// ErrNodeNotFound is returned when a required selector matches nothing.
	ErrNodeNotFound = errors.New("node not found")

	// ErrFieldNotFound is returned when a record field cannot be read from its region.
	ErrFieldNotFound = errors.New("field not found")
)

// PageRef is an absolute URL pointing at another deetlist page.
type PageRef string

// String returns the URL.
func (r PageRef) String() string { return string(r) }

// NotFoundError reports a required selector that matched nothing.
type NotFoundError struct {
	Selector string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNodeNotFound, e.Selector)
}

func (e *NotFoundError) Unwrap() error { return ErrNodeNotFound }

// FieldError reports which record field could not be read and why.
type FieldError struct {
	Field    string
	Selector string
	Err      error
}

func (e *FieldError) Error() string {
	if e.Selector != "" {
		return fmt.Sprintf("%s %q (%s): %v", ErrFieldNotFound, e.Field, e.Selector, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", ErrFieldNotFound, e.Field, e.Err)
}

// Is lets errors.Is match ErrFieldNotFound as well as the wrapped cause.
func (e *FieldError) Is(target error) bool { return target == ErrFieldNotFound }

func (e *FieldError) Unwrap() error { return e.Err }

// MissingField builds a FieldError for a selector that matched nothing.
func MissingField(field, selector string) error {
	return &FieldError{Field: field, Selector: selector, Err: &NotFoundError{Selector: selector}}
}

// Document is a parsed HTML page.
type Document struct {
	url  *url.URL
	root Node
}

// Parse parses an HTML string fetched from pageURL.
func Parse(pageURL, html string) (*Document, error) {
	return ParseReader(pageURL, strings.NewReader(html))
}

// ParseReader parses HTML read from r.
func ParseReader(pageURL string, r io.Reader) (*Document, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing page url: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	return &Document{url: base, root: Node{sel: doc.Selection}}, nil
}

// URL returns the page URL the document was parsed with.
func (d *Document) URL() string {
	return d.url.String()
}

// Root returns the document root as a Node.
func (d *Document) Root() Node {
	return d.root
}

// SelectOne returns the first node matching selector.
func (d *Document) SelectOne(selector string) (Node, bool) {
	return d.root.SelectOne(selector)
}

// SelectAll returns every node matching selector in document order.
func (d *Document) SelectAll(selector string) []Node {
	return d.root.SelectAll(selector)
}

// Require returns the first node matching selector or ErrNodeNotFound.
func (d *Document) Require(selector string) (Node, error) {
	return d.root.Require(selector)
}

// Resolve turns an href or src found on the page into an absolute PageRef.
// Spaces are percent-escaped.
func (d *Document) Resolve(href string) (PageRef, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", fmt.Errorf("parsing link %q: %w", href, err)
	}
	return PageRef(d.url.ResolveReference(ref).String()), nil
}

// Node is a single element within a Document.
type Node struct {
	sel *goquery.Selection
}

// SelectOne returns the first descendant matching selector.
func (n Node) SelectOne(selector string) (Node, bool) {
	found := n.sel.Find(selector).First()
	if found.Length() == 0 {
		return Node{}, false
	}
	return Node{sel: found}, true
}

// SelectAll returns the descendants matching selector in document order.
func (n Node) SelectAll(selector string) []Node {
	found := n.sel.Find(selector)
	nodes := make([]Node, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, Node{sel: s})
	})
	return nodes
}

// Require returns the first descendant matching selector or ErrNodeNotFound.
func (n Node) Require(selector string) (Node, error) {
	found, ok := n.SelectOne(selector)
	if !ok {
		return Node{}, &NotFoundError{Selector: selector}
	}
	return found, nil
}

// Text returns the combined text of the node and its descendants, untrimmed.
func (n Node) Text() string {
	if n.sel == nil {
		return ""
	}
	return n.sel.Text()
}

// TrimmedText returns Text with surrounding whitespace removed.
func (n Node) TrimmedText() string {
	return strings.TrimSpace(n.Text())
}

// Lines returns the non-blank lines of Text, each trimmed.
func (n Node) Lines() []string {
	var lines []string
	for _, line := range strings.Split(n.Text(), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Attr returns the value of the named attribute.
func (n Node) Attr(name string) (string, bool) {
	if n.sel == nil {
		return "", false
	}
	return n.sel.Attr(name)
}

// Classes returns the node's class tokens in source order.
func (n Node) Classes() []string {
	class, ok := n.Attr("class")
	if !ok {
		return nil
	}
	return strings.Fields(class)
}
