// Package dom wraps goquery documents in the small query surface the page
// parsers rely on.
//
// A Document knows the URL it was fetched from so relative links found on the
// page can be resolved to absolute PageRefs. Parsers distinguish optional
// regions (SelectOne/SelectAll) from required ones (Require), which fail with
// ErrNodeNotFound.
package dom
