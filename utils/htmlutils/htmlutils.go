// Copyright 2026 The Vanpaikka Authors
// SPDX-License-Identifier: Apache-2.0

// Package htmlutils provides utility functions for working with HTML.
package htmlutils

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// Node2string collects the trimmed text content of a node tree into sb,
// separating fragments with single spaces.
func Node2string(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		tmp := strings.TrimSpace(n.Data)
		if len(tmp) > 0 {
			if sb.Len() != 0 {
				sb.WriteByte(' ')
			}

			sb.WriteString(tmp)
		}

		return
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		Node2string(child, sb)
	}
}

// Text returns the flattened text content of a node.
func Text(n *html.Node) string {
	var sb strings.Builder

	Node2string(n, &sb)

	return sb.String()
}

// FindAll returns the nodes in document order for which the predicate holds.
// Children of a matching node are not visited, so nested matches collapse
// into their outermost element.
func FindAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var found []*html.Node

	var visit func(*html.Node)
	visit = func(node *html.Node) {
		if node.Type == html.ElementNode && match(node) {
			found = append(found, node)

			return
		}

		for child := node.FirstChild; child != nil; child = child.NextSibling {
			visit(child)
		}
	}

	visit(n)

	return found
}

// ByTag matches element nodes with any of the given tag names.
func ByTag(tags ...string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		for _, tag := range tags {
			if n.Data == tag {
				return true
			}
		}

		return false
	}
}

// TableRows returns the cell texts of each row of a table node, headers
// included.
func TableRows(table *html.Node) [][]string {
	var rows [][]string

	for _, tr := range FindAll(table, ByTag("tr")) {
		var cells []string

		for _, cell := range FindAll(tr, ByTag("td", "th")) {
			cells = append(cells, Text(cell))
		}

		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	}

	return rows
}

// Validates that response seems to be an HTML response.
func hasHTMLContentType(media string) bool {
	const expectedMedia = "text/html"

	return strings.EqualFold(media[:min(len(media), len(expectedMedia))], expectedMedia)
}

// ParseResponse parses an HTTP response body as HTML, honoring the declared
// charset. Municipal pages are not always UTF-8.
func ParseResponse(resp *http.Response) (*html.Node, error) {
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !hasHTMLContentType(contentType) {
		return nil, fmt.Errorf("expected HTML response, got %q", contentType)
	}

	reader, err := charset.NewReader(resp.Body, contentType)
	if err != nil {
		return nil, fmt.Errorf("detecting charset: %w", err)
	}

	doc, err := html.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	return doc, nil
}

// Parse parses HTML from a reader. Used by tests and by callers that already
// hold a decoded body.
func Parse(r io.Reader) (*html.Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	return doc, nil
}
