// Package importer turns files on disk into draft title/body pairs. Plain
// text passes through, PDFs go through text extraction, and HTML-ish files
// are reduced to their text nodes.
package importer

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
)

// Draft is the imported content, ready for submission.
type Draft struct {
	Title string
	Body  string
}

// Read loads the file and extracts a draft from it. The title is the file
// name without its extension. Supported extensions: .txt, .md, .pdf,
// .html, .htm, .eml; anything else is an error.
func Read(path string) (Draft, error) {
	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(name))
	title := strings.TrimSuffix(name, filepath.Ext(name))

	var body string
	var err error
	switch ext {
	case ".txt", ".md":
		body, err = readText(path)
	case ".pdf":
		body, err = readPDF(path)
	case ".html", ".htm", ".eml":
		body, err = readHTML(path)
	default:
		return Draft{}, fmt.Errorf("unsupported file type %q", ext)
	}
	if err != nil {
		return Draft{}, err
	}

	return Draft{Title: title, Body: strings.TrimSpace(body)}, nil
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	return string(data), nil
}

func readPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	return buf.String(), nil
}

// readHTML reduces a document to its text nodes, skipping script and style
// subtrees, with single spaces between fragments.
func readHTML(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(parts, " "), nil
}
