package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/pverdier/veracite/internal/model"
)

// Ingester loads corpus documents into a Repository. HTML files are
// reduced to their visible text before storage; markdown and plain text
// are stored as-is.
type Ingester struct {
	repo Repository
}

// NewIngester creates an ingester writing to repo
func NewIngester(repo Repository) *Ingester {
	return &Ingester{repo: repo}
}

// IngestFile stores one document as a section titled after the file name.
// When date is non-empty the document is stored as a journal entry instead.
func (i *Ingester) IngestFile(ctx context.Context, path, date string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	content := string(raw)
	if strings.EqualFold(filepath.Ext(path), ".html") || strings.EqualFold(filepath.Ext(path), ".htm") {
		content, err = visibleText(content)
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if date != "" {
		return i.repo.AddJournalEntry(ctx, model.JournalEntry{Date: date, Content: content})
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return i.repo.AddSection(ctx, model.Section{Title: title, Content: content})
}

// IngestDir stores every regular file in dir (non-recursive) as a section.
// Returns the number of documents stored.
func (i *Ingester) IngestDir(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read dir %s: %w", dir, err)
	}

	count := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, err := i.IngestFile(ctx, filepath.Join(dir, entry.Name()), ""); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// visibleText extracts text nodes from an HTML document, skipping
// scripts and styles
func visibleText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.TrimSpace(buf.String()), nil
}
