package model

import "strings"

// Section is a corpus passage from the document repository
type Section struct {
	ID             string `json:"id,omitempty"`
	Title          string `json:"title"`
	Content        string `json:"content,omitempty"`
	ContentPreview string `json:"content_preview,omitempty"`
}

// Body returns the usable text of the section: the full content when
// available, the preview otherwise.
func (s Section) Body() string {
	if s.Content != "" {
		return s.Content
	}
	return s.ContentPreview
}

// JournalEntry is a dated corpus passage from the journal repository
type JournalEntry struct {
	ID      string `json:"id,omitempty"`
	Date    string `json:"date"`
	Content string `json:"content"`
}

// KnowledgeContext is the set of corpus passages used to corroborate
// suspect segments
type KnowledgeContext struct {
	Sections       []Section      `json:"sections"`
	JournalEntries []JournalEntry `json:"journal_entries"`

	// RetrievalDisabled marks a context from a caller that declined store
	// retrieval entirely: verification uses only the passages listed here,
	// never the per-segment store fallback.
	RetrievalDisabled bool `json:"-"`
}

// Serialize concatenates all passage bodies into one searchable corpus
// string. The result is also what the cache fingerprint is derived from,
// so passage order matters for cache identity.
func (k *KnowledgeContext) Serialize() string {
	if k == nil {
		return ""
	}
	var b strings.Builder
	for _, s := range k.Sections {
		if body := s.Body(); body != "" {
			b.WriteString(body)
			b.WriteString("\n\n")
		}
	}
	for _, e := range k.JournalEntries {
		if e.Content != "" {
			b.WriteString(e.Content)
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

// IsEmpty reports whether the context carries no passages at all
func (k *KnowledgeContext) IsEmpty() bool {
	return k == nil || (len(k.Sections) == 0 && len(k.JournalEntries) == 0)
}
