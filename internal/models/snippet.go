// ABOUTME: Snippet is the unit of retrieval served by the query service
// ABOUTME: Defines Snippet, Contact, Coords and the public SearchResult
package models

import (
	"fmt"
	"strings"
	"time"
)

// BlobTypeText is the default blob type for snippet full-text files.
const BlobTypeText = "text"

// Contact holds reachability details for a person or office.
type Contact struct {
	Phone  string `json:"phone,omitempty"`
	Mobile string `json:"mobile,omitempty"`
	Email  string `json:"email,omitempty"`
	Office string `json:"office,omitempty"`
}

// Coords is a geographic point, used for map-linked snippets.
type Coords struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Snippet is a retrievable unit of content. The full text lives in a blob
// file referenced by FullTextPath; the in-memory record only carries the
// derived ShortSummary.
type Snippet struct {
	ID           string         `json:"id"`
	Section      string         `json:"section"`
	Title        string         `json:"title"`
	ShortSummary string         `json:"shortSummary,omitempty"`
	FullTextPath string         `json:"fullTextPath"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	SourcePath   string         `json:"sourcePath"`
	Aliases      []string       `json:"aliases,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	Contact      *Contact       `json:"contact,omitempty"`
	Coords       *Coords        `json:"coords,omitempty"`
	BlobType     string         `json:"blobType,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// Validate checks the required snippet fields.
func (s *Snippet) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("snippet missing id")
	}
	if s.Section == "" {
		return fmt.Errorf("snippet %s missing section", s.ID)
	}
	if s.FullTextPath == "" {
		return fmt.Errorf("snippet %s missing fullTextPath", s.ID)
	}
	return nil
}

// EmbeddingText returns the text that is embedded for this snippet:
// title, short summary, aliases and tags, newline-joined with empty
// parts dropped. Query and corpus embeddings must use the same shape.
func (s *Snippet) EmbeddingText() string {
	parts := []string{
		s.Title,
		s.ShortSummary,
		strings.Join(s.Aliases, ", "),
		strings.Join(s.Tags, ", "),
	}
	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "\n")
}

// SearchResult is the public result record returned by the query service.
// Optional fields absent on the stored snippet are omitted, not defaulted.
type SearchResult struct {
	ID           string         `json:"id"`
	Score        float32        `json:"score"`
	Section      string         `json:"section"`
	Title        string         `json:"title,omitempty"`
	ShortSummary string         `json:"shortSummary,omitempty"`
	FullTextPath string         `json:"fullTextPath"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	SourcePath   string         `json:"sourcePath"`
	Aliases      []string       `json:"aliases,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	Contact      *Contact       `json:"contact,omitempty"`
	Coords       *Coords        `json:"coords,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// ResultFromSnippet assembles a SearchResult from a stored snippet and a
// similarity score.
func ResultFromSnippet(s *Snippet, score float32) SearchResult {
	return SearchResult{
		ID:           s.ID,
		Score:        score,
		Section:      s.Section,
		Title:        s.Title,
		ShortSummary: s.ShortSummary,
		FullTextPath: s.FullTextPath,
		UpdatedAt:    s.UpdatedAt,
		SourcePath:   s.SourcePath,
		Aliases:      s.Aliases,
		Tags:         s.Tags,
		Contact:      s.Contact,
		Coords:       s.Coords,
		Metadata:     s.Metadata,
	}
}
