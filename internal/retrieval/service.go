// ABOUTME: Stateless per-request query logic: validate, embed, search, assemble
// ABOUTME: Clamps k to corpus size and applies the optional snippet-id filter
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/kssem/kiosk-retrieval/internal/models"
)

// Service answers free-text queries against the manager's loaded
// resources. It holds no per-request state and is safe for concurrent use.
type Service struct {
	manager    *Manager
	maxResults int
}

// NewService creates a query service. maxResults bounds the accepted k.
func NewService(manager *Manager, maxResults int) *Service {
	return &Service{manager: manager, maxResults: maxResults}
}

// Search embeds the trimmed query and returns up to k snippets in
// descending similarity order. idFilter, when non-nil, restricts results
// to those snippet ids; filtering may consume more raw hits than k but
// never over-returns. k greater than the corpus size is clamped.
func (s *Service) Search(ctx context.Context, query string, k int, idFilter map[string]struct{}) ([]models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if k <= 0 || k > s.maxResults {
		return nil, fmt.Errorf("%w: k must be 1-%d, got %d", ErrInvalidK, s.maxResults, k)
	}

	vectors, err := s.Ready()
	if err != nil {
		return nil, err
	}
	if vectors == 0 {
		return nil, nil
	}

	embedder, _ := s.manager.Embedder()
	idx, _ := s.manager.Index()
	store, _ := s.manager.Metadata()

	embedded, err := embedder.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, &EmbedError{Err: err}
	}
	queryVec := embedded[0]
	if err := models.NormalizeL2(queryVec); err != nil {
		return nil, &EmbedError{Err: err}
	}

	// Without a filter, min(k, corpus) raw hits suffice. A filter may
	// reject arbitrarily many hits, so widen the raw search to the whole
	// corpus and let the accept loop stop at k.
	rawK := min(k, idx.Len())
	if idFilter != nil {
		rawK = idx.Len()
	}

	hits, err := idx.Search(queryVec, rawK)
	if err != nil {
		return nil, fmt.Errorf("index search failed: %w", err)
	}

	results := make([]models.SearchResult, 0, min(k, len(hits)))
	for _, hit := range hits {
		// Defensive: the cardinality check makes this unreachable.
		if hit.Pos < 0 || hit.Pos >= vectors {
			continue
		}
		snippet, err := store.GetByPosition(hit.Pos)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve position %d: %w", hit.Pos, err)
		}
		if snippet == nil {
			continue
		}
		if idFilter != nil {
			if _, ok := idFilter[snippet.ID]; !ok {
				continue
			}
		}
		results = append(results, models.ResultFromSnippet(snippet, hit.Score))
		if len(results) >= k {
			break
		}
	}
	return results, nil
}

// Ready reports readiness by forcing resource initialization; it returns
// the served vector count for the health probe.
func (s *Service) Ready() (int, error) {
	return s.manager.Ready()
}
