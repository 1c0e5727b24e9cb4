// ABOUTME: Process-wide resource manager for the embedder, index and metadata
// ABOUTME: Each handle initializes at most once; the cardinality check gates readiness
package retrieval

import (
	"fmt"
	"sync"

	"github.com/kssem/kiosk-retrieval/internal/config"
	"github.com/kssem/kiosk-retrieval/internal/index"
	"github.com/kssem/kiosk-retrieval/internal/llm"
	"github.com/kssem/kiosk-retrieval/internal/storage/sqlite"
)

// Manager owns the three lazily-initialized handles the query service
// needs: the embedding model, the loaded vector index and the metadata
// store. Each initializes exactly once (concurrent first-use is
// serialized per handle); reads after a successful init are lock-free.
// Artifacts are loaded read-only; replacing them requires a restart.
type Manager struct {
	cfg         *config.Config
	newEmbedder func() (llm.Embedder, error)

	embedOnce sync.Once
	embedder  llm.Embedder
	embedErr  error

	indexOnce sync.Once
	idx       index.Index
	indexErr  error

	storeOnce sync.Once
	db        *sqlite.DB
	store     *sqlite.SnippetStore
	storeErr  error

	checkOnce sync.Once
	checkErr  error
}

// NewManager creates a manager constructing its embedder from cfg.
func NewManager(cfg *config.Config) *Manager {
	return &Manager{
		cfg: cfg,
		newEmbedder: func() (llm.Embedder, error) {
			clientCfg := llm.DefaultConfig(cfg.OpenAIKey)
			clientCfg.Model = cfg.EmbeddingModel
			clientCfg.Dimension = cfg.VectorDim
			clientCfg.MaxRetries = cfg.MaxRetries
			clientCfg.RetryDelay = cfg.RetryDelay
			clientCfg.Timeout = cfg.Timeout
			return llm.NewOpenAIClient(clientCfg)
		},
	}
}

// NewManagerWithEmbedder creates a manager with an injected embedder,
// used by the CLI search path and tests.
func NewManagerWithEmbedder(cfg *config.Config, embedder llm.Embedder) *Manager {
	return &Manager{
		cfg:         cfg,
		newEmbedder: func() (llm.Embedder, error) { return embedder, nil },
	}
}

// Embedder returns the embedding-model handle, constructing it on first use.
func (m *Manager) Embedder() (llm.Embedder, error) {
	m.embedOnce.Do(func() {
		m.embedder, m.embedErr = m.newEmbedder()
	})
	return m.embedder, m.embedErr
}

// Index returns the loaded vector index, loading the artifact on first use.
// A missing artifact is a fatal configuration error, not a degraded mode.
func (m *Manager) Index() (index.Index, error) {
	m.indexOnce.Do(func() {
		m.idx, m.indexErr = index.Load(m.cfg.IndexPath())
	})
	return m.idx, m.indexErr
}

// Metadata returns the snippet metadata store, opening it on first use.
func (m *Manager) Metadata() (*sqlite.SnippetStore, error) {
	m.storeOnce.Do(func() {
		m.db, m.storeErr = sqlite.OpenExisting(m.cfg.MetadataPath())
		if m.storeErr == nil {
			m.store = sqlite.NewSnippetStore(m.db)
		}
	})
	return m.store, m.storeErr
}

// Ready forces initialization of all three handles and verifies the
// index/metadata cardinality invariant. It returns the vector count.
// A mismatch blocks service start rather than serving inconsistent
// position mappings.
func (m *Manager) Ready() (int, error) {
	if _, err := m.Embedder(); err != nil {
		return 0, fmt.Errorf("embedding model unavailable: %w", err)
	}
	idx, err := m.Index()
	if err != nil {
		return 0, err
	}
	store, err := m.Metadata()
	if err != nil {
		return 0, err
	}

	m.checkOnce.Do(func() {
		count, err := store.Count()
		if err != nil {
			m.checkErr = fmt.Errorf("failed to count metadata records: %w", err)
			return
		}
		if idx.Len() != count {
			m.checkErr = fmt.Errorf("index vector count %d does not match metadata entries %d", idx.Len(), count)
		}
	})
	if m.checkErr != nil {
		return 0, m.checkErr
	}
	return idx.Len(), nil
}

// Close releases the metadata store connection if it was opened.
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
