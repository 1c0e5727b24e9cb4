// ABOUTME: Shared test fixtures: a deterministic bag-of-words embedder and
// ABOUTME: a helper that builds real artifacts into a temp data directory
package retrieval

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"testing"
	"unicode"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/kssem/kiosk-retrieval/internal/config"
	"github.com/kssem/kiosk-retrieval/internal/indexer"
	"github.com/kssem/kiosk-retrieval/internal/models"
)

// wordEmbedder hashes lowercase word tokens into vector slots, so texts
// sharing words land close in inner-product space. Deterministic, which
// makes ranking assertions stable.
type wordEmbedder struct {
	dim   int
	calls int
	fail  bool
}

func (e *wordEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.fail {
		return nil, errors.New("model unavailable")
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, e.dim)
		for _, token := range tokenize(text) {
			h := fnv.New32a()
			_, _ = h.Write([]byte(token))
			v[int(h.Sum32())%e.dim]++
		}
		if models.Norm(v) == 0 {
			v[0] = 1
		}
		out[i] = v
	}
	return out, nil
}

func (e *wordEmbedder) Dimension() int { return e.dim }

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// testCollege yields exactly three snippets: admissions, sports, hostel.
func testCollege() *models.CollegeRecord {
	return &models.CollegeRecord{
		Admissions: &models.AdmissionsSection{
			Process:     "Apply through CET counselling.",
			Eligibility: "PUC with PCM subjects.",
		},
		Sports: &models.SportsSection{
			Description: "Cricket ground and gym for students.",
			Facilities:  []string{"Cricket ground"},
		},
		Hostel: &models.HostelSection{
			Description: "Hostel rooms for boys and girls.",
			Facilities:  []string{"WiFi", "Mess"},
		},
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataDir:        t.TempDir(),
		VectorDim:      1024,
		BatchSize:      2,
		IndexKind:      "flat",
		MaxResults:     50,
		DefaultResults: 5,
	}
}

// buildArtifacts runs a real build into cfg.DataDir with the given embedder.
func buildArtifacts(t *testing.T, cfg *config.Config, emb *wordEmbedder, college *models.CollegeRecord) *indexer.Artifacts {
	t.Helper()
	artifacts, err := indexer.Build(context.Background(), college, emb, cfg, indexer.Options{})
	if err != nil {
		t.Fatalf("indexer.Build() error = %v", err)
	}
	return artifacts
}

// departments helper for larger corpora.
func collegeWithDepartments(names ...string) *models.CollegeRecord {
	depts := orderedmap.New[string, *models.Department]()
	for _, name := range names {
		key := strings.ToLower(strings.ReplaceAll(name, " ", "-"))
		depts.Set(key, &models.Department{Name: name, Description: name + " department."})
	}
	c := testCollege()
	c.Departments = depts
	return c
}
