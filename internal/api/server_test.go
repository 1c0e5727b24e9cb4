// ABOUTME: HTTP handler tests using httptest over real built artifacts
// ABOUTME: Verifies status codes for the client/server error split and JSON shapes
package api

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode"

	"github.com/kssem/kiosk-retrieval/internal/config"
	"github.com/kssem/kiosk-retrieval/internal/indexer"
	"github.com/kssem/kiosk-retrieval/internal/models"
	"github.com/kssem/kiosk-retrieval/internal/retrieval"
)

type hashEmbedder struct{ dim int }

func (e *hashEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, e.dim)
		tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, token := range tokens {
			h := fnv.New32a()
			_, _ = h.Write([]byte(token))
			v[int(h.Sum32())%e.dim]++
		}
		if len(tokens) == 0 {
			v[0] = 1
		}
		out[i] = v
	}
	return out, nil
}

func (e *hashEmbedder) Dimension() int { return e.dim }

func testServer(t *testing.T, build bool) *Server {
	t.Helper()
	cfg := &config.Config{
		DataDir:        t.TempDir(),
		VectorDim:      512,
		BatchSize:      4,
		IndexKind:      "flat",
		MaxResults:     50,
		DefaultResults: 2,
	}
	emb := &hashEmbedder{dim: cfg.VectorDim}

	if build {
		college := &models.CollegeRecord{
			Admissions: &models.AdmissionsSection{Process: "Apply through CET counselling."},
			Sports:     &models.SportsSection{Description: "Cricket ground and gym."},
			Hostel:     &models.HostelSection{Description: "Hostel rooms for boys and girls."},
		}
		if _, err := indexer.Build(context.Background(), college, emb, cfg, indexer.Options{}); err != nil {
			t.Fatalf("indexer.Build() error = %v", err)
		}
	}

	m := retrieval.NewManagerWithEmbedder(cfg, emb)
	t.Cleanup(func() { _ = m.Close() })
	return NewServer(retrieval.NewService(m, cfg.MaxResults), cfg)
}

func doRequest(t *testing.T, srv *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth_Ready(t *testing.T) {
	srv := testServer(t, true)
	rec := doRequest(t, srv, http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["ok"] != true {
		t.Error("health body missing ok=true")
	}
	if body["vec_count"] != float64(3) {
		t.Errorf("vec_count = %v, want 3", body["vec_count"])
	}
}

func TestHandleHealth_MissingArtifacts(t *testing.T) {
	srv := testServer(t, false)
	rec := doRequest(t, srv, http.MethodGet, "/health")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHandleSearch_ReturnsRankedResults(t *testing.T) {
	srv := testServer(t, true)
	rec := doRequest(t, srv, http.MethodGet, "/search?q=hostel+facilities&k=3")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	var body searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 3 || len(body.Results) != 3 {
		t.Fatalf("count = %d with %d results, want 3", body.Count, len(body.Results))
	}
	if body.Results[0].Section != "hostel" {
		t.Errorf("top result section = %q, want hostel", body.Results[0].Section)
	}
	for i := 1; i < len(body.Results); i++ {
		if body.Results[i].Score > body.Results[i-1].Score {
			t.Error("results not in descending score order")
		}
	}
}

func TestHandleSearch_DefaultK(t *testing.T) {
	srv := testServer(t, true)
	rec := doRequest(t, srv, http.MethodGet, "/search?q=hostel")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	// DefaultResults is 2 in the test config.
	if body.Count != 2 {
		t.Errorf("count = %d, want the configured default of 2", body.Count)
	}
}

func TestHandleSearch_ClientErrors(t *testing.T) {
	srv := testServer(t, true)
	tests := []struct {
		name   string
		target string
	}{
		{"missing query", "/search"},
		{"blank query", "/search?q=%20%20"},
		{"zero k", "/search?q=hostel&k=0"},
		{"negative k", "/search?q=hostel&k=-2"},
		{"k above maximum", "/search?q=hostel&k=51"},
		{"non-integer k", "/search?q=hostel&k=five"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodGet, tt.target)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400; body %s", rec.Code, rec.Body.String())
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Error == "" {
				t.Error("error body should carry a reason")
			}
		})
	}
}

func TestHandleSearch_IDFilter(t *testing.T) {
	srv := testServer(t, true)

	// Discover a real snippet id from an unfiltered search.
	rec := doRequest(t, srv, http.MethodGet, "/search?q=hostel&k=3")
	var unfiltered searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &unfiltered); err != nil {
		t.Fatal(err)
	}
	if len(unfiltered.Results) == 0 {
		t.Fatal("expected unfiltered results")
	}
	want := unfiltered.Results[len(unfiltered.Results)-1].ID

	rec = doRequest(t, srv, http.MethodGet, "/search?q=hostel&k=3&ids="+want)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var filtered searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &filtered); err != nil {
		t.Fatal(err)
	}
	if len(filtered.Results) != 1 || filtered.Results[0].ID != want {
		t.Errorf("filtered results = %+v, want only %s", filtered.Results, want)
	}
}

func TestHandleSearch_NotReady(t *testing.T) {
	srv := testServer(t, false)
	rec := doRequest(t, srv, http.MethodGet, "/search?q=hostel")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503; body %s", rec.Code, rec.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := testServer(t, true)
	for _, target := range []string{"/search?q=hostel", "/health"} {
		rec := doRequest(t, srv, http.MethodPost, target)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("POST %s status = %d, want 405", target, rec.Code)
		}
	}
}
