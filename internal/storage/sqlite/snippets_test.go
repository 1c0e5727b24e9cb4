// ABOUTME: Tests for the snippet metadata store
// ABOUTME: Verifies positional order, lookups, section scans and null handling
package sqlite

import (
	"fmt"
	"testing"
	"time"

	"github.com/kssem/kiosk-retrieval/internal/models"
)

func testSnippets(n int) []models.Snippet {
	now := time.Now().UTC().Truncate(time.Second)
	snippets := make([]models.Snippet, n)
	for i := range snippets {
		section := "departments"
		if i == 0 {
			section = "about"
		}
		snippets[i] = models.Snippet{
			ID:           fmt.Sprintf("%s-20260101120000-%d", section, i+1),
			Section:      section,
			Title:        fmt.Sprintf("Snippet %d", i),
			ShortSummary: fmt.Sprintf("Summary %d", i),
			FullTextPath: fmt.Sprintf("data/blobs/%s-%d.txt", section, i+1),
			UpdatedAt:    now,
			SourcePath:   "data/college.json#" + section,
			BlobType:     models.BlobTypeText,
		}
	}
	return snippets
}

func TestSnippetStore_ReplaceAllAndPositionalLookup(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewSnippetStore(db)
	snippets := testSnippets(4)
	if err := store.ReplaceAll(snippets); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	count, err := store.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 4 {
		t.Errorf("Count() = %d, want 4", count)
	}

	// Record at position i corresponds to snippet i.
	for i, want := range snippets {
		got, err := store.GetByPosition(i)
		if err != nil {
			t.Fatalf("GetByPosition(%d) error = %v", i, err)
		}
		if got == nil {
			t.Fatalf("GetByPosition(%d) = nil", i)
		}
		if got.ID != want.ID {
			t.Errorf("GetByPosition(%d).ID = %q, want %q", i, got.ID, want.ID)
		}
		if !got.UpdatedAt.Equal(want.UpdatedAt) {
			t.Errorf("GetByPosition(%d).UpdatedAt = %v, want %v", i, got.UpdatedAt, want.UpdatedAt)
		}
	}

	if got, err := store.GetByPosition(99); err != nil || got != nil {
		t.Errorf("GetByPosition(99) = %v, %v; want nil, nil", got, err)
	}
}

func TestSnippetStore_ReplaceAllOverwrites(t *testing.T) {
	db, _ := OpenInMemory()
	defer func() { _ = db.Close() }()
	store := NewSnippetStore(db)

	if err := store.ReplaceAll(testSnippets(5)); err != nil {
		t.Fatal(err)
	}
	if err := store.ReplaceAll(testSnippets(2)); err != nil {
		t.Fatalf("second ReplaceAll() error = %v", err)
	}

	count, _ := store.Count()
	if count != 2 {
		t.Errorf("Count() after rebuild = %d, want 2", count)
	}
}

func TestSnippetStore_GetByID(t *testing.T) {
	db, _ := OpenInMemory()
	defer func() { _ = db.Close() }()
	store := NewSnippetStore(db)

	snippets := testSnippets(3)
	if err := store.ReplaceAll(snippets); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetByID(snippets[1].ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got == nil || got.Title != snippets[1].Title {
		t.Errorf("GetByID() = %+v, want title %q", got, snippets[1].Title)
	}

	if got, err := store.GetByID("nope"); err != nil || got != nil {
		t.Errorf("GetByID(nope) = %v, %v; want nil, nil", got, err)
	}
}

func TestSnippetStore_DuplicateIDRejected(t *testing.T) {
	db, _ := OpenInMemory()
	defer func() { _ = db.Close() }()
	store := NewSnippetStore(db)

	snippets := testSnippets(2)
	snippets[1].ID = snippets[0].ID
	if err := store.ReplaceAll(snippets); err == nil {
		t.Error("ReplaceAll() with duplicate ids should fail")
	}
}

func TestSnippetStore_ListBySection(t *testing.T) {
	db, _ := OpenInMemory()
	defer func() { _ = db.Close() }()
	store := NewSnippetStore(db)

	if err := store.ReplaceAll(testSnippets(4)); err != nil {
		t.Fatal(err)
	}

	depts, err := store.ListBySection("departments")
	if err != nil {
		t.Fatalf("ListBySection() error = %v", err)
	}
	if len(depts) != 3 {
		t.Fatalf("ListBySection(departments) = %d rows, want 3", len(depts))
	}
	for i := 1; i < len(depts); i++ {
		if depts[i-1].ID >= depts[i].ID {
			// ids carry the sequence suffix, so position order implies id order here
			t.Errorf("section scan out of position order: %q before %q", depts[i-1].ID, depts[i].ID)
		}
	}

	none, err := store.ListBySection("sports")
	if err != nil {
		t.Fatalf("ListBySection(sports) error = %v", err)
	}
	if len(none) != 0 {
		t.Errorf("ListBySection(sports) = %d rows, want 0", len(none))
	}
}

func TestSnippetStore_OptionalFieldsRoundTrip(t *testing.T) {
	db, _ := OpenInMemory()
	defer func() { _ = db.Close() }()
	store := NewSnippetStore(db)

	rich := testSnippets(1)[0]
	rich.Aliases = []string{"CSE", "CS"}
	rich.Tags = []string{"engineering"}
	rich.Contact = &models.Contact{Email: "cse@kssem.edu.in", Phone: "080-1234"}
	rich.Coords = &models.Coords{Lat: 12.91, Lng: 77.48}
	rich.Metadata = map[string]any{"labs": []any{"AI Lab"}}

	bare := testSnippets(2)[1]

	if err := store.ReplaceAll([]models.Snippet{rich, bare}); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetByPosition(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Aliases) != 2 || got.Aliases[0] != "CSE" {
		t.Errorf("Aliases = %v", got.Aliases)
	}
	if got.Contact == nil || got.Contact.Email != "cse@kssem.edu.in" {
		t.Errorf("Contact = %+v", got.Contact)
	}
	if got.Coords == nil || got.Coords.Lat != 12.91 {
		t.Errorf("Coords = %+v", got.Coords)
	}
	if got.Metadata["labs"] == nil {
		t.Errorf("Metadata = %v", got.Metadata)
	}

	plain, err := store.GetByPosition(1)
	if err != nil {
		t.Fatal(err)
	}
	if plain.Aliases != nil || plain.Tags != nil || plain.Contact != nil || plain.Coords != nil || plain.Metadata != nil {
		t.Errorf("absent optional fields should stay nil, got %+v", plain)
	}
}
