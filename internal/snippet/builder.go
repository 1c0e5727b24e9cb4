// ABOUTME: Builds retrieval snippets from the structured college record tree
// ABOUTME: Writes one full-text blob per snippet and returns lightweight records
package snippet

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kssem/kiosk-retrieval/internal/models"
)

// summaryWords caps the derived short summary length.
const summaryWords = 60

// Builder turns a CollegeRecord into an ordered sequence of snippets.
// IDs are generated from a single run timestamp plus a monotonic sequence
// number, so they are unique within one build but not across builds.
// A Builder is single-use and not safe for concurrent use.
type Builder struct {
	blobsDir string
	source   string
	runStamp string
	seq      int
}

// NewBuilder creates a builder writing blobs under blobsDir. source is the
// provenance prefix recorded in each snippet's sourcePath, e.g.
// "data/college.json".
func NewBuilder(blobsDir, source string) *Builder {
	return &Builder{
		blobsDir: blobsDir,
		source:   source,
		runStamp: time.Now().UTC().Format("20060102150405"),
	}
}

// Build extracts snippets from the record in a deterministic section order.
// Absent optional sections are skipped. A missing record is fatal to the
// build; there is no partial output.
func (b *Builder) Build(college *models.CollegeRecord) ([]models.Snippet, error) {
	if college == nil {
		return nil, fmt.Errorf("missing college record")
	}
	if err := os.MkdirAll(b.blobsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blobs directory: %w", err)
	}

	var snippets []models.Snippet
	add := func(s models.Snippet, err error) error {
		if err != nil {
			return err
		}
		snippets = append(snippets, s)
		return nil
	}

	if about := college.About; about != nil {
		text := fmt.Sprintf("%s\n\nMission: %s\nVision: %s", about.Description, about.Mission, about.Vision)
		s, err := b.create("about", "About KSSEM", text, "about", withAliases(about.Keywords))
		if err := add(s, err); err != nil {
			return nil, err
		}
	}

	if adm := college.Admissions; adm != nil {
		text := fmt.Sprintf("%s\n\nEligibility:\n%s", adm.Process, adm.Eligibility)
		s, err := b.create("admissions", "Admissions Overview", text, "admissions", withAliases(adm.Keywords))
		if err := add(s, err); err != nil {
			return nil, err
		}
	}

	if pl := college.Placements; pl != nil {
		text := fmt.Sprintf("%s\n\nTop Recruiters: %s", pl.Description, strings.Join(pl.Recruiters, ", "))
		opts := []snippetOption{withAliases(pl.Keywords)}
		if len(pl.BatchStatistics) > 0 {
			opts = append(opts, withMetadata(map[string]any{"batchStatistics": pl.BatchStatistics}))
		}
		s, err := b.create("placements", "Placement Cell Snapshot", text, "placements", opts...)
		if err := add(s, err); err != nil {
			return nil, err
		}
	}

	if sp := college.Sports; sp != nil {
		text := sp.Description +
			"\n\nFacilities:\n" + strings.Join(sp.Facilities, "\n") +
			"\n\nAchievements:\n" + strings.Join(sp.Achievements, "\n")
		opts := []snippetOption{withTags(sp.Keywords)}
		if sp.Director != nil && sp.Director.Contact != nil {
			opts = append(opts, withContact(sp.Director.Contact))
		}
		s, err := b.create("sports", "Sports & Physical Education", text, "sports", opts...)
		if err := add(s, err); err != nil {
			return nil, err
		}
	}

	if cu := college.Cultural; cu != nil {
		text := fmt.Sprintf("%s\n\nEvents: %s\nClubs: %s",
			cu.Description, strings.Join(cu.Events, ", "), strings.Join(cu.Clubs, ", "))
		s, err := b.create("cultural", "Cultural Activities", text, "cultural", withTags(cu.Keywords))
		if err := add(s, err); err != nil {
			return nil, err
		}
	}

	if ho := college.Hostel; ho != nil {
		text := ho.Description + "\n\nFacilities:\n" + strings.Join(ho.Facilities, "\n")
		opts := []snippetOption{}
		if len(ho.Capacity) > 0 {
			opts = append(opts, withMetadata(map[string]any{"capacity": ho.Capacity}))
		}
		s, err := b.create("hostel", "Hostel Facilities", text, "hostel", opts...)
		if err := add(s, err); err != nil {
			return nil, err
		}
	}

	if lead := college.Leadership; lead != nil {
		if p := lead.Principal; p != nil {
			text := fmt.Sprintf("%s (%s)\n\n%s\n\nFocus Areas: %s",
				p.Name, p.Title, p.Message, strings.Join(p.FocusAreas, ", "))
			opts := []snippetOption{}
			if p.Contact != nil {
				opts = append(opts, withContact(p.Contact))
			}
			s, err := b.create("leadership", "Principal Message", text, "leadership.principal", opts...)
			if err := add(s, err); err != nil {
				return nil, err
			}
		}
		if mc := lead.ManagingCommittee; mc != nil {
			var officers []string
			for _, o := range mc.Officers {
				officers = append(officers, fmt.Sprintf("%s: %s", o.Title, o.Name))
			}
			text := "Officers:\n" + strings.Join(officers, "\n") +
				"\n\nMembers:\n" + strings.Join(mc.Members, "\n")
			s, err := b.create("leadership", "Managing Committee", text, "leadership.managingCommittee")
			if err := add(s, err); err != nil {
				return nil, err
			}
		}
	}

	if college.Departments != nil {
		for pair := college.Departments.Oldest(); pair != nil; pair = pair.Next() {
			key, dept := pair.Key, pair.Value
			if dept == nil {
				continue
			}
			s, err := b.departmentSnippet(key, dept)
			if err := add(s, err); err != nil {
				return nil, err
			}
		}
	}

	return snippets, nil
}

func (b *Builder) departmentSnippet(key string, dept *models.Department) (models.Snippet, error) {
	parts := []string{dept.Description}
	if h := dept.Head; h != nil {
		parts = append(parts, fmt.Sprintf("Head: %s (%s) %s", h.Name, h.Designation, h.Message))
	}
	if len(dept.Faculty) > 0 {
		names := make([]string, len(dept.Faculty))
		for i, f := range dept.Faculty {
			names[i] = f.Name
		}
		parts = append(parts, "Faculty: "+strings.Join(names, ", "))
	}
	if len(dept.Highlights) > 0 {
		parts = append(parts, "Highlights: "+strings.Join(dept.Highlights, "; "))
	}
	if len(dept.Achievements) > 0 {
		parts = append(parts, "Achievements: "+strings.Join(dept.Achievements, "; "))
	}
	if dept.Placements != nil && dept.Placements.Description != "" {
		parts = append(parts, "Placements: "+dept.Placements.Description)
	}

	opts := []snippetOption{withAliases(dept.Identifiers), withTags(dept.Keywords)}
	meta := map[string]any{}
	if len(dept.Labs) > 0 {
		meta["labs"] = dept.Labs
	}
	if len(dept.Programs) > 0 {
		meta["programs"] = dept.Programs
	}
	if len(meta) > 0 {
		opts = append(opts, withMetadata(meta))
	}

	return b.create("departments", dept.Name, strings.Join(parts, "\n\n"), "departments."+key, opts...)
}

type snippetOption func(*models.Snippet)

func withAliases(aliases []string) snippetOption {
	return func(s *models.Snippet) {
		if len(aliases) > 0 {
			s.Aliases = aliases
		}
	}
}

func withTags(tags []string) snippetOption {
	return func(s *models.Snippet) {
		if len(tags) > 0 {
			s.Tags = tags
		}
	}
}

func withContact(c *models.Contact) snippetOption {
	return func(s *models.Snippet) { s.Contact = c }
}

func withMetadata(m map[string]any) snippetOption {
	return func(s *models.Snippet) { s.Metadata = m }
}

// create allocates an id, writes the full-text blob and returns the
// lightweight snippet record. The full text is not retained in memory.
func (b *Builder) create(section, title, text, sourceSuffix string, opts ...snippetOption) (models.Snippet, error) {
	id := b.nextID(section)
	blobPath, err := b.writeBlob(id, text)
	if err != nil {
		return models.Snippet{}, err
	}

	s := models.Snippet{
		ID:           id,
		Section:      section,
		Title:        title,
		ShortSummary: summarize(text, summaryWords),
		FullTextPath: blobPath,
		UpdatedAt:    time.Now().UTC(),
		SourcePath:   fmt.Sprintf("%s#%s", b.source, sourceSuffix),
		BlobType:     models.BlobTypeText,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s, nil
}

func (b *Builder) nextID(section string) string {
	b.seq++
	return fmt.Sprintf("%s-%s-%d", section, b.runStamp, b.seq)
}

func (b *Builder) writeBlob(id, text string) (string, error) {
	path := filepath.Join(b.blobsDir, id+".txt")
	if err := os.WriteFile(path, []byte(strings.TrimRight(text, "\n")+"\n"), 0644); err != nil {
		return "", fmt.Errorf("failed to write blob for %s: %w", id, err)
	}
	return path, nil
}

// summarize derives a plain-text preview of at most maxWords words from the
// body, collapsing whitespace. Truncation is marked with an ellipsis.
func summarize(text string, maxWords int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	if len(words) <= maxWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:maxWords], " ") + "…"
}
