// ABOUTME: Typed schema for the structured college record tree
// ABOUTME: Optional sections are pointers; departments preserve document key order
package models

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// CollegeRecord is the root structured record the snippet builder consumes.
// Every section is optional at the schema level: a nil pointer means the
// section is absent and no snippet is emitted for it. Departments use an
// ordered map so snippet order follows the document's own key order.
type CollegeRecord struct {
	About       *AboutSection                                   `json:"about,omitempty"`
	Admissions  *AdmissionsSection                              `json:"admissions,omitempty"`
	Placements  *PlacementsSection                              `json:"placements,omitempty"`
	Sports      *SportsSection                                  `json:"sports,omitempty"`
	Cultural    *CulturalSection                                `json:"cultural,omitempty"`
	Hostel      *HostelSection                                  `json:"hostel,omitempty"`
	Leadership  *LeadershipSection                              `json:"leadership,omitempty"`
	Departments *orderedmap.OrderedMap[string, *Department]     `json:"departments,omitempty"`
}

// AboutSection describes the institution.
type AboutSection struct {
	Description string   `json:"description"`
	Mission     string   `json:"mission,omitempty"`
	Vision      string   `json:"vision,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

// AdmissionsSection describes the admission process.
type AdmissionsSection struct {
	Process     string   `json:"process"`
	Eligibility string   `json:"eligibility,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

// BatchStatistic is a per-batch placement statistic.
type BatchStatistic struct {
	Batch          string   `json:"batch"`
	TotalCompanies int      `json:"totalCompanies"`
	Examples       []string `json:"examples,omitempty"`
}

// PlacementsSection describes the placement cell.
type PlacementsSection struct {
	Description     string           `json:"description"`
	Recruiters      []string         `json:"recruiters,omitempty"`
	BatchStatistics []BatchStatistic `json:"batchStatistics,omitempty"`
	Keywords        []string         `json:"keywords,omitempty"`
}

// StaffMember is a named person with an optional designation and contact.
type StaffMember struct {
	Name           string   `json:"name"`
	Title          string   `json:"title,omitempty"`
	Designation    string   `json:"designation,omitempty"`
	Qualifications string   `json:"qualifications,omitempty"`
	Message        string   `json:"message,omitempty"`
	FocusAreas     []string `json:"focusAreas,omitempty"`
	Contact        *Contact `json:"contact,omitempty"`
}

// SportsSection describes sports and physical education.
type SportsSection struct {
	Description  string       `json:"description"`
	Director     *StaffMember `json:"director,omitempty"`
	Achievements []string     `json:"achievements,omitempty"`
	Facilities   []string     `json:"facilities,omitempty"`
	Keywords     []string     `json:"keywords,omitempty"`
}

// CulturalSection describes cultural activities.
type CulturalSection struct {
	Description string   `json:"description"`
	Events      []string `json:"events,omitempty"`
	Clubs       []string `json:"clubs,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

// HostelSection describes hostel facilities.
type HostelSection struct {
	Description string            `json:"description"`
	Supervisors map[string]string `json:"supervisors,omitempty"`
	Capacity    map[string]string `json:"capacity,omitempty"`
	Facilities  []string          `json:"facilities,omitempty"`
	FeesNote    string            `json:"feesNote,omitempty"`
	Keywords    []string          `json:"keywords,omitempty"`
}

// Officer is a managing committee office holder.
type Officer struct {
	Title string `json:"title"`
	Name  string `json:"name"`
}

// ManagingCommittee holds the committee roster.
type ManagingCommittee struct {
	Officers []Officer `json:"officers,omitempty"`
	Members  []string  `json:"members,omitempty"`
}

// LeadershipSection describes college leadership.
type LeadershipSection struct {
	Principal         *StaffMember       `json:"principal,omitempty"`
	ManagingCommittee *ManagingCommittee `json:"managingCommittee,omitempty"`
}

// FacultyMember is a department faculty entry.
type FacultyMember struct {
	Name        string `json:"name"`
	Designation string `json:"designation,omitempty"`
}

// DepartmentPlacements is placement information scoped to one department.
type DepartmentPlacements struct {
	Description    string   `json:"description"`
	HighestPackage string   `json:"highestPackage,omitempty"`
	AveragePackage string   `json:"averagePackage,omitempty"`
	PlacementRate  string   `json:"placementRate,omitempty"`
	TopRecruiters  []string `json:"topRecruiters,omitempty"`
}

// Department describes one academic department.
type Department struct {
	Name         string                `json:"name"`
	Description  string                `json:"description"`
	Head         *StaffMember          `json:"head,omitempty"`
	Faculty      []FacultyMember       `json:"faculty,omitempty"`
	Labs         []string              `json:"labs,omitempty"`
	Keywords     []string              `json:"keywords,omitempty"`
	Identifiers  []string              `json:"identifiers,omitempty"`
	Highlights   []string              `json:"highlights,omitempty"`
	Programs     []string              `json:"programs,omitempty"`
	Placements   *DepartmentPlacements `json:"placements,omitempty"`
	Achievements []string              `json:"achievements,omitempty"`
}
