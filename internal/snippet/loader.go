// ABOUTME: Loads the structured college record from its JSON document
// ABOUTME: A missing or malformed document is fatal to the build
package snippet

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kssem/kiosk-retrieval/internal/models"
)

// LoadCollegeFile reads and parses the college record document at path.
func LoadCollegeFile(path string) (*models.CollegeRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("missing college record %s: %w", path, err)
	}

	var record models.CollegeRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("malformed college record %s: %w", path, err)
	}
	return &record, nil
}
