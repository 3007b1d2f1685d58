package domain

import (
	"encoding/json"
	"time"
)

// CurrentSchemaVersion is stamped on every draft record written by this build.
// Records without a version predate versioning and share the version 1 shape.
const CurrentSchemaVersion = 1

// WizardKey names the single draft slot of the structured project wizard.
const WizardKey = "project-creation"

// DraftRecord is the persisted snapshot of an in-progress project wizard.
type DraftRecord struct {
	Version   int          `json:"schemaVersion"`
	FormData  ProjectDraft `json:"formData"`
	Timestamp time.Time    `json:"timestamp"`
}

func (r *DraftRecord) SchemaVersion() int { return r.Version }

func (r *DraftRecord) StampSchema(v int) { r.Version = v }

// UnmarshalJSON decodes over the default draft so fields missing from older
// records keep their defaults.
func (r *DraftRecord) UnmarshalJSON(b []byte) error {
	type plain DraftRecord
	p := plain{FormData: NewProjectDraft()}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	p.FormData = p.FormData.withEmptyLists()
	*r = DraftRecord(p)
	return nil
}

// HasAnalysis reports whether the record carries a completed classification,
// in which case a restored session opens on the analysis results.
func (r *DraftRecord) HasAnalysis() bool {
	return r != nil && r.FormData.AIClassification != nil
}
