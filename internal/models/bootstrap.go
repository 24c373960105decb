package models

// Tables the service needs before it can serve requests.
var RequiredTables = []string{"users", "tutorials", "examples"}

// TableStatus reports whether a required table exists.
type TableStatus struct {
	Name   string `json:"name"`
	Exists bool   `json:"exists"`
}

// SchemaStatus is returned by the db-status endpoint.
type SchemaStatus struct {
	Ready  bool          `json:"ready"`
	Tables []TableStatus `json:"tables"`
}

// SeedFailure records a baseline item that could not be inserted.
type SeedFailure struct {
	Slug   string `json:"slug"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// SeedReport summarises one seeding run. Skipped means the slug already existed.
type SeedReport struct {
	Created      []string      `json:"created"`
	Skipped      []string      `json:"skipped"`
	Failed       []SeedFailure `json:"failed"`
	CreatedCount int           `json:"created_count"`
	SkippedCount int           `json:"skipped_count"`
	FailedCount  int           `json:"failed_count"`
}

// NewSeedReport returns a report with non-nil lists so JSON renders [] not null.
func NewSeedReport() *SeedReport {
	return &SeedReport{Created: []string{}, Skipped: []string{}, Failed: []SeedFailure{}}
}

func (r *SeedReport) AddCreated(slug string) {
	r.Created = append(r.Created, slug)
	r.CreatedCount++
}

func (r *SeedReport) AddSkipped(slug string) {
	r.Skipped = append(r.Skipped, slug)
	r.SkippedCount++
}

func (r *SeedReport) AddFailed(kind, slug string, err error) {
	r.Failed = append(r.Failed, SeedFailure{Slug: slug, Kind: kind, Reason: err.Error()})
	r.FailedCount++
}
