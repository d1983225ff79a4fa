package domain

import "time"

// CRSDeclaration names the coordinate systems a job's data is expressed in.
type CRSDeclaration struct {
	Horizontal string `json:"horizontal"` // "EPSG:2229", empty if undeclared
	Vertical   string `json:"vertical,omitempty"`
	GeoidModel string `json:"geoid_model,omitempty"`
}

// Empty reports whether nothing has been declared.
func (d CRSDeclaration) Empty() bool {
	return d.Horizontal == "" && d.Vertical == "" && d.GeoidModel == ""
}

// Source identifies the evidence a location was derived from.
type Source string

const (
	SourceWorldFile       Source = "world_file"
	SourceProjFile        Source = "proj_file"
	SourceSourcesManifest Source = "sources_manifest"
	SourcePotreeBounds    Source = "potree_bounds"
)

// Confidence grades how directly a location was derived.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Rank orders confidences; higher is better. Unknown grades rank 0.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	}
	return 0
}

// Method records how raw coordinates became a geographic point.
type Method string

const (
	MethodDirect       Method = "direct"       // already geographic
	MethodRemote       Method = "remote"       // external projection service
	MethodInterpolated Method = "interpolated" // nearest-anchor approximation
	MethodPassthrough  Method = "passthrough"  // raw numbers, unconverted
)

// ResolvedLocation is the outcome of one resolution attempt. It is never
// mutated; a later attempt produces a new value.
type ResolvedLocation struct {
	Latitude   float64         `json:"latitude"`
	Longitude  float64         `json:"longitude"`
	Source     Source          `json:"source"`
	Confidence Confidence      `json:"confidence"`
	Method     Method          `json:"method"`
	Raw        *ProjectedPoint `json:"raw,omitempty"`
}

// Point returns the location as a GeoPoint.
func (l ResolvedLocation) Point() GeoPoint {
	return GeoPoint{Lat: l.Latitude, Lon: l.Longitude}
}

// Attempt is what a single evidence source contributed.
type Attempt struct {
	Location *ResolvedLocation
	CRS      CRSDeclaration
	Detail   string
}

// AttemptOutcome summarizes an attempt for diagnostics.
type AttemptOutcome string

const (
	OutcomeAbsent     AttemptOutcome = "absent"
	OutcomeMalformed  AttemptOutcome = "malformed"
	OutcomeNoLocation AttemptOutcome = "no_location"
	OutcomeResolved   AttemptOutcome = "resolved"
	OutcomeLow        AttemptOutcome = "low"
	OutcomeSkipped    AttemptOutcome = "skipped"
)

// AttemptLog records one step of the resolution chain.
type AttemptLog struct {
	Source  Source         `json:"source"`
	Outcome AttemptOutcome `json:"outcome"`
	Detail  string         `json:"detail,omitempty"`
}

// Resolution is the final answer for a job. Location and CRS are nil when
// nothing could be resolved; that is a valid, displayable state.
type Resolution struct {
	ID          string            `json:"id"`
	JobID       string            `json:"job_id"`
	DisplayName string            `json:"display_name"`
	Location    *ResolvedLocation `json:"location,omitempty"`
	CRS         *CRSDeclaration   `json:"crs,omitempty"`
	Confidence  Confidence        `json:"confidence,omitempty"`
	Attempts    []AttemptLog      `json:"attempts"`
	ResolvedAt  time.Time         `json:"resolved_at"`
}

// Resolved reports whether the resolution carries a location.
func (r Resolution) Resolved() bool {
	return r.Location != nil
}
