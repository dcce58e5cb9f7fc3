package dashboard

import (
	"time"

	"github.com/c360/semdash/sparql"
	"github.com/c360/semdash/view"
)

// MapMarker is a map marker with its severity tier.
type MapMarker struct {
	view.Marker
	Tier view.Tier `json:"tier"`
}

// Presentation is the rendered state of one screen.
type Presentation struct {
	Screen     string              `json:"screen"`
	Title      string              `json:"title"`
	Kind       string              `json:"kind"`
	State      sparql.State        `json:"state"`
	Error      string              `json:"error,omitempty"`
	StatusCode int                 `json:"status_code,omitempty"`
	Columns    []string            `json:"columns,omitempty"`
	Rows       []sparql.DisplayRow `json:"rows"`
	Markers    []MapMarker         `json:"markers,omitempty"`
	Series     []view.Point        `json:"series,omitempty"`
	// Dropped counts result rows left off the map. Table and series screens
	// keep every row.
	Dropped int `json:"dropped"`
	// FieldErrors counts every value that could not be bound, including
	// undecodable terms, defaulted weights and flagged series values.
	FieldErrors int       `json:"field_errors"`
	Fallback    bool      `json:"fallback,omitempty"`
	QueryID     string    `json:"query_id,omitempty"`
	RenderedAt  time.Time `json:"rendered_at"`
}

// Failed reports whether the presentation is the result of a failed query.
func (p Presentation) Failed() bool {
	return p.State == sparql.StateError
}

// Summary describes a screen without rendering it.
type Summary struct {
	Name       string       `json:"name"`
	Title      string       `json:"title"`
	Kind       string       `json:"kind"`
	State      sparql.State `json:"state"`
	QueryID    string       `json:"query_id,omitempty"`
	RenderedAt *time.Time   `json:"rendered_at,omitempty"`
}
