package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/c360/semdash/config"
	"github.com/c360/semdash/errors"
	"github.com/c360/semdash/health"
	"github.com/c360/semdash/metric"
	"github.com/c360/semdash/sparql"
	"github.com/c360/semdash/view"
)

// Querier runs a SPARQL query. *sparql.Executor satisfies it.
type Querier interface {
	Execute(ctx context.Context, query string) (*sparql.ResultSet, error)
}

// Screen is one dashboard view. It owns its query lifecycle and keeps only
// its last presentation.
type Screen struct {
	name       string
	cfg        config.ScreenConfig
	query      string
	querier    Querier
	classifier *view.Classifier
	fallback   *sparql.ResultSet
	tracker    *sparql.Tracker

	metrics *metric.Metrics
	health  *health.Monitor
	logger  *slog.Logger
	now     func() time.Time

	mu         sync.Mutex
	last       Presentation
	failStreak int
}

// Name returns the screen name.
func (s *Screen) Name() string { return s.name }

// Query returns the rendered SPARQL query the screen sends.
func (s *Screen) Query() string { return s.query }

// Last returns the most recent presentation.
func (s *Screen) Last() Presentation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Summary describes the screen and its current state.
func (s *Screen) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{
		Name:    s.name,
		Title:   s.cfg.Title,
		Kind:    s.cfg.Kind,
		State:   s.last.State,
		QueryID: s.last.QueryID,
	}
	if !s.last.RenderedAt.IsZero() {
		at := s.last.RenderedAt
		sum.RenderedAt = &at
	}
	return sum
}

// Render runs one query lifecycle and returns the resulting presentation.
// A query failure is not an error: the returned presentation is in the error
// state. Render returns ErrSuperseded when a newer render of the same screen
// started before this one completed; its result is discarded.
func (s *Screen) Render(ctx context.Context) (Presentation, error) {
	s.mu.Lock()
	callCtx, tk := s.tracker.Begin(ctx)
	s.last = Presentation{
		Screen:  s.name,
		Title:   s.cfg.Title,
		Kind:    s.cfg.Kind,
		State:   sparql.StatePending,
		Columns: s.cfg.Columns,
		Rows:    []sparql.DisplayRow{},
		QueryID: tk.ID,
	}
	s.recordState(sparql.StatePending)
	s.mu.Unlock()

	start := s.now()
	rs, err := s.querier.Execute(callCtx, s.query)
	elapsed := s.now().Sub(start)

	var p Presentation
	var issues []errors.FieldError
	if err == nil {
		p, issues = s.bind(rs)
		p.State = sparql.StateSuccess
	} else {
		p = s.failure(err)
	}
	p.QueryID = tk.ID
	p.RenderedAt = s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.tracker.Complete(tk, err) {
		s.logger.Debug("Discarding superseded result", "screen", s.name, "query_id", tk.ID)
		if s.metrics != nil {
			s.metrics.RecordQuery(s.name, metric.OutcomeSuperseded, elapsed)
		}
		return Presentation{}, errors.ErrSuperseded
	}

	s.last = p
	s.record(p, rs, err, issues, elapsed)
	return p, nil
}

// bind maps a result set onto the screen's presentation shape.
func (s *Screen) bind(rs *sparql.ResultSet) (Presentation, []errors.FieldError) {
	p := Presentation{
		Screen:  s.name,
		Title:   s.cfg.Title,
		Kind:    s.cfg.Kind,
		Columns: s.columns(rs),
	}
	issues := append([]errors.FieldError(nil), rs.Issues...)

	p.Rows = view.Table(rs, p.Columns)

	switch s.cfg.Kind {
	case config.KindMap:
		markers, geoIssues := view.Geo(rs, s.cfg.Geo)
		p.Markers = make([]MapMarker, len(markers))
		for i, m := range markers {
			p.Markers[i] = MapMarker{Marker: m, Tier: s.classifier.Classify(int(math.Round(m.Weight)))}
		}
		issues = append(issues, geoIssues...)
		p.Dropped = rs.Len() - len(markers)
	case config.KindSeries:
		points, seriesIssues := view.Series(rs, s.cfg.CategoryVar, s.cfg.ValueVar)
		p.Series = points
		issues = append(issues, seriesIssues...)
	}

	p.FieldErrors = len(issues)
	return p, issues
}

// failure builds the error presentation, with fallback rows when configured.
func (s *Screen) failure(err error) Presentation {
	var p Presentation
	if s.fallback != nil {
		p, _ = s.bind(s.fallback)
		p.Fallback = true
		p.Dropped, p.FieldErrors = 0, 0
	} else {
		p = Presentation{
			Screen:  s.name,
			Title:   s.cfg.Title,
			Kind:    s.cfg.Kind,
			Columns: s.cfg.Columns,
			Rows:    []sparql.DisplayRow{},
		}
	}

	p.State = sparql.StateError
	p.Error = health.SanitizeErrorMessage(err.Error())
	p.StatusCode = errors.StatusCode(err)
	return p
}

func (s *Screen) columns(rs *sparql.ResultSet) []string {
	if len(s.cfg.Columns) > 0 {
		return s.cfg.Columns
	}
	return rs.Vars
}

// record updates logs, metrics and health after a completed render.
// Called with s.mu held.
func (s *Screen) record(p Presentation, rs *sparql.ResultSet, err error, issues []errors.FieldError, elapsed time.Duration) {
	s.recordState(p.State)

	if err != nil {
		s.failStreak++
		s.logger.Warn("Screen query failed",
			"screen", s.name,
			"query_id", p.QueryID,
			"class", errors.Classify(err).String(),
			"status_code", p.StatusCode,
			"fallback", p.Fallback,
			"error", err)

		if s.metrics != nil {
			s.metrics.RecordQuery(s.name, outcome(err), elapsed)
			if p.Fallback {
				s.metrics.RecordFallback(s.name)
			}
		}

		status := health.FromError(s.name, err).WithMetrics(&health.Metrics{
			Duration:     elapsed,
			ErrorCount:   s.failStreak,
			LastActivity: p.RenderedAt,
		})
		s.updateHealth(status)
		return
	}

	s.failStreak = 0
	for _, fe := range issues {
		s.logger.Debug("Field not bound",
			"screen", s.name,
			"row", fe.Row,
			"var", fe.Var,
			"value", fe.Value,
			"reason", fe.Reason)
		if s.metrics != nil {
			s.metrics.RecordFieldError(s.name, fe.Var)
		}
	}

	if s.metrics != nil {
		s.metrics.RecordQuery(s.name, metric.OutcomeSuccess, elapsed)
		s.metrics.RecordRows(s.name, rs.Len())
		s.metrics.RecordSuccess(s.name, p.RenderedAt)
	}

	s.logger.Debug("Screen rendered",
		"screen", s.name,
		"query_id", p.QueryID,
		"rows", rs.Len(),
		"dropped", p.Dropped,
		"field_errors", p.FieldErrors,
		"duration", elapsed)

	var status health.Status
	if p.FieldErrors > 0 {
		status = health.NewDegraded(s.name, fmt.Sprintf("%d fields unusable, %d of %d rows dropped",
			p.FieldErrors, p.Dropped, rs.Len()))
	} else {
		status = health.NewHealthy(s.name, fmt.Sprintf("%d rows", rs.Len()))
	}
	s.updateHealth(status.WithMetrics(&health.Metrics{
		Rows:         rs.Len(),
		Dropped:      p.Dropped,
		FieldErrors:  p.FieldErrors,
		Duration:     elapsed,
		LastActivity: p.RenderedAt,
	}))
}

func (s *Screen) recordState(state sparql.State) {
	if s.metrics != nil {
		s.metrics.RecordScreenState(s.name, int(state))
	}
}

func (s *Screen) updateHealth(status health.Status) {
	if s.health != nil {
		s.health.Update(s.name, status)
	}
	if s.metrics != nil {
		s.metrics.RecordHealthStatus(s.name, status.Level())
	}
}

func outcome(err error) string {
	switch {
	case errors.IsNetwork(err):
		return metric.OutcomeNetwork
	case errors.IsHTTP(err):
		return metric.OutcomeHTTP
	default:
		return metric.OutcomeParse
	}
}

// fallbackResultSet turns configured fallback rows into literal bindings so
// they flow through the same view adapters as live results.
func fallbackResultSet(rows []map[string]string, columns []string) *sparql.ResultSet {
	if len(rows) == 0 {
		return nil
	}

	vars := columns
	if len(vars) == 0 {
		seen := make(map[string]bool)
		for _, row := range rows {
			for k := range row {
				if !seen[k] {
					seen[k] = true
					vars = append(vars, k)
				}
			}
		}
		sort.Strings(vars)
	}

	rs := &sparql.ResultSet{Vars: vars, Bindings: make([]sparql.Binding, len(rows))}
	for i, row := range rows {
		b := make(sparql.Binding, len(row))
		for k, v := range row {
			b[k] = sparql.Literal(v)
		}
		rs.Bindings[i] = b
	}
	return rs
}
