package dashboard

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/c360/semdash/config"
	"github.com/c360/semdash/errors"
	"github.com/c360/semdash/health"
	"github.com/c360/semdash/metric"
	"github.com/c360/semdash/sparql"
	"github.com/c360/semdash/view"
	"github.com/c360/semdash/vocabulary"
)

// Dashboard holds the configured screens.
type Dashboard struct {
	screens map[string]*Screen
	order   []string
	policy  string
	logger  *slog.Logger
}

// Option configures a Dashboard.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	metrics *metric.Metrics
	health  *health.Monitor
	now     func() time.Time
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics records query and binding metrics.
func WithMetrics(m *metric.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithHealth reports each screen's health to monitor.
func WithHealth(monitor *health.Monitor) Option {
	return func(o *options) { o.health = monitor }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New builds the dashboard screens from a copy of cfg. Query templates are
// rendered once against the configured ontology.
func New(cfg *config.Config, querier Querier, opts ...Option) (*Dashboard, error) {
	if cfg == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "Dashboard", "New", "config is required")
	}
	if querier == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "Dashboard", "New", "querier is required")
	}

	o := options{logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	cfg = cfg.Clone()

	classifier, err := view.NewClassifier(cfg.Severity)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Dashboard", "New", "build severity classifier")
	}

	d := &Dashboard{
		screens: make(map[string]*Screen, len(cfg.Screens)),
		order:   cfg.ScreenNames(),
		policy:  cfg.FailurePolicy,
		logger:  o.logger,
	}

	for _, name := range d.order {
		sc := cfg.Screens[name]

		tmpl, err := vocabulary.ParseQuery(name, sc.Query)
		if err != nil {
			return nil, errors.WrapInvalid(err, "Dashboard", "New", fmt.Sprintf("screen %s", name))
		}
		query, err := tmpl.Render(cfg.Ontology, sc.Limit)
		if err != nil {
			return nil, errors.WrapInvalid(err, "Dashboard", "New", fmt.Sprintf("screen %s", name))
		}

		s := &Screen{
			name:       name,
			cfg:        sc,
			query:      query,
			querier:    querier,
			classifier: classifier,
			tracker:    sparql.NewTracker(),
			metrics:    o.metrics,
			health:     o.health,
			logger:     o.logger.With("component", "screen"),
			now:        o.now,
		}
		if cfg.FailurePolicy == config.PolicyFallback {
			s.fallback = fallbackResultSet(sc.Fallback, sc.Columns)
		}
		s.last = Presentation{
			Screen:  name,
			Title:   sc.Title,
			Kind:    sc.Kind,
			State:   sparql.StateIdle,
			Columns: sc.Columns,
			Rows:    []sparql.DisplayRow{},
		}
		d.screens[name] = s
	}

	return d, nil
}

// Policy returns the failure policy in effect.
func (d *Dashboard) Policy() string {
	return d.policy
}

// Screen returns the named screen.
func (d *Dashboard) Screen(name string) (*Screen, error) {
	s, ok := d.screens[name]
	if !ok {
		return nil, errors.WrapInvalid(errors.ErrScreenNotFound, "Dashboard", "Screen",
			fmt.Sprintf("screen %q", name))
	}
	return s, nil
}

// Screens returns every screen in display order.
func (d *Dashboard) Screens() []*Screen {
	out := make([]*Screen, len(d.order))
	for i, name := range d.order {
		out[i] = d.screens[name]
	}
	return out
}

// Summaries describes every screen in display order.
func (d *Dashboard) Summaries() []Summary {
	out := make([]Summary, len(d.order))
	for i, name := range d.order {
		out[i] = d.screens[name].Summary()
	}
	return out
}

// Render renders the named screen.
func (d *Dashboard) Render(ctx context.Context, name string) (Presentation, error) {
	s, err := d.Screen(name)
	if err != nil {
		return Presentation{}, err
	}
	return s.Render(ctx)
}

// RefreshAll renders every screen concurrently and returns the presentations
// in display order. Query failures appear as error presentations; a screen
// whose render was superseded reports its latest presentation instead. Only
// cancellation of ctx fails the refresh.
func (d *Dashboard) RefreshAll(ctx context.Context) ([]Presentation, error) {
	out := make([]Presentation, len(d.order))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range d.order {
		s := d.screens[name]
		g.Go(func() error {
			p, err := s.Render(gctx)
			if stderrors.Is(err, errors.ErrSuperseded) {
				p = s.Last()
			} else if err != nil {
				return err
			}
			out[i] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "Dashboard", "RefreshAll", "render screens")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapTransient(err, "Dashboard", "RefreshAll", "refresh cancelled")
	}

	d.logger.Debug("Dashboard refreshed", "screens", len(out))
	return out, nil
}
