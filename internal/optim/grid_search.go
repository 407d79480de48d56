// Package optim scans configuration parameters. A GridSearch evaluates an
// objective on every point of a parameter grid and keeps the lowest value,
// which covers energy-volume curves as well as crude potential fitting.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/pysic/internal/config"
)

var ErrNoValidPoint = errors.New("no grid point could be evaluated")

// Objective scores one configuration. Lower is better.
type Objective func(ctx context.Context, cfg *config.Config) (float64, error)

// Point is one evaluated grid point. Err is set when the objective failed
// there, in which case Value is +Inf.
type Point struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	workers    int
	logger     *zap.Logger
}

type Option func(*GridSearch)

func WithWorkers(n int) Option {
	return func(g *GridSearch) {
		if n > 0 {
			g.workers = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(g *GridSearch) {
		if l != nil {
			g.logger = l
		}
	}
}

func NewGridSearch(params []string, ranges [][]float64, opts ...Option) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, fmt.Errorf("need one range per parameter, got %d parameters and %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("parameter %s has no values", params[i])
		}
	}
	g := &GridSearch{
		paramNames: params,
		ranges:     ranges,
		workers:    runtime.NumCPU(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Points enumerates the grid with the last parameter varying fastest.
func (g *GridSearch) Points() []map[string]float64 {
	var out []map[string]float64
	g.collect(0, make(map[string]float64), &out)
	return out
}

func (g *GridSearch) collect(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return
	}
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[g.paramNames[depth]] = val
		g.collect(depth+1, next, out)
	}
}

// Search evaluates objective on a copy of base for every grid point. Points
// where the objective fails are kept with their error; the search only
// fails as a whole when ctx ends or no point succeeds.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, objective Objective) (Point, []Point, error) {
	grid := g.Points()
	points := make([]Point, len(grid))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)
	for i, params := range grid {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			points[i] = g.evaluate(ctx, base, params, objective)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return Point{}, nil, err
	}

	best := Point{Value: math.Inf(1)}
	var errs []error
	for _, p := range points {
		if p.Err != nil {
			errs = append(errs, p.Err)
			continue
		}
		if p.Value < best.Value {
			best = p
		}
	}
	if best.Params == nil {
		if len(errs) == 0 {
			return Point{}, points, fmt.Errorf("%w: no finite value in %d points", ErrNoValidPoint, len(points))
		}
		return Point{}, points, fmt.Errorf("%w: %d of %d points failed: %w",
			ErrNoValidPoint, len(errs), len(points), errors.Join(errs...))
	}
	g.logger.Debug("grid search finished",
		zap.Int("points", len(points)), zap.Int("failed", len(errs)), zap.Float64("best", best.Value))
	return best, points, nil
}

func (g *GridSearch) evaluate(ctx context.Context, base *config.Config, params map[string]float64, objective Objective) Point {
	p := Point{Params: params, Value: math.Inf(1)}
	cfg := base.Clone()
	for _, name := range g.paramNames {
		if err := Set(cfg, name, params[name]); err != nil {
			p.Err = err
			return p
		}
	}
	v, err := objective(ctx, cfg)
	if err != nil {
		g.logger.Debug("grid point failed", zap.Any("params", params), zap.Error(err))
		p.Err = fmt.Errorf("at %v: %w", params, err)
		return p
	}
	p.Value = v
	return p
}
