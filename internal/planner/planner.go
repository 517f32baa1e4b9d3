// Package planner defines the path query handed to a curvature-bounded path
// generator and the sampled path it returns. Dubins is the generator shipped
// with the tool; anything satisfying Planner can replace it.
package planner

import (
	"context"

	"github.com/pkg/errors"

	"pose-planner/internal/geometry"
)

var (
	// ErrInfeasible wraps every failure to produce a path for a query.
	ErrInfeasible = errors.New("no feasible path")
	// ErrInvalidParams is returned by Params.Validate.
	ErrInvalidParams = errors.New("invalid planning parameters")
)

// Planner produces a sampled, curvature-bounded path for a query.
type Planner interface {
	Plan(ctx context.Context, q Query) (*Path, error)
}

// Params are the fixed planning constants shared by every query of a process.
type Params struct {
	TurnRadius   float64 `json:"turn_radius"`
	RunwayLength float64 `json:"runway_length"`
	StepSize     float64 `json:"step_size"`
}

// Validate checks the parameter bounds.
func (p Params) Validate() error {
	switch {
	case !geometry.IsFinite(p.TurnRadius) || p.TurnRadius <= 0:
		return errors.Wrapf(ErrInvalidParams, "turn radius must be > 0, got %g", p.TurnRadius)
	case !geometry.IsFinite(p.RunwayLength) || p.RunwayLength < 0:
		return errors.Wrapf(ErrInvalidParams, "runway length must be >= 0, got %g", p.RunwayLength)
	case !geometry.IsFinite(p.StepSize) || p.StepSize <= 0:
		return errors.Wrapf(ErrInvalidParams, "step size must be > 0, got %g", p.StepSize)
	}
	return nil
}

// Query is one path request. It is built once per completed pose pair and never mutated.
type Query struct {
	Start  geometry.Pose `json:"start"`
	End    geometry.Pose `json:"end"`
	Params Params        `json:"params"`
}

// NewQuery assembles a query. Coincident start and end positions are passed through.
func NewQuery(start, end geometry.Pose, params Params) Query {
	return Query{Start: start, End: end, Params: params}
}
