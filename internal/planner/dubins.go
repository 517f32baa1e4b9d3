package planner

import (
	"container/heap"
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"pose-planner/internal/geometry"
)

// DefaultMaxSamples bounds the samples of a single path when Dubins.MaxSamples is zero.
const DefaultMaxSamples = 200000

type segmentKind byte

const (
	turnLeft  segmentKind = 'L'
	straight  segmentKind = 'S'
	turnRight segmentKind = 'R'
)

// segment is a piece of a route with its arc length in world units.
type segment struct {
	Kind   segmentKind
	Length float64
}

type dubinsWord struct {
	Name  string
	Kinds [3]segmentKind
	Solve func(alpha, beta, d float64) (t, p, q float64, ok bool)
}

// dubinsWords are tried in this order; the order breaks ties between equal lengths.
var dubinsWords = []dubinsWord{
	{"LSL", [3]segmentKind{turnLeft, straight, turnLeft}, solveLSL},
	{"RSR", [3]segmentKind{turnRight, straight, turnRight}, solveRSR},
	{"LSR", [3]segmentKind{turnLeft, straight, turnRight}, solveLSR},
	{"RSL", [3]segmentKind{turnRight, straight, turnLeft}, solveRSL},
	{"RLR", [3]segmentKind{turnRight, turnLeft, turnRight}, solveRLR},
	{"LRL", [3]segmentKind{turnLeft, turnRight, turnLeft}, solveLRL},
}

// Dubins plans forward-only routes built from arcs of the turn radius and straight
// lines, ending with a straight runway of the requested length.
type Dubins struct {
	// MaxSamples caps samples per path; zero means DefaultMaxSamples.
	MaxSamples int
	Logger     *zap.SugaredLogger
}

// NewDubins returns a Dubins planner logging to logger.
func NewDubins(logger *zap.SugaredLogger) *Dubins {
	return &Dubins{MaxSamples: DefaultMaxSamples, Logger: logger}
}

// Plan implements Planner.
func (d *Dubins) Plan(ctx context.Context, q Query) (*Path, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := q.Params.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInfeasible, err)
	}
	if !q.Start.Finite() || !q.End.Finite() {
		return nil, fmt.Errorf("%w: %w", ErrInfeasible, geometry.ErrNonFinite)
	}
	logger := d.logger()
	r := q.Params.TurnRadius

	// the curve ends where the runway begins
	entry := q.End.Advance(-q.Params.RunwayLength)
	segs, word, err := d.solve(q.Start, entry, r)
	if err != nil {
		return nil, err
	}
	if q.Params.RunwayLength > 0 {
		segs = append(segs, segment{Kind: straight, Length: q.Params.RunwayLength})
		word += "+S"
	}

	total := 0.0
	for _, s := range segs {
		total += s.Length
	}
	maxSamples := d.MaxSamples
	if maxSamples <= 0 {
		maxSamples = DefaultMaxSamples
	}
	if need := total/q.Params.StepSize + 2; need > float64(maxSamples) {
		return nil, fmt.Errorf("%w: path of length %.3f needs %.0f samples at step %g, limit is %d",
			ErrInfeasible, total, need, q.Params.StepSize, maxSamples)
	}

	samples, err := sampleSegments(ctx, q.Start, segs, total, q.Params.StepSize, r)
	if err != nil {
		return nil, err
	}
	samples[0] = Sample{X: q.Start.X, Y: q.Start.Y, Yaw: q.Start.Yaw}
	samples[len(samples)-1] = Sample{X: q.End.X, Y: q.End.Y, Yaw: q.End.Yaw}

	logger.Debugw("dubins path planned", "word", word, "length", total, "samples", len(samples))
	return &Path{Samples: samples, Length: total, Word: word}, nil
}

func (d *Dubins) logger() *zap.SugaredLogger {
	if d.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return d.Logger
}

// solve returns the shortest word connecting start to goal whose integrated end
// matches the goal.
func (d *Dubins) solve(start, goal geometry.Pose, r float64) ([]segment, string, error) {
	dx, dy := goal.X-start.X, goal.Y-start.Y
	dist := math.Hypot(dx, dy)
	theta := 0.0
	if dist > 0 {
		theta = geometry.Mod2Pi(math.Atan2(dy, dx))
	}
	alpha := geometry.Mod2Pi(start.Yaw - theta)
	beta := geometry.Mod2Pi(goal.Yaw - theta)
	norm := dist / r

	cands := make([]*candidate, 0, len(dubinsWords))
	for i, w := range dubinsWords {
		t, p, q, ok := w.Solve(alpha, beta, norm)
		if !ok {
			continue
		}
		cands = append(cands, &candidate{Word: i, Lengths: [3]float64{t, p, q}, Total: t + p + q})
	}

	posTol := 1e-6 * math.Max(1, math.Max(r, dist))
	cq := newCandidateQueue(cands)
	for cq.Len() > 0 {
		c := heap.Pop(cq).(*candidate)
		w := dubinsWords[c.Word]
		segs := make([]segment, 0, 4)
		for i, k := range w.Kinds {
			segs = append(segs, segment{Kind: k, Length: c.Lengths[i] * r})
		}
		end := start
		for _, s := range segs {
			end = advance(end, s.Kind, s.Length, r)
		}
		if end.Distance(goal) <= posTol && angleGap(end.Yaw, goal.Yaw) <= 1e-6 {
			return segs, w.Name, nil
		}
		d.logger().Debugw("discarding curve word that misses goal", "word", w.Name, "miss", end.Distance(goal))
	}
	return nil, "", fmt.Errorf("%w: no curve word connects (%.3f, %.3f) to (%.3f, %.3f)",
		ErrInfeasible, start.X, start.Y, goal.X, goal.Y)
}

// advance moves a pose dist units along one segment.
func advance(p geometry.Pose, kind segmentKind, dist, r float64) geometry.Pose {
	switch kind {
	case turnLeft:
		phi := dist / r
		return geometry.Pose{
			X:   p.X + r*(math.Sin(p.Yaw+phi)-math.Sin(p.Yaw)),
			Y:   p.Y - r*(math.Cos(p.Yaw+phi)-math.Cos(p.Yaw)),
			Yaw: p.Yaw + phi,
		}
	case turnRight:
		phi := dist / r
		return geometry.Pose{
			X:   p.X - r*(math.Sin(p.Yaw-phi)-math.Sin(p.Yaw)),
			Y:   p.Y + r*(math.Cos(p.Yaw-phi)-math.Cos(p.Yaw)),
			Yaw: p.Yaw - phi,
		}
	default:
		return p.Advance(dist)
	}
}

// sampleSegments samples the route every step units of arc length and always
// includes the final pose.
func sampleSegments(ctx context.Context, start geometry.Pose, segs []segment, total, step, r float64) ([]Sample, error) {
	samples := make([]Sample, 0, int(total/step)+2)
	eps := 1e-9 * step

	segStart := start
	segOffset := 0.0
	si := 0
	for k := 0; ; k++ {
		u := float64(k) * step
		if u >= total-eps {
			break
		}
		if k%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		for si < len(segs) && u > segOffset+segs[si].Length {
			segStart = advance(segStart, segs[si].Kind, segs[si].Length, r)
			segOffset += segs[si].Length
			si++
		}
		pose := segStart
		if si < len(segs) {
			pose = advance(segStart, segs[si].Kind, u-segOffset, r)
		}
		samples = append(samples, Sample{X: pose.X, Y: pose.Y, Yaw: pose.Yaw})
	}

	end := start
	for _, s := range segs {
		end = advance(end, s.Kind, s.Length, r)
	}
	samples = append(samples, Sample{X: end.X, Y: end.Y, Yaw: end.Yaw})
	return samples, nil
}

// angleGap is the absolute difference of two headings on the circle.
func angleGap(a, b float64) float64 {
	diff := geometry.Mod2Pi(a - b)
	return math.Min(diff, 2*math.Pi-diff)
}

func solveLSL(alpha, beta, d float64) (float64, float64, float64, bool) {
	sa, sb, ca, cb := math.Sin(alpha), math.Sin(beta), math.Cos(alpha), math.Cos(beta)
	tmp := 2 + d*d - 2*math.Cos(alpha-beta) + 2*d*(sa-sb)
	if tmp < 0 {
		return 0, 0, 0, false
	}
	ang := math.Atan2(cb-ca, d+sa-sb)
	return geometry.Mod2Pi(-alpha + ang), math.Sqrt(tmp), geometry.Mod2Pi(beta - ang), true
}

func solveRSR(alpha, beta, d float64) (float64, float64, float64, bool) {
	sa, sb, ca, cb := math.Sin(alpha), math.Sin(beta), math.Cos(alpha), math.Cos(beta)
	tmp := 2 + d*d - 2*math.Cos(alpha-beta) + 2*d*(sb-sa)
	if tmp < 0 {
		return 0, 0, 0, false
	}
	ang := math.Atan2(ca-cb, d-sa+sb)
	return geometry.Mod2Pi(alpha - ang), math.Sqrt(tmp), geometry.Mod2Pi(-beta + ang), true
}

func solveLSR(alpha, beta, d float64) (float64, float64, float64, bool) {
	sa, sb, ca, cb := math.Sin(alpha), math.Sin(beta), math.Cos(alpha), math.Cos(beta)
	tmp := -2 + d*d + 2*math.Cos(alpha-beta) + 2*d*(sa+sb)
	if tmp < 0 {
		return 0, 0, 0, false
	}
	p := math.Sqrt(tmp)
	ang := math.Atan2(-ca-cb, d+sa+sb) - math.Atan2(-2, p)
	return geometry.Mod2Pi(-alpha + ang), p, geometry.Mod2Pi(-beta + ang), true
}

func solveRSL(alpha, beta, d float64) (float64, float64, float64, bool) {
	sa, sb, ca, cb := math.Sin(alpha), math.Sin(beta), math.Cos(alpha), math.Cos(beta)
	tmp := d*d - 2 + 2*math.Cos(alpha-beta) - 2*d*(sa+sb)
	if tmp < 0 {
		return 0, 0, 0, false
	}
	p := math.Sqrt(tmp)
	ang := math.Atan2(ca+cb, d-sa-sb) - math.Atan2(2, p)
	return geometry.Mod2Pi(alpha - ang), p, geometry.Mod2Pi(beta - ang), true
}

func solveRLR(alpha, beta, d float64) (float64, float64, float64, bool) {
	sa, sb, ca, cb := math.Sin(alpha), math.Sin(beta), math.Cos(alpha), math.Cos(beta)
	tmp := (6 - d*d + 2*math.Cos(alpha-beta) + 2*d*(sa-sb)) / 8
	if math.Abs(tmp) > 1 {
		return 0, 0, 0, false
	}
	p := geometry.Mod2Pi(2*math.Pi - math.Acos(tmp))
	t := geometry.Mod2Pi(alpha - math.Atan2(ca-cb, d-sa+sb) + p/2)
	return t, p, geometry.Mod2Pi(alpha - beta - t + p), true
}

func solveLRL(alpha, beta, d float64) (float64, float64, float64, bool) {
	sa, sb, ca, cb := math.Sin(alpha), math.Sin(beta), math.Cos(alpha), math.Cos(beta)
	tmp := (6 - d*d + 2*math.Cos(alpha-beta) + 2*d*(sb-sa)) / 8
	if math.Abs(tmp) > 1 {
		return 0, 0, 0, false
	}
	p := geometry.Mod2Pi(2*math.Pi - math.Acos(tmp))
	t := geometry.Mod2Pi(-alpha - math.Atan2(ca-cb, d+sa-sb) + p/2)
	return t, p, geometry.Mod2Pi(beta - alpha - t + p), true
}
