package planner

import (
	"encoding/json"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"

	"pose-planner/internal/geometry"
)

// ErrMalformedPath is returned when a GeoJSON document does not describe a planned path.
var ErrMalformedPath = errors.New("malformed path document")

// Feature roles written to the "role" property.
const (
	roleStart = "start"
	roleEnd   = "end"
	rolePath  = "path"
)

// FeatureCollection describes a query and its path as GeoJSON. The path is a
// LineString feature carrying the sample headings in its "yaw" property; start
// and end are Point features carrying theirs.
func FeatureCollection(q Query, p *Path) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	line := geojson.NewFeature(p.LineString())
	_, _, yaws := p.Coordinates()
	line.Properties["role"] = rolePath
	line.Properties["yaw"] = yaws
	line.Properties["length"] = p.Length
	line.Properties["word"] = p.Word
	line.Properties["turn_radius"] = q.Params.TurnRadius
	line.Properties["runway_length"] = q.Params.RunwayLength
	line.Properties["step_size"] = q.Params.StepSize
	fc.Append(line)

	fc.Append(poseFeature(roleStart, q.Start))
	fc.Append(poseFeature(roleEnd, q.End))
	return fc
}

func poseFeature(role string, pose geometry.Pose) *geojson.Feature {
	f := geojson.NewFeature(pose.Point())
	f.Properties["role"] = role
	f.Properties["yaw"] = pose.Yaw
	f.Properties["yaw_deg"] = geometry.RadToDeg(pose.Yaw)
	return f
}

// WriteGeoJSON encodes the query and path as an indented feature collection.
func WriteGeoJSON(w io.Writer, q Query, p *Path) error {
	data, err := json.MarshalIndent(FeatureCollection(q, p), "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding path")
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// ReadGeoJSON parses a document written by WriteGeoJSON.
func ReadGeoJSON(r io.Reader) (Query, *Path, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Query{}, nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return Query{}, nil, errors.Wrapf(ErrMalformedPath, "parse: %v", err)
	}

	var (
		q        Query
		path     *Path
		haveEnds int
	)
	for _, f := range fc.Features {
		switch f.Properties.MustString("role", "") {
		case rolePath:
			ls, ok := f.Geometry.(orb.LineString)
			if !ok {
				return Query{}, nil, errors.Wrapf(ErrMalformedPath, "path geometry is %s", geometryType(f.Geometry))
			}
			yaws, err := floats(f.Properties["yaw"])
			if err != nil {
				return Query{}, nil, err
			}
			if len(yaws) != len(ls) {
				return Query{}, nil, errors.Wrapf(ErrMalformedPath, "%d points but %d headings", len(ls), len(yaws))
			}
			path = &Path{
				Samples: make([]Sample, len(ls)),
				Length:  f.Properties.MustFloat64("length", 0),
				Word:    f.Properties.MustString("word", ""),
			}
			for i, pt := range ls {
				path.Samples[i] = Sample{X: pt.X(), Y: pt.Y(), Yaw: yaws[i]}
			}
			q.Params = Params{
				TurnRadius:   f.Properties.MustFloat64("turn_radius", 0),
				RunwayLength: f.Properties.MustFloat64("runway_length", 0),
				StepSize:     f.Properties.MustFloat64("step_size", 0),
			}
		case roleStart, roleEnd:
			pt, ok := f.Geometry.(orb.Point)
			if !ok {
				return Query{}, nil, errors.Wrapf(ErrMalformedPath, "endpoint geometry is %s", geometryType(f.Geometry))
			}
			pose := geometry.Pose{X: pt.X(), Y: pt.Y(), Yaw: f.Properties.MustFloat64("yaw", 0)}
			if f.Properties.MustString("role", "") == roleStart {
				q.Start = pose
			} else {
				q.End = pose
			}
			haveEnds++
		}
	}
	if path == nil || path.Len() == 0 {
		return Query{}, nil, errors.Wrap(ErrMalformedPath, "no path feature")
	}
	if haveEnds != 2 {
		return Query{}, nil, errors.Wrapf(ErrMalformedPath, "want start and end features, found %d", haveEnds)
	}
	return q, path, nil
}

func floats(v interface{}) ([]float64, error) {
	raw, ok := v.([]interface{})
	if !ok {
		return nil, errors.Wrapf(ErrMalformedPath, "yaw property is %T", v)
	}
	out := make([]float64, len(raw))
	for i, item := range raw {
		f, ok := item.(float64)
		if !ok {
			return nil, errors.Wrapf(ErrMalformedPath, "yaw[%d] is %T", i, item)
		}
		out[i] = f
	}
	return out, nil
}

func geometryType(g orb.Geometry) string {
	if g == nil {
		return "null"
	}
	return g.GeoJSONType()
}
