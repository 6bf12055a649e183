package export

import (
	"os"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/microtubule/field"
	"github.com/pthm-cable/microtubule/geom"
	"github.com/pthm-cable/microtubule/network"
)

// PointRow is one row of a point or path CSV.
type PointRow struct {
	Index int     `csv:"index"`
	X     float64 `csv:"x"`
	Y     float64 `csv:"y"`
	Z     float64 `csv:"z"`
}

// VectorRow is one row of a vector field CSV.
type VectorRow struct {
	X float64 `csv:"x"`
	Y float64 `csv:"y"`
	Z float64 `csv:"z"`
	U float64 `csv:"u"`
	V float64 `csv:"v"`
	W float64 `csv:"w"`
}

// SeriesRow is one row of a series CSV. Axis labels go in the first row's
// label columns.
type SeriesRow struct {
	X      float64 `csv:"x"`
	Y      float64 `csv:"y"`
	XLabel string  `csv:"x_label"`
	YLabel string  `csv:"y_label"`
}

// TubeRow is one segment of a tube CSV.
type TubeRow struct {
	Tube    int     `csv:"tube"`
	Segment int     `csv:"segment"`
	StartX  float64 `csv:"start_x"`
	StartY  float64 `csv:"start_y"`
	StartZ  float64 `csv:"start_z"`
	EndX    float64 `csv:"end_x"`
	EndY    float64 `csv:"end_y"`
	EndZ    float64 `csv:"end_z"`
	Entropy float64 `csv:"tube_entropy"`
}

// CSV writes one .csv file per artifact with a header row.
type CSV struct {
	Dir string
}

func marshalCSV[T any](dir, name string, rows []T) error {
	return writeFile(dir, name, ".csv", func(f *os.File) error {
		return gocsv.Marshal(rows, f)
	})
}

func pointRows(pts []geom.Point) []PointRow {
	rows := make([]PointRow, len(pts))
	for i, p := range pts {
		rows[i] = PointRow{Index: i, X: p.X, Y: p.Y, Z: p.Z}
	}
	return rows
}

// Points writes index,x,y,z rows.
func (c *CSV) Points(name string, pts []geom.Point) error {
	return marshalCSV(c.Dir, name, pointRows(pts))
}

// Path writes index,x,y,z rows in path order.
func (c *CSV) Path(name string, pts []geom.Point) error {
	return marshalCSV(c.Dir, name, pointRows(pts))
}

// VectorField writes x,y,z,u,v,w rows.
func (c *CSV) VectorField(name string, f field.Field) error {
	rows := make([]VectorRow, len(f))
	for i, s := range f {
		rows[i] = VectorRow{
			X: s.Anchor.X, Y: s.Anchor.Y, Z: s.Anchor.Z,
			U: s.Vector.X, V: s.Vector.Y, W: s.Vector.Z,
		}
	}
	return marshalCSV(c.Dir, name, rows)
}

// Series writes x,y rows.
func (c *CSV) Series(name, xlabel, ylabel string, xy []XY) error {
	rows := make([]SeriesRow, len(xy))
	for i, p := range xy {
		rows[i] = SeriesRow{X: p.X, Y: p.Y}
	}
	if len(rows) > 0 {
		rows[0].XLabel, rows[0].YLabel = xlabel, ylabel
	}
	return marshalCSV(c.Dir, name, rows)
}

// Tubes writes one row per segment with its tube's entropy.
func (c *CSV) Tubes(name string, net *network.Network) error {
	rows := make([]TubeRow, 0, net.Len())
	spt := net.SegmentsPerTube()
	for i, s := range net.Segments() {
		tube := net.TubeOf(network.SegmentIndex(i))
		rows = append(rows, TubeRow{
			Tube:    int(tube),
			Segment: i % spt,
			StartX:  s.Start.X,
			StartY:  s.Start.Y,
			StartZ:  s.Start.Z,
			EndX:    s.End.X,
			EndY:    s.End.Y,
			EndZ:    s.End.Z,
			Entropy: net.TubeEntropy(tube),
		})
	}
	return marshalCSV(c.Dir, name, rows)
}
