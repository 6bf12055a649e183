// Package export writes networks, trajectories, vector fields and series
// for external plotting. Exporters run only after a simulation step has
// finished and never feed back into it.
package export

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/pthm-cable/microtubule/field"
	"github.com/pthm-cable/microtubule/geom"
	"github.com/pthm-cable/microtubule/network"
)

// ErrUnknownFormat is returned by New for an unsupported format name.
var ErrUnknownFormat = errors.New("export: unknown format")

// XY is one point of a two-dimensional series.
type XY struct {
	X float64
	Y float64
}

// Exporter writes named artifacts into one output directory. The name is
// the file stem; each format adds its own extension.
type Exporter interface {
	// Points writes an unconnected point cloud.
	Points(name string, pts []geom.Point) error
	// Path writes points connected in order, such as a motor trajectory.
	Path(name string, pts []geom.Point) error
	// VectorField writes anchor and direction pairs.
	VectorField(name string, f field.Field) error
	// Series writes a labelled two-dimensional line plot.
	Series(name, xlabel, ylabel string, xy []XY) error
	// Tubes writes every tube of the network as a connected chain.
	Tubes(name string, net *network.Network) error
}

// New returns the exporter for format writing into dir.
func New(format, dir string) (Exporter, error) {
	switch format {
	case "", "mathematica", "mma":
		return &Mathematica{Dir: dir}, nil
	case "csv":
		return &CSV{Dir: dir}, nil
	case "geojson":
		return &GeoJSON{Dir: dir}, nil
	}
	return nil, errors.Wrapf(ErrUnknownFormat, "%q", format)
}

func create(dir, name, ext string) (*os.File, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrap(err, "creating export directory")
		}
	}
	f, err := os.Create(filepath.Join(dir, name+ext))
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s%s", name, ext)
	}
	return f, nil
}

// writeFile creates name+ext in dir, runs write and closes the file,
// keeping the first error.
func writeFile(dir, name, ext string, write func(f *os.File) error) error {
	f, err := create(dir, name, ext)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s%s", name, ext)
	}
	return f.Close()
}
