package export

import (
	"os"

	geojson "github.com/paulmach/go.geojson"

	"github.com/pthm-cable/microtubule/field"
	"github.com/pthm-cable/microtubule/geom"
	"github.com/pthm-cable/microtubule/network"
)

// GeoJSON writes FeatureCollections with three-dimensional positions
// [x, y, z]. Coordinates are simulation units, not longitude and latitude.
type GeoJSON struct {
	Dir string
}

func position(p geom.Point) []float64 { return []float64{p.X, p.Y, p.Z} }

func positions(pts []geom.Point) [][]float64 {
	out := make([][]float64, len(pts))
	for i, p := range pts {
		out[i] = position(p)
	}
	return out
}

func (g *GeoJSON) write(name string, fc *geojson.FeatureCollection) error {
	b, err := fc.MarshalJSON()
	if err != nil {
		return err
	}
	return writeFile(g.Dir, name, ".geojson", func(f *os.File) error {
		_, err := f.Write(b)
		return err
	})
}

// Points writes a single MultiPoint feature.
func (g *GeoJSON) Points(name string, pts []geom.Point) error {
	fc := geojson.NewFeatureCollection()
	fc.AddFeature(geojson.NewMultiPointFeature(positions(pts)...))
	return g.write(name, fc)
}

// Path writes a single LineString feature.
func (g *GeoJSON) Path(name string, pts []geom.Point) error {
	fc := geojson.NewFeatureCollection()
	f := geojson.NewLineStringFeature(positions(pts))
	f.SetProperty("positions", len(pts))
	fc.AddFeature(f)
	return g.write(name, fc)
}

// VectorField writes one Point feature per sample with the direction in
// the "vector" property.
func (g *GeoJSON) VectorField(name string, fl field.Field) error {
	fc := geojson.NewFeatureCollection()
	for _, s := range fl {
		f := geojson.NewPointFeature(position(s.Anchor))
		f.SetProperty("vector", position(s.Vector))
		fc.AddFeature(f)
	}
	return g.write(name, fc)
}

// Series writes the series as a two-dimensional LineString with the axis
// labels as properties.
func (g *GeoJSON) Series(name, xlabel, ylabel string, xy []XY) error {
	coords := make([][]float64, len(xy))
	for i, p := range xy {
		coords[i] = []float64{p.X, p.Y}
	}
	fc := geojson.NewFeatureCollection()
	f := geojson.NewLineStringFeature(coords)
	f.SetProperty("x_label", xlabel)
	f.SetProperty("y_label", ylabel)
	fc.AddFeature(f)
	return g.write(name, fc)
}

// Tubes writes one LineString feature per tube with its index and entropy.
func (g *GeoJSON) Tubes(name string, net *network.Network) error {
	fc := geojson.NewFeatureCollection()
	for t := 0; t < net.NumTubes(); t++ {
		tube := network.TubeIndex(t)
		f := geojson.NewLineStringFeature(positions(net.TubePoints(tube)))
		f.SetProperty("tube", t)
		f.SetProperty("entropy", net.TubeEntropy(tube))
		fc.AddFeature(f)
	}
	return g.write(name, fc)
}
