package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pthm-cable/microtubule/field"
	"github.com/pthm-cable/microtubule/geom"
	"github.com/pthm-cable/microtubule/network"
)

// Mathematica writes Wolfram Language expressions, one per .m file, that
// evaluate to a plot when loaded.
type Mathematica struct {
	Dir string
}

const mmaExt = ".m"

func (m *Mathematica) write(name string, fn func(w *bufio.Writer)) error {
	return writeFile(m.Dir, name, mmaExt, func(f *os.File) error {
		w := bufio.NewWriter(f)
		fn(w)
		return w.Flush()
	})
}

// Points writes Graphics3D[{PointSize[Large], Blue, Point[...], ...}].
func (m *Mathematica) Points(name string, pts []geom.Point) error {
	return m.write(name, func(w *bufio.Writer) { WritePointsMma(w, pts) })
}

// Path writes a GraphPlot3D chain 1 -> 2 -> ... with vertex coordinates.
func (m *Mathematica) Path(name string, pts []geom.Point) error {
	return m.write(name, func(w *bufio.Writer) { WritePathMma(w, pts) })
}

// VectorField writes ListVectorPlot3D[{{{anchor}, {vector}}, ...}].
func (m *Mathematica) VectorField(name string, f field.Field) error {
	return m.write(name, func(w *bufio.Writer) { WriteVectorFieldMma(w, f) })
}

// Series writes ListLinePlot with axis labels and grid lines.
func (m *Mathematica) Series(name, xlabel, ylabel string, xy []XY) error {
	return m.write(name, func(w *bufio.Writer) { WriteSeriesMma(w, xlabel, ylabel, xy) })
}

// Tubes writes one GraphPlot3D whose edges follow each tube's chain.
func (m *Mathematica) Tubes(name string, net *network.Network) error {
	return m.write(name, func(w *bufio.Writer) { WriteTubesMma(w, net) })
}

func mmaPoint(p geom.Point) string {
	return fmt.Sprintf("{%f, %f, %f}", p.X, p.Y, p.Z)
}

// WritePointsMma writes pts as a Graphics3D point cloud.
func WritePointsMma(w io.Writer, pts []geom.Point) {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = "Point[" + mmaPoint(p) + "]"
	}
	fmt.Fprintf(w, "Graphics3D[{PointSize[Large], Blue, %s}]\n", strings.Join(parts, ", "))
}

// WritePathMma writes pts as a chain graph. Vertices are numbered from 1.
func WritePathMma(w io.Writer, pts []geom.Point) {
	edges := make([]string, 0, len(pts))
	for i := 1; i < len(pts); i++ {
		edges = append(edges, fmt.Sprintf("%d -> %d", i, i+1))
	}
	coords := make([]string, len(pts))
	for i, p := range pts {
		coords[i] = fmt.Sprintf("%d -> %s", i+1, mmaPoint(p))
	}
	fmt.Fprintf(w, "GraphPlot3D[{%s}, VertexCoordinateRules -> {%s}, PlotStyle -> {Dashed, Thick, Red}]\n",
		strings.Join(edges, ", "), strings.Join(coords, ", "))
}

// WriteVectorFieldMma writes f as ListVectorPlot3D input.
func WriteVectorFieldMma(w io.Writer, f field.Field) {
	parts := make([]string, len(f))
	for i, s := range f {
		parts[i] = "{" + mmaPoint(s.Anchor) + ", " + mmaPoint(s.Vector) + "}"
	}
	fmt.Fprintf(w, "ListVectorPlot3D[{%s}]\n", strings.Join(parts, ", "))
}

// WriteSeriesMma writes xy as a labelled ListLinePlot.
func WriteSeriesMma(w io.Writer, xlabel, ylabel string, xy []XY) {
	parts := make([]string, len(xy))
	for i, p := range xy {
		parts[i] = fmt.Sprintf("{%f, %f}", p.X, p.Y)
	}
	fmt.Fprintf(w, "ListLinePlot[{%s}, AxesLabel -> {%q, %q}, GridLines -> Automatic]\n",
		strings.Join(parts, ", "), xlabel, ylabel)
}

// WriteTubesMma writes every tube as a chain of segPerTube edges. Each tube
// contributes segPerTube+1 vertices and tubes share no vertex.
func WriteTubesMma(w io.Writer, net *network.Network) {
	var edges, coords []string
	v := 1
	for t := 0; t < net.NumTubes(); t++ {
		pts := net.TubePoints(network.TubeIndex(t))
		for i, p := range pts {
			coords = append(coords, fmt.Sprintf("%d -> {%g, %g, %g}", v+i, p.X, p.Y, p.Z))
			if i > 0 {
				edges = append(edges, fmt.Sprintf("%d -> %d", v+i-1, v+i))
			}
		}
		v += len(pts)
	}
	fmt.Fprintf(w, "GraphPlot3D[{%s}, VertexCoordinateRules -> {%s}]\n",
		strings.Join(edges, ", "), strings.Join(coords, ", "))
}
