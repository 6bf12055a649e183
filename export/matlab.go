package export

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/pthm-cable/microtubule/field"
)

// MeshDAT writes f as MATLAB-loadable text into dir/name.dat: one line per
// sample, six space-separated columns x y z u v w, suitable for quiver3.
func MeshDAT(dir, name string, f field.Field) error {
	return writeFile(dir, name, ".dat", func(file *os.File) error {
		w := bufio.NewWriter(file)
		WriteMeshDAT(w, f)
		return w.Flush()
	})
}

// WriteMeshDAT writes the six-column rows of f to w.
func WriteMeshDAT(w io.Writer, f field.Field) {
	for _, s := range f {
		fmt.Fprintf(w, "%f %f %f %f %f %f\n",
			s.Anchor.X, s.Anchor.Y, s.Anchor.Z,
			s.Vector.X, s.Vector.Y, s.Vector.Z)
	}
}
