// Package formats parses the small sidecar formats that carry georeferencing
// evidence for a job: world files, projection descriptions, tile manifests and
// point-cloud metadata. Parsers never return errors; a false ok means the
// input carried no usable data.
package formats

import (
	"math"
	"strconv"
	"strings"

	"github.com/samirrijal/siteloc/internal/core/domain"
)

// WorldFileExtensions lists the sidecar extensions probed for a raster.
var WorldFileExtensions = []string{".tfw", ".jgw", ".pgw", ".wld"}

// ParseWorldFile reads the six affine parameters of a world file. Blank lines
// are ignored; every other line must be a finite number and there must be at
// least six of them.
func ParseWorldFile(text string) (domain.WorldFile, bool) {
	var vals []float64
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return domain.WorldFile{}, false
		}
		vals = append(vals, v)
	}
	if len(vals) < 6 {
		return domain.WorldFile{}, false
	}

	return domain.WorldFile{
		PixelSizeX: vals[0],
		RotationY:  vals[1],
		RotationX:  vals[2],
		PixelSizeY: vals[3],
		UpperLeftX: vals[4],
		UpperLeftY: vals[5],
	}, true
}

// FormatWorldFile serializes a record back into world-file text.
func FormatWorldFile(w domain.WorldFile) string {
	var b strings.Builder
	for _, v := range w.Lines() {
		b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
		b.WriteByte('\n')
	}
	return b.String()
}
