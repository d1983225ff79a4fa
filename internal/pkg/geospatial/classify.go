package geospatial

import (
	"math"

	"github.com/samirrijal/siteloc/internal/core/domain"
)

// Magnitudes below geographicFloor are treated as unset rather than geographic.
const geographicFloor = 0.01

// Thresholds bounds the absolute magnitude of projected coordinates.
type Thresholds struct {
	MinProjected float64
	MaxProjected float64
}

// DefaultThresholds covers state-plane feet and UTM meters alike.
var DefaultThresholds = Thresholds{MinProjected: 1e3, MaxProjected: 1e7}

// Classifier labels raw coordinate pairs. The zero value is not usable;
// construct one with NewClassifier.
type Classifier struct {
	t Thresholds
}

// NewClassifier returns a classifier using t, falling back to the defaults
// for unset or inverted thresholds.
func NewClassifier(t Thresholds) *Classifier {
	if t.MinProjected <= 0 || t.MaxProjected <= t.MinProjected {
		t = DefaultThresholds
	}
	return &Classifier{t: t}
}

// Thresholds returns the bounds in use.
func (c *Classifier) Thresholds() Thresholds { return c.t }

// Classify labels (x, y), where x is the easting or longitude and y the
// northing or latitude.
func (c *Classifier) Classify(x, y float64) domain.CoordinateClass {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return domain.ClassIndeterminate
	}
	ax, ay := math.Abs(x), math.Abs(y)

	if ax <= 180 && ay <= 90 && ax > geographicFloor && ay > geographicFloor {
		return domain.ClassGeographic
	}
	if c.inProjectedRange(ax) && c.inProjectedRange(ay) {
		return domain.ClassProjectedLikely
	}
	return domain.ClassIndeterminate
}

func (c *Classifier) inProjectedRange(v float64) bool {
	return v >= c.t.MinProjected && v <= c.t.MaxProjected
}

var defaultClassifier = NewClassifier(DefaultThresholds)

// Classify labels (x, y) with the default thresholds.
func Classify(x, y float64) domain.CoordinateClass {
	return defaultClassifier.Classify(x, y)
}
