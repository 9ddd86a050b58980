package clustering

import (
	"math"

	"github.com/TrevorS/clustering/neighbors"
)

// Float mirrors neighbors.Float so both packages share one scalar constraint.
type Float = neighbors.Float

// nan returns the undefined-reachability sentinel for T.
func nan[T Float]() T {
	return T(math.NaN())
}

// isNormal reports whether x is a normal floating-point number: neither
// zero, subnormal, infinite, nor NaN. A reachability value counts as
// assigned only when this holds, so an exact-zero reachability (coincident
// duplicate points) is still treated as unassigned.
func isNormal[T Float](x T) bool {
	switch v := any(x).(type) {
	case float32:
		exp := math.Float32bits(v) >> 23 & 0xff
		return exp != 0 && exp != 0xff
	case float64:
		exp := math.Float64bits(v) >> 52 & 0x7ff
		return exp != 0 && exp != 0x7ff
	}
	return false
}
