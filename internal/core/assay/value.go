package assay

import (
	"math"
	"strconv"
	"strings"
)

// ParseLey converts a grade written with either decimal separator ("12,5" or
// "12.5") to a float. ok is false for anything that is not a finite number;
// callers drop the entry rather than treating it as zero.
func ParseLey(s string) (v float64, ok bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	// ParseFloat also reads hex floats ("0x10", "0x1p3"); a grade cell never
	// holds one.
	if s == "" || strings.ContainsAny(s, "xX") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
