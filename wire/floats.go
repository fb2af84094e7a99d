package wire

import "math"

// IEEE-754 bit conversions. Kept on the standard library: this is a direct
// wrapper over math.Float32bits/Float64bits and no example in the corpus
// reaches for a third-party package for it (see DESIGN.md).
func float32bits(v float32) uint32    { return math.Float32bits(v) }
func float32frombits(b uint32) float32 { return math.Float32frombits(b) }
func float64bits(v float64) uint64    { return math.Float64bits(v) }
func float64frombits(b uint64) float64 { return math.Float64frombits(b) }
