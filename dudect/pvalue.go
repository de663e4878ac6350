// Package dudect implements the statistical side of the fuzzer: a
// Welch's t-test verifier over two populations of instruction counts,
// following the "dudect" methodology for detecting non-constant-time
// behavior. Grounded on original_source/src/dudect.rs, with one
// deliberate correction: the original computes both sides' t-statistic
// using only the first population's standard deviation
// (`let second_std_dev = first.std_dev;`), which understates variance
// whenever the two populations differ. This package uses each side's
// own accumulated standard deviation.
package dudect

// breakpoint pairs a t-value threshold with the two-tailed p-value for
// exceeding it, taken verbatim from original_source/src/util.rs's
// p_value_from_t_value table.
type breakpoint struct {
	t float64
	p float64
}

var breakpoints = []breakpoint{
	{10.0, 0.0},
	{3.91, 0.0001},
	{3.291, 0.001},
	{3.09, 0.002},
	{2.807, 0.005},
	{2.576, 0.01},
	{2.326, 0.02},
	{1.96, 0.05},
	{1.645, 0.1},
	{1.282, 0.2},
	{1.036, 0.3},
	{0.842, 0.4},
	{0.674, 0.5},
	{0.253, 0.6},
	{0.0, 1.0},
}

// pValueFromT maps a t-statistic to its two-tailed p-value via the fixed
// breakpoint table, returning 1.0 for t <= 0.
func pValueFromT(t float64) float64 {
	if t <= 0 {
		return 1.0
	}
	for _, bp := range breakpoints {
		if t > bp.t {
			return bp.p
		}
	}
	return 1.0
}
