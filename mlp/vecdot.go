package mlp

// Scalar reference kernels.  The build picks vecDot/vecMulAdd from either
// vecdot_simd.go or vecdot_generic.go; the naive twins stay compiled
// everywhere so tests can compare against them.

func vecDotNaive(x, y []float32) float32 {
	if len(x) != len(y) {
		panic("mismatched length")
	}
	var sum float32
	for i := range x {
		sum += x[i] * y[i]
	}
	return sum
}

// vecMulAddNaive computes dst[i] += c*src[i].
func vecMulAddNaive(src []float32, c float32, dst []float32) {
	if len(src) != len(dst) {
		panic("mismatched length")
	}
	for i := range src {
		dst[i] += c * src[i]
	}
}
