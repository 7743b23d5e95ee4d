//go:build !goexperiment.simd || !amd64

package mlp

func vecDot(x, y []float32) float32 {
	return vecDotNaive(x, y)
}

func vecMulAdd(src []float32, c float32, dst []float32) {
	vecMulAddNaive(src, c, dst)
}
