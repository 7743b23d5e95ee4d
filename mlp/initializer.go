package mlp

import (
	"github.com/chewxy/math32"
	rng "github.com/leesper/go_rng"
)

// XavierUniform fills every dense node's weights from
// U(-sqrt(6/(fanIn+fanOut)), +sqrt(6/(fanIn+fanOut))) and zeroes the
// biases.  Deterministic for a fixed seed.
func XavierUniform(net *Network, seed int64) {
	u := rng.NewUniformGenerator(seed)
	for _, nd := range net.Nodes() {
		d, ok := nd.(*Dense)
		if !ok {
			continue
		}
		scale := math32.Sqrt(6 / float32(d.FanInSize()+d.FanOutSize()))
		for j := range d.W {
			d.W[j] = u.Float32Range(-scale, scale)
		}
		for j := range d.B {
			d.B[j] = 0
		}
	}
}

// GaussianInit fills every dense node's weights from N(0, stddev) and
// zeroes the biases.
func GaussianInit(net *Network, stddev float32, seed int64) {
	g := rng.NewGaussianGenerator(seed)
	for _, nd := range net.Nodes() {
		d, ok := nd.(*Dense)
		if !ok {
			continue
		}
		for j := range d.W {
			d.W[j] = float32(g.Gaussian(0, float64(stddev)))
		}
		for j := range d.B {
			d.B[j] = 0
		}
	}
}
