// Command vec-dot-slice emits an AVX2 dot-product kernel matching the
// vecDot contract.
package main

import (
	"github.com/mlblocks/mlp/mlp/asm-generators/genlib"
	. "github.com/mmcloughlin/avo/build"
)

var unroll = 6

func main() {
	TEXT("vecDotAsm", NOSPLIT,
		"func(n int, x []float32, y []float32) float32")

	n := Load(Param("n"), GP64())
	xPtr := Load(Param("x").Base(), GP64())
	yPtr := Load(Param("y").Base(), GP64())

	result := genlib.GenSIMDDot2(n, xPtr, yPtr, unroll)

	Store(result, ReturnIndex(0))
	RET()

	Generate()
}
