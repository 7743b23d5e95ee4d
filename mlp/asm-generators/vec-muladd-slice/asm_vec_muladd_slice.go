// Command vec-muladd-slice emits an AVX2 scaled multiply-accumulate kernel
// matching the vecMulAdd contract.
package main

import (
	"github.com/mlblocks/mlp/mlp/asm-generators/genlib"
	. "github.com/mmcloughlin/avo/build"
)

var unroll = 6

func main() {
	TEXT("vecMulAddAsm", NOSPLIT,
		"func(n int, src []float32, c float32, dst []float32)")

	n := Load(Param("n"), GP64())
	srcPtr := Load(Param("src").Base(), GP64())
	cReg := Load(Param("c"), XMM())
	dstPtr := Load(Param("dst").Base(), GP64())

	genlib.GenSIMDMulAdd(n, srcPtr, dstPtr, cReg, unroll)

	RET()

	Generate()
}
