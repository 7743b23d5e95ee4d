//go:build goexperiment.simd && amd64

package mlp

import "simd"

// vecDot is the dot product of two equally-sized vectors.
func vecDot(x, y []float32) float32 {
	var a simd.Float32x8
	i := 0
	for ; i < len(x)-8; i += 8 { // this idiom is friendly to bounds check elimination
		xv := simd.LoadFloat32x8Slice(x[i : i+8])
		yv := simd.LoadFloat32x8Slice(y[i : i+8])
		a = xv.MulAdd(yv, a)
	}
	xv := simd.LoadFloat32x8SlicePart(x[i:])
	yv := simd.LoadFloat32x8SlicePart(y[i:])
	a = xv.MulAdd(yv, a)
	a = a.AddPairs(a) // 01234567                AP 01234567                -> 0+1 2+3 _ _ 4+5 6+7 _ _
	a = a.AddPairs(a) // 0+1 2+3 _ _ 4+5 6+7 _ _ AP 0+1 2+3 _ _ 4+5 6+7 _ _ -> 0+1+2+3 _ _ _ 4+5+6+7 _ _ _
	b := a.GetLo().Add(a.GetHi())
	return b.GetElem(0)
}

// vecMulAdd computes dst[i] += c*src[i] over equally-sized slices.
func vecMulAdd(src []float32, c float32, dst []float32) {
	if len(src) == 0 {
		return
	}

	var cbuf [8]float32
	for i := range cbuf {
		cbuf[i] = c
	}
	cv := simd.LoadFloat32x8Slice(cbuf[:])

	i := 0
	for ; i < len(src)-8; i += 8 {
		sv := simd.LoadFloat32x8Slice(src[i : i+8])
		dv := simd.LoadFloat32x8Slice(dst[i : i+8])
		sv.MulAdd(cv, dv).StoreSlice(dst[i : i+8])
	}
	sv := simd.LoadFloat32x8SlicePart(src[i:])
	dv := simd.LoadFloat32x8SlicePart(dst[i:])
	sv.MulAdd(cv, dv).StoreSlicePart(dst[i:])
}
