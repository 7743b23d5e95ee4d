package mlp

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"unsafe"

	"github.com/pkg/errors"
)

// Tensor is a flat float32 buffer plus its shape, used for checkpointing.
type Tensor struct {
	V     []float32
	Shape []int
}

type safeTensorInfo struct {
	DType       string `json:"dtype"`
	Shape       []int  `json:"shape"`
	DataOffsets []int  `json:"data_offsets"`
}

// DumpTensors adds every dense node's parameters to tensors.  Weights keep
// their input-major layout under shape (inSize, outSize); biases use shape
// (outSize).
func (n *Network) DumpTensors(tensors map[string]*Tensor) {
	for i, nd := range n.nodes {
		d, ok := nd.(*Dense)
		if !ok {
			continue
		}
		tensors[fmt.Sprintf("net.%d.weights", i)] = &Tensor{V: d.W, Shape: []int{d.inSize, d.outSize}}
		if d.hasBias {
			tensors[fmt.Sprintf("net.%d.biases", i)] = &Tensor{V: d.B, Shape: []int{d.outSize}}
		}
	}
}

// LoadTensors copies checkpointed parameters back into the network's dense
// nodes, validating every shape.
func (n *Network) LoadTensors(tensors map[string]*Tensor) error {
	for i, nd := range n.nodes {
		d, ok := nd.(*Dense)
		if !ok {
			continue
		}

		weightKey := fmt.Sprintf("net.%d.weights", i)
		weightTensor, ok := tensors[weightKey]
		if !ok {
			return errors.Errorf("no entry for %s", weightKey)
		}
		wantShape := []int{d.inSize, d.outSize}
		if !slices.Equal(weightTensor.Shape, wantShape) {
			return errors.Errorf("%s: wrong shape; got %v want %v", weightKey, weightTensor.Shape, wantShape)
		}
		copy(d.W, weightTensor.V)

		if !d.hasBias {
			continue
		}
		biasKey := fmt.Sprintf("net.%d.biases", i)
		biasTensor, ok := tensors[biasKey]
		if !ok {
			return errors.Errorf("no entry for %s", biasKey)
		}
		if !slices.Equal(biasTensor.Shape, []int{d.outSize}) {
			return errors.Errorf("%s: wrong shape; got %v want %v", biasKey, biasTensor.Shape, []int{d.outSize})
		}
		copy(d.B, biasTensor.V)
	}

	return nil
}

// WriteSafeTensors serializes tensors in safetensors format: a little-endian
// header length, a JSON header, then the raw float32 payloads in key order.
func WriteSafeTensors(w io.Writer, tensors map[string]*Tensor) error {
	header := map[string]safeTensorInfo{}
	dataOffset := 0

	keys := []string{}
	for k := range tensors {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		begin := dataOffset
		dataOffset += len(tensors[k].V) * 4
		end := dataOffset

		header[k] = safeTensorInfo{
			DType:       "F32",
			Shape:       tensors[k].Shape,
			DataOffsets: []int{begin, end},
		}
	}

	headerBytes, err := json.Marshal(header)
	if err != nil {
		return errors.Wrap(err, "while marshaling header")
	}

	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerBytes))); err != nil {
		return errors.Wrap(err, "while writing header length")
	}

	if _, err := w.Write(headerBytes); err != nil {
		return errors.Wrap(err, "while writing header")
	}

	for _, k := range keys {
		if err := binary.Write(w, binary.LittleEndian, tensors[k].V); err != nil {
			return errors.Wrapf(err, "while writing %s values", k)
		}
	}

	return nil
}

// ReadSafeTensors reads a safetensors stream written by WriteSafeTensors.
// r must also implement io.ReaderAt so payloads can be read by offset.
func ReadSafeTensors(r io.Reader) (map[string]*Tensor, error) {
	rat, ok := r.(io.ReaderAt)
	if !ok {
		return nil, errors.New("reader must implement io.ReaderAt")
	}

	var headerLen uint64
	if err := binary.Read(r, binary.LittleEndian, &headerLen); err != nil {
		return nil, errors.Wrap(err, "while reading header length")
	}

	headerBytes := make([]byte, int(headerLen))
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, errors.Wrap(err, "while reading header")
	}

	header := map[string]safeTensorInfo{}
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, errors.Wrap(err, "while unmarshaling header")
	}

	tensors := map[string]*Tensor{}
	for k, hdr := range header {
		if hdr.DType != "F32" {
			return nil, errors.Errorf("unsupported dtype %s", hdr.DType)
		}

		size := 1
		for _, s := range hdr.Shape {
			if s < 1 {
				return nil, errors.Errorf("bad shape %v", hdr.Shape)
			}
			size *= s
		}

		valBytes := make([]byte, size*4)
		if _, err := rat.ReadAt(valBytes, 8+int64(headerLen)+int64(hdr.DataOffsets[0])); err != nil {
			return nil, errors.Wrapf(err, "while reading bytes for %s", k)
		}

		tensors[k] = &Tensor{
			V:     castToF32(valBytes),
			Shape: hdr.Shape,
		}
	}

	return tensors, nil
}

func castToF32(b []byte) []float32 {
	return unsafe.Slice((*float32)(unsafe.Pointer(&b[0])), len(b)/4)
}
