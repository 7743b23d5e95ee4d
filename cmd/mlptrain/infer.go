package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/google/subcommands"
	"github.com/pkg/errors"

	"github.com/mlblocks/mlp/mlp"
)

type InferCommand struct {
	weightsFile string

	inSize     int
	hiddenSize int
	outSize    int

	input string
}

var _ subcommands.Command = (*InferCommand)(nil)

func (*InferCommand) Name() string {
	return "infer"
}

func (*InferCommand) Synopsis() string {
	return "Run the network forward on one input vector"
}

func (*InferCommand) Usage() string {
	return ``
}

func (c *InferCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.weightsFile, "weights", "mlp-out.safetensors", "Path to the weights produced by the train command")
	f.IntVar(&c.inSize, "in-size", 2, "Input width the weights were trained with")
	f.IntVar(&c.hiddenSize, "hidden-size", 8, "Hidden width the weights were trained with")
	f.IntVar(&c.outSize, "out-size", 1, "Output width the weights were trained with")
	f.StringVar(&c.input, "input", "", "Comma-separated input vector")
}

func (c *InferCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.executeErr(ctx); err != nil {
		log.Printf("Error: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *InferCommand) executeErr(ctx context.Context) error {
	x, err := parseVector(c.input)
	if err != nil {
		return errors.Wrap(err, "while parsing --input")
	}
	if len(x) != c.inSize {
		return errors.Errorf("--input has %d values, want %d", len(x), c.inSize)
	}

	net, err := mlp.New(
		mlp.NewInput(c.inSize),
		mlp.NewDense(mlp.Sigmoid{}, c.inSize, c.hiddenSize, true),
		mlp.NewDense(mlp.Identity{}, c.hiddenSize, c.outSize, true),
	)
	if err != nil {
		return errors.Wrap(err, "while assembling network")
	}

	if err := loadCheckpoint(net, c.weightsFile); err != nil {
		return errors.Wrap(err, "while loading weights")
	}

	ws := net.NewWorkspace()
	out := net.Forward(ws, x)

	parts := make([]string, len(out))
	for i, v := range out {
		parts[i] = strconv.FormatFloat(float64(v), 'g', -1, 32)
	}
	fmt.Println(strings.Join(parts, ","))

	return nil
}

func parseVector(s string) ([]float32, error) {
	if s == "" {
		return nil, errors.New("empty vector")
	}

	fields := strings.Split(s, ",")
	out := make([]float32, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 32)
		if err != nil {
			return nil, errors.Wrapf(err, "bad value %q", field)
		}
		out[i] = float32(v)
	}

	return out, nil
}
