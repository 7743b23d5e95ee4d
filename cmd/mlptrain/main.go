// Command mlptrain trains and runs small fully-connected networks.
//
// To train: `go run ./cmd/mlptrain train --data-file=dataset.npz`
//
// To infer: `go run ./cmd/mlptrain infer --weights=mlp-out.safetensors --in-size=2 --hidden-size=8 --out-size=1 --input=0.5,0.25`
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	subcommands.Register(&TrainCommand{}, "")
	subcommands.Register(&InferCommand{}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
