package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"sync"

	"github.com/google/subcommands"
	"github.com/pkg/errors"
	"github.com/sbinet/npyio/npz"

	"github.com/mlblocks/mlp/mlp"
)

// Cap on how many samples feed the per-epoch Hessian estimate; curvature
// stabilizes long before the full set is consumed.
const hessianSamples = 500

type TrainCommand struct {
	dataFile string

	hiddenSize  int
	epochs      int
	batchSize   int
	workers     int
	alpha       float64
	mu          float64
	secondOrder bool
	seed        int64

	fromCheckpointFile string
	outputWeightFile   string
}

var _ subcommands.Command = (*TrainCommand)(nil)

func (*TrainCommand) Name() string {
	return "train"
}

func (*TrainCommand) Synopsis() string {
	return "Train the model"
}

func (*TrainCommand) Usage() string {
	return ``
}

func (c *TrainCommand) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.dataFile, "data-file", "dataset.npz", "Path to the npz input file holding x_train.npy and y_train.npy")
	f.IntVar(&c.hiddenSize, "hidden-size", 8, "Width of the hidden layer")
	f.IntVar(&c.epochs, "epochs", 100, "Number of passes over the training set")
	f.IntVar(&c.batchSize, "batch-size", 32, "Samples per weight update")
	f.IntVar(&c.workers, "workers", 4, "Concurrent propagation streams")
	f.Float64Var(&c.alpha, "alpha", 0.1, "Learning rate")
	f.Float64Var(&c.mu, "mu", 0.02, "Levenberg-Marquardt damping term")
	f.BoolVar(&c.secondOrder, "second-order", false, "Use the diagonal-Hessian adaptive learning rate instead of plain SGD")
	f.Int64Var(&c.seed, "seed", 12345, "Weight initialization and shuffle seed")
	f.StringVar(&c.fromCheckpointFile, "from-checkpoint", "", "Path to initial weights to load for training")
	f.StringVar(&c.outputWeightFile, "output-weight-file", "mlp-out.safetensors", "Path to save trained weights (safetensors format)")
}

func (c *TrainCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.executeErr(ctx); err != nil {
		log.Printf("Error: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *TrainCommand) executeErr(ctx context.Context) error {
	xs, ys, err := loadDataset(c.dataFile)
	if err != nil {
		return errors.Wrap(err, "while loading data set")
	}
	if len(xs) == 0 {
		return errors.New("data set is empty")
	}

	inSize := len(xs[0])
	outSize := len(ys[0])
	log.Printf("Loaded %d samples (%d inputs, %d outputs)", len(xs), inSize, outSize)

	net, err := mlp.New(
		mlp.NewInput(inSize),
		mlp.NewDense(mlp.Sigmoid{}, inSize, c.hiddenSize, true),
		mlp.NewDense(mlp.Identity{}, c.hiddenSize, outSize, true),
	)
	if err != nil {
		return errors.Wrap(err, "while assembling network")
	}
	mlp.XavierUniform(net, c.seed)

	if c.fromCheckpointFile != "" {
		if err := loadCheckpoint(net, c.fromCheckpointFile); err != nil {
			return errors.Wrap(err, "while loading initial checkpoint")
		}
	}

	if c.workers < 1 {
		c.workers = 1
	}
	wss := make([]*mlp.Workspace, c.workers)
	for i := range wss {
		wss[i] = net.NewWorkspace()
	}

	lastAct := net.Node(net.Len() - 1).Activation()
	loss := mlp.MSE{}

	r := rand.New(rand.NewSource(c.seed))
	perm := r.Perm(len(xs))

	for epoch := 0; epoch < c.epochs; epoch++ {
		hSamples := 0
		if c.secondOrder {
			hSamples = c.estimateHessian(net, wss[0], xs, ys)
		}

		epochLoss := float32(0)
		for begin := 0; begin < len(perm); begin += c.batchSize {
			end := begin + c.batchSize
			if end > len(perm) {
				end = len(perm)
			}
			batch := perm[begin:end]

			for _, ws := range wss {
				ws.ZeroGrads()
			}

			losses := make([]float32, c.workers)
			var wg sync.WaitGroup
			for w := 0; w < c.workers; w++ {
				wg.Add(1)
				go func(w int) {
					defer wg.Done()
					ws := wss[w]
					delta := make([]float32, outSize)
					for s := w; s < len(batch); s += c.workers {
						x, y := xs[batch[s]], ys[batch[s]]
						out := net.Forward(ws, x)
						losses[w] += loss.Loss(out, y)
						loss.Delta(lastAct, out, y, delta)
						net.Backward(ws, delta)
					}
				}(w)
			}
			wg.Wait()

			mlp.ReduceGrads(wss[0], wss[1:]...)
			for _, l := range losses {
				epochLoss += l
			}

			if c.secondOrder {
				opt := &mlp.LevenbergMarquardt{Alpha: float32(c.alpha) / float32(len(batch)), Mu: float32(c.mu)}
				opt.Apply(net, wss[0], hSamples)
			} else {
				opt := &mlp.SGD{Alpha: float32(c.alpha) / float32(len(batch))}
				opt.Apply(net, wss[0])
			}
		}

		r.Shuffle(len(perm), func(i, j int) {
			perm[i], perm[j] = perm[j], perm[i]
		})

		log.Printf("epoch %d loss=%f", epoch, epochLoss/float32(len(xs)))

		if err := writeCheckpoint(net, c.outputWeightFile); err != nil {
			return errors.Wrap(err, "while writing checkpoint")
		}
	}

	return nil
}

// estimateHessian refreshes the diagonal-Hessian accumulators from a prefix
// of the training set.  Runs on a single stream: the second-order pass
// accumulates into shared state.
func (c *TrainCommand) estimateHessian(net *mlp.Network, ws *mlp.Workspace, xs, ys [][]float32) int {
	net.ZeroHessian()

	lastAct := net.Node(net.Len() - 1).Activation()
	loss := mlp.MSE{}

	n := len(xs)
	if n > hessianSamples {
		n = hessianSamples
	}

	delta2 := make([]float32, len(ys[0]))
	for s := 0; s < n; s++ {
		out := net.Forward(ws, xs[s])
		loss.Delta2(lastAct, out, delta2)
		net.Backward2nd(ws, delta2)
	}

	return n
}

func writeCheckpoint(net *mlp.Network, path string) error {
	tensors := map[string]*mlp.Tensor{}
	net.DumpTensors(tensors)

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "while creating %s", path)
	}
	defer f.Close()

	if err := mlp.WriteSafeTensors(f, tensors); err != nil {
		return errors.Wrap(err, "while writing safetensors")
	}

	return f.Close()
}

func loadCheckpoint(net *mlp.Network, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "while opening %s", path)
	}
	defer f.Close()

	tensors, err := mlp.ReadSafeTensors(f)
	if err != nil {
		return errors.Wrap(err, "while reading safetensors")
	}

	return net.LoadTensors(tensors)
}

// loadDataset reads x_train.npy and y_train.npy (both float32, C order,
// shape (samples, width)) from an npz archive.
func loadDataset(path string) (xs, ys [][]float32, err error) {
	r, err := npz.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "while opening %s", path)
	}
	defer r.Close()

	xs, err = loadMatrix(r, "x_train.npy")
	if err != nil {
		return nil, nil, errors.Wrap(err, "while reading x_train.npy")
	}

	ys, err = loadMatrix(r, "y_train.npy")
	if err != nil {
		return nil, nil, errors.Wrap(err, "while reading y_train.npy")
	}

	if len(xs) != len(ys) {
		return nil, nil, errors.Errorf("got %d input rows but %d output rows", len(xs), len(ys))
	}

	return xs, ys, nil
}

func loadMatrix(r *npz.Reader, name string) ([][]float32, error) {
	header := r.Header(name)
	if len(header.Descr.Shape) != 2 {
		return nil, errors.Errorf("want a 2-d array, got shape %v", header.Descr.Shape)
	}

	var raw []float32
	if err := r.Read(name, &raw); err != nil {
		return nil, errors.Wrap(err, "while reading float32 array")
	}

	rows, cols := header.Descr.Shape[0], header.Descr.Shape[1]
	out := make([][]float32, rows)
	for i := 0; i < rows; i++ {
		out[i] = raw[i*cols : (i+1)*cols]
	}

	return out, nil
}
