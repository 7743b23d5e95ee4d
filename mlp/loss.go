package mlp

// MSE is the mean-squared-error loss over one sample,
// E = 1/2 * sum_i (pred_i - target_i)^2.
//
// Delta and Delta2 produce the vectors that enter the chain's downstream
// end.  By convention the delta handed to a node is already scaled by that
// node's own activation derivative, so both methods fold in Df of the
// output node.
type MSE struct{}

func (MSE) Loss(pred, target []float32) float32 {
	checkDim("loss target", len(target), len(pred))
	var loss float32
	for i := range pred {
		diff := pred[i] - target[i]
		loss += diff * diff / 2
	}
	return loss
}

// Delta writes the first-order delta for the output node:
// delta[i] = (pred_i - target_i) * act.Df(pred_i).
func (MSE) Delta(act Activation, pred, target, delta []float32) {
	checkDim("loss target", len(target), len(pred))
	checkDim("loss delta", len(delta), len(pred))
	for i := range pred {
		delta[i] = (pred[i] - target[i]) * act.Df(pred[i])
	}
}

// Delta2 writes the initial second-order delta for the output node.  For
// MSE the second derivative of the loss wrt each output is 1, so under the
// diagonal approximation delta2[i] = act.Df(pred_i)^2.
func (MSE) Delta2(act Activation, pred, delta2 []float32) {
	checkDim("loss second-order delta", len(delta2), len(pred))
	for i := range pred {
		df := act.Df(pred[i])
		delta2[i] = df * df
	}
}
