package model

import (
	"fmt"
)

// Runner executes one forward pass and returns the raw output vector.
type Runner interface {
	Run(input []float32) ([]float32, error)
	Close()
}

// Classifier pairs a Runner with the labels for its output vector.
type Classifier struct {
	name     string
	runner   Runner
	Metadata Metadata
	Labels   *Labels
}

func NewClassifier(name string, runner Runner, metadata Metadata, labels *Labels) (*Classifier, error) {
	if metadata.InputSize() == 0 {
		return nil, fmt.Errorf("%s model: metadata has no input shape", name)
	}
	if out := metadata.OutputSize(); out != labels.Len() {
		return nil, fmt.Errorf("%s model: output size %d does not match %d labels", name, out, labels.Len())
	}

	return &Classifier{
		name:     name,
		runner:   runner,
		Metadata: metadata,
		Labels:   labels,
	}, nil
}

func (c *Classifier) Name() string {
	return c.name
}

func (c *Classifier) Predict(input []float32) (Prediction, error) {
	if want := c.Metadata.InputSize(); len(input) != want {
		return Prediction{}, &InferenceError{
			Model: c.name,
			Err:   fmt.Errorf("%w: expected %d values, got %d", ErrInputShape, want, len(input)),
		}
	}

	output, err := c.runner.Run(input)
	if err != nil {
		return Prediction{}, &InferenceError{Model: c.name, Err: err}
	}
	if len(output) == 0 {
		return Prediction{}, &InferenceError{Model: c.name, Err: fmt.Errorf("empty output vector")}
	}

	idx, score := argmax(output)
	label, ok := c.Labels.Name(idx)
	if !ok {
		return Prediction{}, &InferenceError{Model: c.name, Err: fmt.Errorf("no label for class %d", idx)}
	}

	return Prediction{Label: label, Index: idx, Score: score}, nil
}

func (c *Classifier) Close() {
	if c.runner != nil {
		c.runner.Close()
	}
}

// argmax returns the first maximal entry.
func argmax(values []float32) (int, float32) {
	maxIdx := 0
	maxVal := values[0]
	for i, val := range values {
		if val > maxVal {
			maxVal = val
			maxIdx = i
		}
	}
	return maxIdx, maxVal
}
