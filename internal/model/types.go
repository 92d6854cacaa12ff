package model

import (
	"errors"
	"fmt"
)

// Tensor layouts for image models.
const (
	LayoutNHWC = "nhwc"
	LayoutNCHW = "nchw"
)

var ErrInputShape = errors.New("input does not match model input shape")

type Metadata struct {
	InputName   string  `json:"input_name"`
	OutputName  string  `json:"output_name"`
	InputShape  []int64 `json:"input_shape"`
	OutputShape []int64 `json:"output_shape"`
	ImageSize   int     `json:"image_size"`
	Layout      string  `json:"layout"`
}

// InputSize is the number of values in one input tensor, batch included.
func (m Metadata) InputSize() int {
	return shapeSize(m.InputShape)
}

func (m Metadata) OutputSize() int {
	return shapeSize(m.OutputShape)
}

func shapeSize(shape []int64) int {
	if len(shape) == 0 {
		return 0
	}
	n := 1
	for _, dim := range shape {
		n *= int(dim)
	}
	return n
}

// ImageSpec describes how an image must be shaped before inference.
type ImageSpec struct {
	Size   int
	Layout string
}

// CropFeatures is a single soil and climate reading for the crop model.
type CropFeatures struct {
	Nitrogen    float64
	Phosphorous float64
	Potassium   float64
	Temperature float64
	Humidity    float64
	PH          float64
	Rainfall    float64
}

// Vector returns the features in the column order the crop model was trained on.
func (f CropFeatures) Vector() []float32 {
	return []float32{
		float32(f.Nitrogen),
		float32(f.Phosphorous),
		float32(f.Potassium),
		float32(f.Temperature),
		float32(f.Humidity),
		float32(f.PH),
		float32(f.Rainfall),
	}
}

type Prediction struct {
	Label string
	Index int
	Score float32
}

// InferenceError keeps the model name next to the underlying failure.
type InferenceError struct {
	Model string
	Err   error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("%s model: %v", e.Model, e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}
