package model

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ArtifactPaths locates one model and the files that describe it.
type ArtifactPaths struct {
	Model    string
	Metadata string
	Labels   string
}

type StoreConfig struct {
	// SharedLibrary is the onnxruntime library path; empty uses the platform default.
	SharedLibrary string
	Crop          ArtifactPaths
	Disease       ArtifactPaths
}

// Store holds the crop and disease classifiers for the lifetime of the process.
type Store struct {
	crop    *Classifier
	disease *Classifier
	onnx    bool
}

func NewStore(crop, disease *Classifier) *Store {
	return &Store{crop: crop, disease: disease}
}

// Open loads both ONNX classifiers. Any missing or malformed artifact is an error.
func Open(cfg StoreConfig) (*Store, error) {
	if cfg.SharedLibrary != "" {
		ort.SetSharedLibraryPath(cfg.SharedLibrary)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	crop, err := loadClassifier("crop", cfg.Crop)
	if err != nil {
		ort.DestroyEnvironment()
		return nil, err
	}

	disease, err := loadClassifier("disease", cfg.Disease)
	if err != nil {
		crop.Close()
		ort.DestroyEnvironment()
		return nil, err
	}

	s := NewStore(crop, disease)
	s.onnx = true
	return s, nil
}

func loadClassifier(name string, paths ArtifactPaths) (*Classifier, error) {
	metadata, err := LoadMetadata(paths.Metadata)
	if err != nil {
		return nil, fmt.Errorf("%s model: %w", name, err)
	}

	labels, err := LoadLabels(paths.Labels)
	if err != nil {
		return nil, fmt.Errorf("%s model: %w", name, err)
	}

	if _, err := os.Stat(paths.Model); err != nil {
		return nil, fmt.Errorf("%s model: %w", name, err)
	}

	runner, err := newONNXRunner(paths.Model, metadata)
	if err != nil {
		return nil, fmt.Errorf("%s model: %w", name, err)
	}

	clf, err := NewClassifier(name, runner, metadata, labels)
	if err != nil {
		runner.Close()
		return nil, err
	}
	return clf, nil
}

// LoadMetadata reads a model metadata file and fills in defaults.
func LoadMetadata(path string) (Metadata, error) {
	metaFile, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read metadata: %w", err)
	}

	var metadata Metadata
	if err := json.Unmarshal(metaFile, &metadata); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse metadata: %w", err)
	}

	if metadata.InputName == "" {
		metadata.InputName = "input"
	}
	if metadata.OutputName == "" {
		metadata.OutputName = "output"
	}
	switch metadata.Layout {
	case "":
		metadata.Layout = LayoutNHWC
	case LayoutNHWC, LayoutNCHW:
	default:
		return Metadata{}, fmt.Errorf("unsupported tensor layout %q", metadata.Layout)
	}

	return metadata, nil
}

func (s *Store) PredictCrop(features CropFeatures) (Prediction, error) {
	return s.crop.Predict(features.Vector())
}

// PredictDisease classifies a preprocessed image tensor shaped per DiseaseImage.
func (s *Store) PredictDisease(input []float32) (Prediction, error) {
	return s.disease.Predict(input)
}

func (s *Store) DiseaseImage() ImageSpec {
	return ImageSpec{
		Size:   s.disease.Metadata.ImageSize,
		Layout: s.disease.Metadata.Layout,
	}
}

func (s *Store) CropLabels() []string {
	return s.crop.Labels.Names()
}

func (s *Store) Close() {
	if s.crop != nil {
		s.crop.Close()
	}
	if s.disease != nil {
		s.disease.Close()
	}
	if s.onnx {
		ort.DestroyEnvironment()
	}
}

// onnxRunner owns a session and its pre-allocated tensors. Run is serialized
// because every call writes into the same input tensor.
type onnxRunner struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

func newONNXRunner(modelPath string, metadata Metadata) (*onnxRunner, error) {
	inputShape := ort.NewShape(metadata.InputShape...)
	outputShape := ort.NewShape(metadata.OutputShape...)

	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{metadata.InputName}, []string{metadata.OutputName},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &onnxRunner{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, nil
}

func (r *onnxRunner) Run(input []float32) ([]float32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	copy(r.inputTensor.GetData(), input)

	if err := r.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	out := r.outputTensor.GetData()
	result := make([]float32, len(out))
	copy(result, out)
	return result, nil
}

func (r *onnxRunner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.inputTensor != nil {
		r.inputTensor.Destroy()
	}
	if r.outputTensor != nil {
		r.outputTensor.Destroy()
	}
	if r.session != nil {
		r.session.Destroy()
	}
}
