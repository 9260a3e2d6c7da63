package classify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/options"
	"github.com/knights-analytics/hugot/pipelines"
)

// DefaultHFRepo is the HuggingFace repository of the crypto domain classifier
// the system ships with.
const DefaultHFRepo = "ElKulako/cryptobert"

// ONNXConfig configures construction of a TextClassifier.
type ONNXConfig struct {
	// ModelPath points at a local ONNX model directory. When empty the model
	// is resolved under CacheDir, downloading from HFRepo if missing.
	ModelPath string
	// HFRepo is the HuggingFace repository to download from when the model is
	// not present locally. Defaults to DefaultHFRepo.
	HFRepo string
	// CacheDir is where downloaded models are stored.
	CacheDir string
	// OrtLibraryPath optionally points at a custom onnxruntime shared library.
	OrtLibraryPath string
	// Name identifies the pipeline in logs. Defaults to "query-classifier".
	Name string
}

// TextClassifier runs query classification through a hugot ONNX pipeline.
// Inference with fixed weights and fixed thread settings is deterministic, and
// the classifier holds no mutable state between calls, so a TextClassifier is
// safe to share across concurrent query invocations.
type TextClassifier struct {
	name     string
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
	mu       sync.RWMutex
}

// NewTextClassifier loads the classification model eagerly, downloading it
// from HuggingFace when it is not cached locally. Callers own the returned
// classifier and must Close it to release the onnxruntime session.
func NewTextClassifier(cfg ONNXConfig) (*TextClassifier, error) {
	if cfg.Name == "" {
		cfg.Name = "query-classifier"
	}
	if cfg.HFRepo == "" {
		cfg.HFRepo = DefaultHFRepo
	}
	if cfg.CacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		cfg.CacheDir = filepath.Join(home, ".graphrag", "models")
	}
	if err := os.MkdirAll(cfg.CacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	modelPath := cfg.ModelPath
	if modelPath == "" {
		var err error
		modelPath, err = resolveModel(cfg)
		if err != nil {
			return nil, err
		}
	}

	// Single-threaded intra-op execution keeps scores reproducible
	// across runs.
	sessionOpts := []options.WithOption{
		options.WithIntraOpNumThreads(1),
	}
	if cfg.OrtLibraryPath != "" {
		sessionOpts = append(sessionOpts, options.WithOnnxLibraryPath(cfg.OrtLibraryPath))
	}

	session, err := hugot.NewORTSession(sessionOpts...)
	if err != nil {
		return nil, fmt.Errorf("create ORT session: %w", err)
	}

	pipelineConfig := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      cfg.Name,
	}
	pipeline, err := hugot.NewPipeline(session, pipelineConfig)
	if err != nil {
		session.Destroy()
		return nil, fmt.Errorf("create pipeline: %w", err)
	}

	return &TextClassifier{name: cfg.Name, session: session, pipeline: pipeline}, nil
}

func resolveModel(cfg ONNXConfig) (string, error) {
	local := filepath.Join(cfg.CacheDir, filepath.Base(cfg.HFRepo))
	if _, err := os.Stat(local); err == nil {
		return local, nil
	}
	downloaded, err := hugot.DownloadModel(cfg.HFRepo, cfg.CacheDir, hugot.NewDownloadOptions())
	if err != nil {
		return "", fmt.Errorf("download from HuggingFace: %w", err)
	}
	return downloaded, nil
}

// Classify implements Classifier. Empty input returns the neutral
// classification without touching the model; any model failure surfaces as an
// *InferenceError.
func (c *TextClassifier) Classify(ctx context.Context, query string) (Classification, error) {
	if isBlank(query) {
		return Neutral(), nil
	}
	if err := ctx.Err(); err != nil {
		return Classification{}, &InferenceError{Model: c.name, Cause: err}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.pipeline == nil {
		return Classification{}, &InferenceError{Model: c.name, Cause: fmt.Errorf("classifier closed")}
	}

	output, err := c.pipeline.RunPipeline([]string{query})
	if err != nil {
		return Classification{}, &InferenceError{Model: c.name, Cause: err}
	}
	if len(output.ClassificationOutputs) == 0 || len(output.ClassificationOutputs[0]) == 0 {
		return Classification{}, &InferenceError{Model: c.name, Cause: fmt.Errorf("no classification returned")}
	}

	best := output.ClassificationOutputs[0][0]
	for _, cand := range output.ClassificationOutputs[0][1:] {
		if cand.Score > best.Score {
			best = cand
		}
	}
	return Classification{Label: best.Label, Score: float64(best.Score)}, nil
}

// Close releases the onnxruntime session. The classifier rejects further
// calls afterwards.
func (c *TextClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		c.session.Destroy()
		c.session = nil
	}
	c.pipeline = nil
	return nil
}
