package vision

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/your-org/photoflow/internal/config"
	"github.com/your-org/photoflow/internal/observability"
)

// detectModel locates faces in a preprocessed CHW image.
type detectModel interface {
	inputSize() (int, int)
	detect(imgData []float32, origW, origH int) ([]detection, error)
	close()
}

// embedModel turns a preprocessed CHW face crop into a descriptor.
type embedModel interface {
	inputSize() (int, int)
	extract(faceData []float32) ([]float32, error)
	close()
}

// Service runs the ONNX face models: detect → crop → embed. The model
// sessions reuse preallocated input and output tensors, so they are not
// safe for concurrent Run; mu serializes every model invocation while the
// surrounding decode and crop work stays concurrent.
type Service struct {
	mu       sync.Mutex
	detector detectModel
	embedder embedModel
}

// NewService loads the detection and embedding models from cfg.ModelsDir.
func NewService(cfg config.VisionConfig) (*Service, error) {
	detPath := filepath.Join(cfg.ModelsDir, "det_10g.onnx")
	embPath := filepath.Join(cfg.ModelsDir, "w600k_r50.onnx")

	slog.Info("loading detection model", "path", detPath)
	det, err := newDetector(detPath, float32(cfg.DetectionThreshold))
	if err != nil {
		return nil, fmt.Errorf("load detector: %w", err)
	}

	slog.Info("loading embedding model", "path", embPath)
	emb, err := newEmbedder(embPath)
	if err != nil {
		det.close()
		return nil, fmt.Errorf("load embedder: %w", err)
	}

	slog.Info("vision models ready")

	return &Service{detector: det, embedder: emb}, nil
}

// Detect finds every face in the image and returns normalized bounding
// boxes with identity descriptors and JPEG snapshots. No faces is a valid
// empty result.
func (s *Service) Detect(ctx context.Context, data []byte) (*Result, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DetectionError{Reason: "decode image", Err: err}
	}

	bounds := img.Bounds()
	origW := bounds.Dx()
	origH := bounds.Dy()
	if origW == 0 || origH == 0 {
		return nil, &DetectionError{Reason: "empty image"}
	}

	result := &Result{
		Width:    origW,
		Height:   origH,
		Format:   format,
		FileSize: int64(len(data)),
	}

	start := time.Now()
	detW, detH := s.detector.inputSize()
	detInput := imageToCHW(img, detW, detH,
		[3]float32{127.5, 127.5, 127.5}, [3]float32{128.0, 128.0, 128.0})
	observability.PipelineStageDuration.WithLabelValues("preprocess").Observe(time.Since(start).Seconds())

	start = time.Now()
	detections, err := s.runDetect(detInput, origW, origH)
	if err != nil {
		return nil, &DetectionError{Reason: "run detection", Err: err}
	}
	observability.PipelineStageDuration.WithLabelValues("detect").Observe(time.Since(start).Seconds())

	embW, embH := s.embedder.inputSize()
	for _, det := range detections {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		crop := cropFace(img, det.bbox)
		if crop == nil {
			continue
		}

		start = time.Now()
		embInput := imageToCHW(crop, embW, embH,
			[3]float32{127.5, 127.5, 127.5}, [3]float32{127.5, 127.5, 127.5})
		descriptor, err := s.runEmbed(embInput)
		observability.PipelineStageDuration.WithLabelValues("embed").Observe(time.Since(start).Seconds())
		if err != nil {
			slog.Warn("embed face", "error", err)
			continue
		}

		result.Faces = append(result.Faces, Face{
			X:          det.bbox[0] / float32(origW),
			Y:          det.bbox[1] / float32(origH),
			Width:      (det.bbox[2] - det.bbox[0]) / float32(origW),
			Height:     (det.bbox[3] - det.bbox[1]) / float32(origH),
			Confidence: det.confidence,
			Descriptor: descriptor,
			Snapshot:   encodeJPEG(crop, 85),
		})
	}

	observability.FacesDetected.Add(float64(len(result.Faces)))

	return result, nil
}

// runDetect holds mu across the tensor copy and session run: two images
// in flight must not interleave writes to the shared input tensor.
func (s *Service) runDetect(input []float32, origW, origH int) ([]detection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detector.detect(input, origW, origH)
}

func (s *Service) runEmbed(input []float32) ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.embedder.extract(input)
}

// EmbedQuery extracts a descriptor from the most confident face in the
// image, for similarity search. Errors when the image has no face.
func (s *Service) EmbedQuery(ctx context.Context, data []byte) ([]float32, error) {
	result, err := s.Detect(ctx, data)
	if err != nil {
		return nil, err
	}
	if len(result.Faces) == 0 {
		return nil, &DetectionError{Reason: "no face in query image"}
	}

	best := result.Faces[0]
	for _, f := range result.Faces[1:] {
		if f.Confidence > best.Confidence {
			best = f
		}
	}
	return best.Descriptor, nil
}

// Close releases the ONNX sessions.
func (s *Service) Close() {
	if s.detector != nil {
		s.detector.close()
	}
	if s.embedder != nil {
		s.embedder.close()
	}
}
