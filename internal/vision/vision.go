package vision

import "context"

// Face is one detected face: a bounding box normalized to the image
// dimensions (each coordinate in [0,1]), a detection confidence in [0,1],
// an L2-normalized identity descriptor, and a JPEG crop usable as an
// avatar for newly created persons.
type Face struct {
	X          float32
	Y          float32
	Width      float32
	Height     float32
	Confidence float32
	Descriptor []float32
	Snapshot   []byte
}

// Result is the output of detecting faces in one image.
type Result struct {
	Width    int
	Height   int
	Format   string
	FileSize int64
	Faces    []Face
}

// FaceDetector finds faces in raw image bytes. An image with no faces is a
// valid empty result, not an error. Implementations must be pure: no
// registry or store mutation.
type FaceDetector interface {
	Detect(ctx context.Context, data []byte) (*Result, error)
}

// DetectionError marks a per-image detection failure: the image could not
// be decoded or the model is unavailable. Callers treat it as a skipped
// image, never as fatal to a batch.
type DetectionError struct {
	Reason string
	Err    error
}

func (e *DetectionError) Error() string {
	if e.Err != nil {
		return "detection failed: " + e.Reason + ": " + e.Err.Error()
	}
	return "detection failed: " + e.Reason
}

func (e *DetectionError) Unwrap() error { return e.Err }
