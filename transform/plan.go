// Package transform validates transformation parameters and applies them to
// uploaded images.
package transform

import (
	"fmt"
	"strings"
)

// Step is one image operation. The set is closed: Resize, EncodeJPEG and
// EncodeWebP are the only implementations.
type Step interface {
	step()
	String() string
}

// Resize fits the image inside a MaxDim x MaxDim box without cropping or
// upscaling.
type Resize struct{ MaxDim int }

// EncodeJPEG selects JPEG output at Quality.
type EncodeJPEG struct{ Quality int }

// EncodeWebP selects WebP output at Quality.
type EncodeWebP struct{ Quality int }

func (Resize) step()     {}
func (EncodeJPEG) step() {}
func (EncodeWebP) step() {}

func (s Resize) String() string     { return fmt.Sprintf("thumbnail(%d)", s.MaxDim) }
func (s EncodeJPEG) String() string { return fmt.Sprintf("asJpeg(%d)", s.Quality) }
func (s EncodeWebP) String() string { return fmt.Sprintf("asWebp(%d)", s.Quality) }

// Plan is the validated, ordered list of steps for one upload. Steps always
// appear in the order Resize, EncodeJPEG, EncodeWebP; when both encodes are
// present the later one (WebP) decides the output.
type Plan struct {
	steps []Step
}

// NewPlan builds a plan from optional values; zero means absent. Callers
// are expected to have range-checked the values (see Validate).
func NewPlan(thumbnail, jpegQuality, webpQuality int) Plan {
	var steps []Step
	if thumbnail > 0 {
		steps = append(steps, Resize{MaxDim: thumbnail})
	}
	if jpegQuality > 0 {
		steps = append(steps, EncodeJPEG{Quality: jpegQuality})
	}
	if webpQuality > 0 {
		steps = append(steps, EncodeWebP{Quality: webpQuality})
	}
	return Plan{steps: steps}
}

// Steps returns a copy of the ordered steps.
func (p Plan) Steps() []Step {
	out := make([]Step, len(p.steps))
	copy(out, p.steps)
	return out
}

// Empty reports whether the plan requests no operation at all.
func (p Plan) Empty() bool { return len(p.steps) == 0 }

// ThumbnailMaxDimension returns the resize bound, if requested.
func (p Plan) ThumbnailMaxDimension() (int, bool) {
	for _, s := range p.steps {
		if r, ok := s.(Resize); ok {
			return r.MaxDim, true
		}
	}
	return 0, false
}

// JPEGQuality returns the requested JPEG quality, if any.
func (p Plan) JPEGQuality() (int, bool) {
	for _, s := range p.steps {
		if e, ok := s.(EncodeJPEG); ok {
			return e.Quality, true
		}
	}
	return 0, false
}

// WebPQuality returns the requested WebP quality, if any.
func (p Plan) WebPQuality() (int, bool) {
	for _, s := range p.steps {
		if e, ok := s.(EncodeWebP); ok {
			return e.Quality, true
		}
	}
	return 0, false
}

func (p Plan) String() string {
	if p.Empty() {
		return "none"
	}
	parts := make([]string, len(p.steps))
	for i, s := range p.steps {
		parts[i] = s.String()
	}
	return strings.Join(parts, " -> ")
}
