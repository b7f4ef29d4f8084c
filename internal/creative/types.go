package creative

import (
	"fmt"

	"adcraft/internal/domain"
)

// Supported parameter sets for the image model. Requests carrying any other
// value are rejected before a single collaborator call is made.
var (
	supportedSizes = map[string]struct{}{
		"1024x1024": {},
		"1024x1536": {},
		"1536x1024": {},
		"auto":      {},
	}
	supportedBackgrounds = map[string]struct{}{
		"transparent": {},
		"opaque":      {},
		"auto":        {},
	}
	supportedQualities = map[string]struct{}{
		"standard": {},
		"low":      {},
		"medium":   {},
		"high":     {},
		"auto":     {},
	}
	supportedFormats = map[string]struct{}{
		"png":  {},
		"jpeg": {},
		"webp": {},
	}
)

// GenerateRequest is the validated input for a text-to-image run, optionally
// seeded with reference images whose styles are folded into the prompt.
type GenerateRequest struct {
	Prompt            string
	Size              string
	Background        string
	Quality           string
	OutputFormat      string
	OutputCompression *int
	AdText            string
	Category          string
	ReferenceImages   [][]byte
}

// ApplyDefaults fills unset fields with the service defaults.
func (r *GenerateRequest) ApplyDefaults() {
	if r.Size == "" {
		r.Size = "1024x1024"
	}
	if r.Background == "" {
		r.Background = "auto"
	}
	if r.Quality == "" {
		r.Quality = "auto"
	}
	if r.OutputFormat == "" {
		r.OutputFormat = "png"
	}
}

// Validate rejects requests whose enumerated fields fall outside the
// supported sets.
func (r *GenerateRequest) Validate() error {
	if r.Prompt == "" {
		return fmt.Errorf("%w: prompt is required", domain.ErrInvalidRequest)
	}
	if err := validateSize(r.Size); err != nil {
		return err
	}
	if _, ok := supportedBackgrounds[r.Background]; !ok {
		return fmt.Errorf("%w: unsupported background %q", domain.ErrInvalidRequest, r.Background)
	}
	if _, ok := supportedQualities[r.Quality]; !ok {
		return fmt.Errorf("%w: unsupported quality %q", domain.ErrInvalidRequest, r.Quality)
	}
	if _, ok := supportedFormats[r.OutputFormat]; !ok {
		return fmt.Errorf("%w: unsupported output format %q", domain.ErrInvalidRequest, r.OutputFormat)
	}
	return validateCompression(r.OutputCompression)
}

// EditRequest is the validated input for an edit run over one or more
// user-supplied images with an optional mask.
type EditRequest struct {
	Images            [][]byte
	Prompt            string
	Mask              []byte
	Size              string
	Background        string
	Quality           string
	OutputCompression *int
	AdText            string
}

// ApplyDefaults fills unset fields with the service defaults.
func (r *EditRequest) ApplyDefaults() {
	if r.Size == "" {
		r.Size = "1024x1024"
	}
	if r.Background == "" {
		r.Background = "auto"
	}
	if r.Quality == "" {
		r.Quality = "auto"
	}
}

// Validate rejects edit requests with no sources or out-of-set parameters.
func (r *EditRequest) Validate() error {
	if r.Prompt == "" {
		return fmt.Errorf("%w: prompt is required", domain.ErrInvalidRequest)
	}
	if len(r.Images) == 0 {
		return fmt.Errorf("%w: at least one image is required", domain.ErrInvalidRequest)
	}
	if len(r.Mask) > 0 && len(r.Images) != 1 {
		return fmt.Errorf("%w: a mask pairs with exactly one image", domain.ErrInvalidRequest)
	}
	if err := validateSize(r.Size); err != nil {
		return err
	}
	if _, ok := supportedBackgrounds[r.Background]; !ok {
		return fmt.Errorf("%w: unsupported background %q", domain.ErrInvalidRequest, r.Background)
	}
	if _, ok := supportedQualities[r.Quality]; !ok {
		return fmt.Errorf("%w: unsupported quality %q", domain.ErrInvalidRequest, r.Quality)
	}
	return validateCompression(r.OutputCompression)
}

func validateSize(size string) error {
	if _, ok := supportedSizes[size]; !ok {
		return fmt.Errorf("%w: unsupported size %q, allowed: 1024x1024, 1024x1536, 1536x1024, auto", domain.ErrInvalidRequest, size)
	}
	return nil
}

func validateCompression(c *int) error {
	if c != nil && (*c < 0 || *c > 100) {
		return fmt.Errorf("%w: output compression must be between 0 and 100", domain.ErrInvalidRequest)
	}
	return nil
}
