package creative

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"adcraft/internal/domain"
	"adcraft/internal/imaging"
	"adcraft/internal/infra"
	"adcraft/internal/providers/openai"
	"adcraft/internal/storage"
)

// ModelClient is the vision/generation collaborator contract.
type ModelClient interface {
	DescribeStyle(ctx context.Context, imageDataURL string) (string, error)
	GenerateImage(ctx context.Context, p openai.GenerateParams) (string, error)
	EditImage(ctx context.Context, p openai.EditParams) (string, error)
}

// MetadataStore records artifact metadata. It may be absent; persistence then
// degrades to storage-only.
type MetadataStore interface {
	Insert(ctx context.Context, rec domain.ImageRecord) error
}

// Options wires the collaborators a Service needs.
type Options struct {
	Model    ModelClient
	Store    storage.ObjectStore
	Local    *storage.FileStore
	Metadata MetadataStore
	Logger   *infra.Logger
	TempDir  string
}

// Service sequences the generation pipelines: validate, normalize inputs,
// extract styles, compose the prompt, invoke the model, persist. Each request
// is independent; no state is retained between runs.
type Service struct {
	model   ModelClient
	store   storage.ObjectStore
	local   *storage.FileStore
	meta    MetadataStore
	logger  *infra.Logger
	tempDir string
}

// NewService constructs a pipeline service.
func NewService(opts Options) (*Service, error) {
	if opts.Model == nil {
		return nil, errors.New("creative: model client is required")
	}
	if opts.Store == nil {
		return nil, errors.New("creative: object store is required")
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Service{
		model:   opts.Model,
		store:   opts.Store,
		local:   opts.Local,
		meta:    opts.Metadata,
		logger:  logger,
		tempDir: opts.TempDir,
	}, nil
}

// Generate produces a new ad image from a prompt. Reference images, when
// present, are style-extracted one at a time; a failing reference is logged
// and skipped rather than aborting the run.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*domain.GeneratedArtifact, error) {
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tmp := newTempSet(s.tempDir, s.logger)
	defer tmp.release()

	var hints []string
	for i, raw := range req.ReferenceImages {
		normalized, err := imaging.Normalize(raw)
		if err != nil {
			s.logger.Warn().Err(err).Int("reference", i+1).Msg("reference image unusable, skipping hint")
			continue
		}
		if _, err := tmp.add("ref_input", normalized); err != nil {
			s.logger.Warn().Err(err).Int("reference", i+1).Msg("buffering reference failed, skipping hint")
			continue
		}
		hint, err := s.model.DescribeStyle(ctx, dataURL(normalized))
		if err != nil {
			s.logger.Warn().Err(err).Int("reference", i+1).Msg("style extraction failed, skipping hint")
			continue
		}
		hints = append(hints, hint)
	}

	prompt := BuildPrompt(PromptParts{Base: req.Prompt, StyleHints: hints, AdText: req.AdText})
	s.logger.Debug().Str("prompt", prompt).Int("style_hints", len(hints)).Msg("generating image")

	payload, err := s.model.GenerateImage(ctx, openai.GenerateParams{
		Prompt:            prompt,
		Size:              req.Size,
		Background:        req.Background,
		Quality:           req.Quality,
		OutputFormat:      req.OutputFormat,
		OutputCompression: req.OutputCompression,
	})
	if err != nil {
		return nil, fmt.Errorf("generate image: %w", err)
	}

	filename, url, err := s.persist(ctx, payload, domain.FolderGenerated, req.OutputFormat, persistMeta{
		Prompt:   prompt,
		AdText:   req.AdText,
		Category: req.Category,
		Size:     req.Size,
	})
	if err != nil {
		return nil, err
	}
	return &domain.GeneratedArtifact{Filename: filename, URL: url, Prompt: prompt, AdText: req.AdText}, nil
}

// Edit applies an arbitrary edit prompt to one or more user-supplied images,
// optionally constrained by a mask. Undecodable inputs are a client error.
func (s *Service) Edit(ctx context.Context, req EditRequest) (*domain.GeneratedArtifact, error) {
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tmp := newTempSet(s.tempDir, s.logger)
	defer tmp.release()

	sources := make([][]byte, 0, len(req.Images))
	for _, raw := range req.Images {
		normalized, err := imaging.Normalize(raw)
		if err != nil {
			return nil, err
		}
		if _, err := tmp.add("edit_input", normalized); err != nil {
			return nil, err
		}
		sources = append(sources, normalized)
	}

	var mask []byte
	if len(req.Mask) > 0 {
		normalized, err := imaging.NormalizeMask(req.Mask)
		if err != nil {
			return nil, err
		}
		if _, err := tmp.add("edit_mask", normalized); err != nil {
			return nil, err
		}
		mask = normalized
	}

	prompt := BuildPrompt(PromptParts{Base: req.Prompt, AdText: req.AdText})
	s.logger.Debug().Int("sources", len(sources)).Bool("mask", mask != nil).Msg("editing image")

	payload, err := s.model.EditImage(ctx, openai.EditParams{
		Prompt:            prompt,
		Images:            sources,
		Mask:              mask,
		Size:              req.Size,
		Background:        req.Background,
		Quality:           req.Quality,
		OutputCompression: req.OutputCompression,
	})
	if err != nil {
		return nil, fmt.Errorf("edit image: %w", err)
	}

	filename, url, err := s.persist(ctx, payload, domain.FolderEdited, "", persistMeta{
		Prompt: prompt,
		AdText: req.AdText,
		Size:   req.Size,
	})
	if err != nil {
		return nil, err
	}
	return &domain.GeneratedArtifact{Filename: filename, URL: url, Prompt: prompt, AdText: req.AdText}, nil
}

// ReferenceStyleTransfer generates an image in the style of exactly one
// reference. Style extraction failure aborts the run: fidelity to the
// reference is the whole point of this entry point.
func (s *Service) ReferenceStyleTransfer(ctx context.Context, reference []byte, prompt, size, adText string) (*domain.GeneratedArtifact, error) {
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt is required", domain.ErrInvalidRequest)
	}
	if size == "" {
		size = "1024x1024"
	}
	if err := validateSize(size); err != nil {
		return nil, err
	}

	normalized, err := imaging.Normalize(reference)
	if err != nil {
		return nil, err
	}

	hint, err := s.model.DescribeStyle(ctx, dataURL(normalized))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStyleExtraction, err)
	}

	enhanced := BuildPrompt(PromptParts{Base: prompt, StyleHints: []string{hint}, Singular: true, AdText: adText})
	s.logger.Debug().Str("prompt", enhanced).Msg("generating style transfer")

	payload, err := s.model.GenerateImage(ctx, openai.GenerateParams{
		Prompt:  enhanced,
		Size:    size,
		Quality: "high",
	})
	if err != nil {
		return nil, fmt.Errorf("generate image: %w", err)
	}

	filename, url, err := s.persist(ctx, payload, domain.FolderGenerated, "", persistMeta{
		Prompt: enhanced,
		AdText: adText,
		Size:   size,
	})
	if err != nil {
		return nil, err
	}
	return &domain.GeneratedArtifact{Filename: filename, URL: url, Prompt: enhanced, AdText: adText}, nil
}

// Composite generates one image from several reference images passed directly
// as edit sources. A reference that fails to normalize is skipped; its
// temporary buffer is still released with the rest.
func (s *Service) Composite(ctx context.Context, references [][]byte, prompt, size, adText string) (*domain.GeneratedArtifact, error) {
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt is required", domain.ErrInvalidRequest)
	}
	if len(references) == 0 {
		return nil, fmt.Errorf("%w: at least one reference image is required", domain.ErrInvalidRequest)
	}
	if size == "" {
		size = "1024x1024"
	}
	if err := validateSize(size); err != nil {
		return nil, err
	}

	tmp := newTempSet(s.tempDir, s.logger)
	defer tmp.release()

	sources := make([][]byte, 0, len(references))
	for i, raw := range references {
		// The raw upload is buffered before decoding so a corrupt image
		// still leaves a resource for the release path to account for.
		if _, err := tmp.add("composite_input", raw); err != nil {
			return nil, err
		}
		normalized, err := imaging.Normalize(raw)
		if err != nil {
			s.logger.Warn().Err(err).Int("reference", i+1).Msg("reference image unusable, skipping")
			continue
		}
		sources = append(sources, normalized)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: no usable reference images", domain.ErrInvalidRequest)
	}

	enhanced := BuildPrompt(PromptParts{Base: prompt, AdText: adText})
	s.logger.Debug().Int("sources", len(sources)).Msg("generating composite")

	payload, err := s.model.EditImage(ctx, openai.EditParams{
		Prompt:  enhanced,
		Images:  sources,
		Size:    size,
		Quality: "standard",
	})
	if err != nil {
		return nil, fmt.Errorf("composite image: %w", err)
	}

	filename, url, err := s.persist(ctx, payload, domain.FolderGenerated, "", persistMeta{
		Prompt: enhanced,
		AdText: adText,
		Size:   size,
	})
	if err != nil {
		return nil, err
	}
	return &domain.GeneratedArtifact{Filename: filename, URL: url, Prompt: enhanced, AdText: adText}, nil
}

// MaskEdit edits one image constrained by a mask whose transparent regions
// mark the editable area. The mask's channel structure is validated before
// the collaborator is invoked.
func (s *Service) MaskEdit(ctx context.Context, image, mask []byte, prompt, size, adText string) (*domain.GeneratedArtifact, error) {
	if prompt == "" {
		return nil, fmt.Errorf("%w: prompt is required", domain.ErrInvalidRequest)
	}
	if size == "" {
		size = "1024x1024"
	}
	if err := validateSize(size); err != nil {
		return nil, err
	}

	tmp := newTempSet(s.tempDir, s.logger)
	defer tmp.release()

	source, err := imaging.Normalize(image)
	if err != nil {
		return nil, err
	}
	if _, err := tmp.add("mask_input", source); err != nil {
		return nil, err
	}

	rgbaMask, err := imaging.NormalizeMask(mask)
	if err != nil {
		return nil, err
	}
	if _, err := tmp.add("mask", rgbaMask); err != nil {
		return nil, err
	}

	enhanced := BuildPrompt(PromptParts{Base: prompt, AdText: adText})
	s.logger.Debug().Str("prompt", enhanced).Msg("editing with mask")

	payload, err := s.model.EditImage(ctx, openai.EditParams{
		Prompt:  enhanced,
		Images:  [][]byte{source},
		Mask:    rgbaMask,
		Size:    size,
		Quality: "standard",
	})
	if err != nil {
		return nil, fmt.Errorf("mask edit: %w", err)
	}

	filename, url, err := s.persist(ctx, payload, domain.FolderEdited, "", persistMeta{
		Prompt: enhanced,
		AdText: adText,
		Size:   size,
	})
	if err != nil {
		return nil, err
	}
	return &domain.GeneratedArtifact{Filename: filename, URL: url, Prompt: enhanced, AdText: adText}, nil
}
