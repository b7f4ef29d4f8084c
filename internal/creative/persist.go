package creative

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"

	"adcraft/internal/domain"
)

type persistMeta struct {
	Prompt      string
	AdText      string
	Category    string
	Size        string
	Title       string
	IsReference bool
}

// artifactNaming maps the format requested from the model onto the file
// extension and upload content type. Anything unset means the model default,
// which is PNG.
func artifactNaming(format string) (string, string) {
	switch format {
	case "jpeg":
		return "jpg", "image/jpeg"
	case "webp":
		return "webp", "image/webp"
	default:
		return "png", "image/png"
	}
}

// persist decodes the transport payload, uploads it under folder/<filename>,
// and records metadata. The filename extension and content type follow the
// format the model was asked for. An upload failure degrades to the local
// filesystem store; a metadata failure is logged and swallowed because the
// artifact itself is the deliverable.
func (s *Service) persist(ctx context.Context, payload, folder, format string, meta persistMeta) (string, string, error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", "", fmt.Errorf("%w: decode image payload: %v", domain.ErrProviderFailure, err)
	}

	ext, contentType := artifactNaming(format)
	filename := fmt.Sprintf("%s_%s.%s", folder, uuid.NewString(), ext)
	path := folder + "/" + filename

	publicURL, err := s.store.Upload(ctx, path, data, contentType)
	if err != nil {
		if s.local == nil {
			return "", "", fmt.Errorf("persist artifact: %w", err)
		}
		s.logger.Warn().Err(err).Str("path", path).Msg("upload failed, falling back to local storage")
		publicURL, err = s.local.Upload(ctx, path, data, contentType)
		if err != nil {
			return "", "", fmt.Errorf("persist artifact: %w", err)
		}
	}

	if s.meta != nil {
		rec := domain.ImageRecord{
			ImageID:     filename,
			StoragePath: path,
			PublicURL:   publicURL,
			Prompt:      meta.Prompt,
			AdText:      meta.AdText,
			Category:    meta.Category,
			Size:        meta.Size,
			IsReference: meta.IsReference,
			Title:       meta.Title,
		}
		if err := s.meta.Insert(ctx, rec); err != nil {
			s.logger.Warn().Err(err).Str("image_id", filename).Msg("metadata insert failed")
		}
	}

	return filename, publicURL, nil
}

func dataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
