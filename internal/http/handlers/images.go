package handlers

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"adcraft/internal/creative"
)

// multipart uploads are capped well above the model's input limits.
const maxUploadBytes = 64 << 20

type generateAdRequest struct {
	Prompt            string `json:"prompt"`
	Size              string `json:"size"`
	Background        string `json:"background"`
	Quality           string `json:"quality"`
	OutputFormat      string `json:"output_format"`
	OutputCompression *int   `json:"output_compression"`
	AdText            string `json:"ad_text"`
	Category          string `json:"category"`
}

// GenerateAd creates a new ad image from a JSON prompt payload.
func (a *App) GenerateAd(w http.ResponseWriter, r *http.Request) {
	var req generateAdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	artifact, err := a.Pipeline.Generate(r.Context(), creative.GenerateRequest{
		Prompt:            req.Prompt,
		Size:              req.Size,
		Background:        req.Background,
		Quality:           req.Quality,
		OutputFormat:      req.OutputFormat,
		OutputCompression: req.OutputCompression,
		AdText:            req.AdText,
		Category:          req.Category,
	})
	if err != nil {
		a.pipelineError(w, err)
		return
	}
	a.json(w, http.StatusOK, artifact)
}

// GenerateWithReferences creates an ad image, folding the style of each
// uploaded reference image into the prompt on a best-effort basis.
func (a *App) GenerateWithReferences(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}
	references, err := readFormFiles(r, "reference_images")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	artifact, err := a.Pipeline.Generate(r.Context(), creative.GenerateRequest{
		Prompt:            r.FormValue("prompt"),
		Size:              r.FormValue("size"),
		Background:        r.FormValue("background"),
		Quality:           r.FormValue("quality"),
		OutputFormat:      r.FormValue("output_format"),
		OutputCompression: formIntPtr(r, "output_compression"),
		AdText:            r.FormValue("ad_text"),
		Category:          r.FormValue("category"),
		ReferenceImages:   references,
	})
	if err != nil {
		a.pipelineError(w, err)
		return
	}
	a.json(w, http.StatusOK, artifact)
}

// EditImage applies an edit prompt to one or more uploaded images with an
// optional mask.
func (a *App) EditImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}
	images, err := readFormFiles(r, "images")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	mask, err := readOptionalFormFile(r, "mask")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	artifact, err := a.Pipeline.Edit(r.Context(), creative.EditRequest{
		Images:            images,
		Prompt:            r.FormValue("prompt"),
		Mask:              mask,
		Size:              r.FormValue("size"),
		Background:        r.FormValue("background"),
		Quality:           r.FormValue("quality"),
		OutputCompression: formIntPtr(r, "output_compression"),
		AdText:            r.FormValue("ad_text"),
	})
	if err != nil {
		a.pipelineError(w, err)
		return
	}
	a.json(w, http.StatusOK, artifact)
}

// ReferenceStyleTransfer generates an image in the style of exactly one
// uploaded reference.
func (a *App) ReferenceStyleTransfer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}
	reference, err := readFormFile(r, "reference_image")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	artifact, err := a.Pipeline.ReferenceStyleTransfer(r.Context(), reference,
		r.FormValue("prompt"), r.FormValue("size"), r.FormValue("ad_text"))
	if err != nil {
		a.pipelineError(w, err)
		return
	}
	a.json(w, http.StatusOK, artifact)
}

// CompositeAd generates one image from several uploaded reference images.
func (a *App) CompositeAd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}
	references, err := readFormFiles(r, "reference_images")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	artifact, err := a.Pipeline.Composite(r.Context(), references,
		r.FormValue("prompt"), r.FormValue("size"), r.FormValue("ad_text"))
	if err != nil {
		a.pipelineError(w, err)
		return
	}
	a.json(w, http.StatusOK, artifact)
}

// MaskEdit edits one uploaded image constrained by an uploaded mask.
func (a *App) MaskEdit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}
	image, err := readFormFile(r, "image")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	mask, err := readFormFile(r, "mask")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	artifact, err := a.Pipeline.MaskEdit(r.Context(), image, mask,
		r.FormValue("prompt"), r.FormValue("size"), r.FormValue("ad_text"))
	if err != nil {
		a.pipelineError(w, err)
		return
	}
	a.json(w, http.StatusOK, artifact)
}

func readFormFile(r *http.Request, field string) ([]byte, error) {
	data, err := readOptionalFormFile(r, field)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, &missingFieldError{field: field}
	}
	return data, nil
}

func readOptionalFormFile(r *http.Request, field string) ([]byte, error) {
	if r.MultipartForm == nil {
		return nil, &missingFieldError{field: field}
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil, nil
	}
	return readFileHeader(files[0])
}

func readFormFiles(r *http.Request, field string) ([][]byte, error) {
	if r.MultipartForm == nil {
		return nil, &missingFieldError{field: field}
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil, &missingFieldError{field: field}
	}
	out := make([][]byte, 0, len(files))
	for _, fh := range files {
		data, err := readFileHeader(fh)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func formIntPtr(r *http.Request, field string) *int {
	v := strings.TrimSpace(r.FormValue(field))
	if v == "" {
		return nil
	}
	if i, err := strconv.Atoi(v); err == nil {
		return &i
	}
	return nil
}

type missingFieldError struct {
	field string
}

func (e *missingFieldError) Error() string {
	return e.field + " is required"
}
