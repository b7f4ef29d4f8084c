package creative

import (
	"errors"
	"testing"

	"adcraft/internal/domain"
)

func TestGenerateRequestApplyDefaults(t *testing.T) {
	req := GenerateRequest{Prompt: "x"}
	req.ApplyDefaults()

	if req.Size != "1024x1024" {
		t.Fatalf("Size = %q, want 1024x1024", req.Size)
	}
	if req.Background != "auto" || req.Quality != "auto" {
		t.Fatalf("Background = %q, Quality = %q, want auto/auto", req.Background, req.Quality)
	}
	if req.OutputFormat != "png" {
		t.Fatalf("OutputFormat = %q, want png", req.OutputFormat)
	}
}

func TestGenerateRequestValidate(t *testing.T) {
	bad := 150
	good := 80

	tests := []struct {
		name    string
		mutate  func(*GenerateRequest)
		wantErr bool
	}{
		{name: "valid defaults", mutate: func(r *GenerateRequest) {}, wantErr: false},
		{name: "missing prompt", mutate: func(r *GenerateRequest) { r.Prompt = "" }, wantErr: true},
		{name: "bad size", mutate: func(r *GenerateRequest) { r.Size = "512x512" }, wantErr: true},
		{name: "bad background", mutate: func(r *GenerateRequest) { r.Background = "blurred" }, wantErr: true},
		{name: "bad quality", mutate: func(r *GenerateRequest) { r.Quality = "ultra" }, wantErr: true},
		{name: "bad format", mutate: func(r *GenerateRequest) { r.OutputFormat = "gif" }, wantErr: true},
		{name: "compression out of range", mutate: func(r *GenerateRequest) { r.OutputCompression = &bad }, wantErr: true},
		{name: "compression in range", mutate: func(r *GenerateRequest) { r.OutputCompression = &good }, wantErr: false},
		{name: "portrait size", mutate: func(r *GenerateRequest) { r.Size = "1024x1536" }, wantErr: false},
		{name: "auto size", mutate: func(r *GenerateRequest) { r.Size = "auto" }, wantErr: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := GenerateRequest{Prompt: "x"}
			req.ApplyDefaults()
			tc.mutate(&req)
			err := req.Validate()
			if tc.wantErr {
				if !errors.Is(err, domain.ErrInvalidRequest) {
					t.Fatalf("Validate() = %v, want ErrInvalidRequest", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestEditRequestValidate(t *testing.T) {
	img := []byte("img")
	mask := []byte("mask")

	tests := []struct {
		name    string
		req     EditRequest
		wantErr bool
	}{
		{name: "one image", req: EditRequest{Prompt: "x", Images: [][]byte{img}}},
		{name: "no images", req: EditRequest{Prompt: "x"}, wantErr: true},
		{name: "no prompt", req: EditRequest{Images: [][]byte{img}}, wantErr: true},
		{name: "mask with one image", req: EditRequest{Prompt: "x", Images: [][]byte{img}, Mask: mask}},
		{name: "mask with two images", req: EditRequest{Prompt: "x", Images: [][]byte{img, img}, Mask: mask}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.req.ApplyDefaults()
			err := tc.req.Validate()
			if tc.wantErr {
				if !errors.Is(err, domain.ErrInvalidRequest) {
					t.Fatalf("Validate() = %v, want ErrInvalidRequest", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
		})
	}
}
