package creative

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adcraft/internal/domain"
	"adcraft/internal/providers/openai"
	"adcraft/internal/storage"
)

type fakeModel struct {
	styleHint   string
	describeErr error
	generateErr error
	editErr     error

	describeCalls int
	generateCalls int
	editCalls     int
	lastGenerate  openai.GenerateParams
	lastEdit      openai.EditParams
}

func (m *fakeModel) DescribeStyle(ctx context.Context, imageDataURL string) (string, error) {
	m.describeCalls++
	if m.describeErr != nil {
		return "", m.describeErr
	}
	return m.styleHint, nil
}

func (m *fakeModel) GenerateImage(ctx context.Context, p openai.GenerateParams) (string, error) {
	m.generateCalls++
	m.lastGenerate = p
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return base64.StdEncoding.EncodeToString([]byte("generated-bytes")), nil
}

func (m *fakeModel) EditImage(ctx context.Context, p openai.EditParams) (string, error) {
	m.editCalls++
	m.lastEdit = p
	if m.editErr != nil {
		return "", m.editErr
	}
	return base64.StdEncoding.EncodeToString([]byte("edited-bytes")), nil
}

type fakeStore struct {
	uploadErr    error
	uploads      []string
	contentTypes []string
}

func (s *fakeStore) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.uploads = append(s.uploads, path)
	s.contentTypes = append(s.contentTypes, contentType)
	return "https://cdn.example.com/" + path, nil
}

func (s *fakeStore) List(ctx context.Context, folder string) ([]storage.Entry, error) { return nil, nil }
func (s *fakeStore) Remove(ctx context.Context, path string) error                    { return nil }
func (s *fakeStore) PublicURL(path string) string                                     { return "https://cdn.example.com/" + path }

type fakeMeta struct {
	insertErr error
	records   []domain.ImageRecord
}

func (m *fakeMeta) Insert(ctx context.Context, rec domain.ImageRecord) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.records = append(m.records, rec)
	return nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestService(t *testing.T, model *fakeModel, store *fakeStore, meta *fakeMeta) (*Service, string) {
	t.Helper()
	tempDir := t.TempDir()
	var metaStore MetadataStore
	if meta != nil {
		metaStore = meta
	}
	svc, err := NewService(Options{
		Model:    model,
		Store:    store,
		Metadata: metaStore,
		TempDir:  tempDir,
	})
	require.NoError(t, err)
	return svc, tempDir
}

func tempFileCount(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entries)
}

func TestGenerateRejectsBeforeAnyCall(t *testing.T) {
	model := &fakeModel{}
	store := &fakeStore{}
	svc, _ := newTestService(t, model, store, nil)

	_, err := svc.Generate(context.Background(), GenerateRequest{Prompt: "x", Size: "512x512"})
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.Zero(t, model.describeCalls)
	assert.Zero(t, model.generateCalls)
	assert.Empty(t, store.uploads)
}

func TestGenerateSkipsFailingReference(t *testing.T) {
	model := &fakeModel{describeErr: errors.New("vision down")}
	store := &fakeStore{}
	svc, tempDir := newTestService(t, model, store, nil)

	artifact, err := svc.Generate(context.Background(), GenerateRequest{
		Prompt:          "a travel ad",
		ReferenceImages: [][]byte{pngBytes(t)},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, model.describeCalls)
	assert.Equal(t, "a travel ad", model.lastGenerate.Prompt)
	assert.True(t, strings.HasPrefix(artifact.Filename, "generated_"))
	assert.Zero(t, tempFileCount(t, tempDir))
}

func TestGenerateFoldsStyleHints(t *testing.T) {
	model := &fakeModel{styleHint: "warm film look"}
	store := &fakeStore{}
	meta := &fakeMeta{}
	svc, _ := newTestService(t, model, store, meta)

	ref := pngBytes(t)
	artifact, err := svc.Generate(context.Background(), GenerateRequest{
		Prompt:          "a travel ad",
		AdText:          "Fly today",
		Category:        "travel",
		ReferenceImages: [][]byte{ref, ref},
	})
	require.NoError(t, err)
	want := "a travel ad. Style hints: warm film look; warm film look. Include the following text in the ad: 'Fly today'"
	assert.Equal(t, want, model.lastGenerate.Prompt)
	assert.Equal(t, want, artifact.Prompt)

	require.Len(t, store.uploads, 1)
	assert.True(t, strings.HasPrefix(store.uploads[0], "generated/generated_"))

	require.Len(t, meta.records, 1)
	assert.Equal(t, "travel", meta.records[0].Category)
	assert.Equal(t, "Fly today", meta.records[0].AdText)
}

func TestGeneratePassesParams(t *testing.T) {
	model := &fakeModel{}
	store := &fakeStore{}
	svc, _ := newTestService(t, model, store, nil)

	compression := 80
	_, err := svc.Generate(context.Background(), GenerateRequest{
		Prompt:            "x",
		Size:              "1536x1024",
		Background:        "transparent",
		Quality:           "high",
		OutputFormat:      "webp",
		OutputCompression: &compression,
	})
	require.NoError(t, err)
	assert.Equal(t, "1536x1024", model.lastGenerate.Size)
	assert.Equal(t, "transparent", model.lastGenerate.Background)
	assert.Equal(t, "high", model.lastGenerate.Quality)
	assert.Equal(t, "webp", model.lastGenerate.OutputFormat)
	require.NotNil(t, model.lastGenerate.OutputCompression)
	assert.Equal(t, 80, *model.lastGenerate.OutputCompression)
}

func TestGenerateOutputFormatDrivesPersistence(t *testing.T) {
	tests := []struct {
		format          string
		wantExt         string
		wantContentType string
	}{
		{format: "", wantExt: ".png", wantContentType: "image/png"},
		{format: "png", wantExt: ".png", wantContentType: "image/png"},
		{format: "jpeg", wantExt: ".jpg", wantContentType: "image/jpeg"},
		{format: "webp", wantExt: ".webp", wantContentType: "image/webp"},
	}

	for _, tc := range tests {
		t.Run("format "+tc.format, func(t *testing.T) {
			model := &fakeModel{}
			store := &fakeStore{}
			svc, _ := newTestService(t, model, store, nil)

			artifact, err := svc.Generate(context.Background(), GenerateRequest{
				Prompt:       "x",
				OutputFormat: tc.format,
			})
			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(artifact.Filename, tc.wantExt),
				"filename %q does not carry %s", artifact.Filename, tc.wantExt)
			require.Len(t, store.contentTypes, 1)
			assert.Equal(t, tc.wantContentType, store.contentTypes[0])
		})
	}
}

func TestEditPersistsAsPNG(t *testing.T) {
	model := &fakeModel{}
	store := &fakeStore{}
	svc, _ := newTestService(t, model, store, nil)

	artifact, err := svc.Edit(context.Background(), EditRequest{
		Prompt: "x",
		Images: [][]byte{pngBytes(t)},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(artifact.Filename, ".png"))
	require.Len(t, store.contentTypes, 1)
	assert.Equal(t, "image/png", store.contentTypes[0])
}

func TestGenerateProviderFailure(t *testing.T) {
	model := &fakeModel{generateErr: &openai.APIError{Kind: openai.KindQuota, Status: 429, Message: "quota"}}
	store := &fakeStore{}
	svc, tempDir := newTestService(t, model, store, nil)

	_, err := svc.Generate(context.Background(), GenerateRequest{
		Prompt:          "x",
		ReferenceImages: [][]byte{pngBytes(t)},
	})
	require.ErrorIs(t, err, domain.ErrQuotaExceeded)
	assert.Empty(t, store.uploads)
	assert.Zero(t, tempFileCount(t, tempDir))
}

func TestReferenceStyleTransferStrict(t *testing.T) {
	model := &fakeModel{describeErr: errors.New("vision down")}
	store := &fakeStore{}
	svc, _ := newTestService(t, model, store, nil)

	_, err := svc.ReferenceStyleTransfer(context.Background(), pngBytes(t), "a shoe ad", "", "")
	require.ErrorIs(t, err, domain.ErrStyleExtraction)
	assert.Zero(t, model.generateCalls)
	assert.Empty(t, store.uploads)
}

func TestReferenceStyleTransferPromptAndQuality(t *testing.T) {
	model := &fakeModel{styleHint: "bold flat design"}
	store := &fakeStore{}
	svc, _ := newTestService(t, model, store, nil)

	artifact, err := svc.ReferenceStyleTransfer(context.Background(), pngBytes(t), "a shoe ad", "", "Run fast")
	require.NoError(t, err)
	want := "a shoe ad. Style hint: bold flat design. Include the following text in the ad: 'Run fast'"
	assert.Equal(t, want, model.lastGenerate.Prompt)
	assert.Equal(t, "high", model.lastGenerate.Quality)
	assert.Equal(t, "1024x1024", model.lastGenerate.Size)
	assert.True(t, strings.HasPrefix(artifact.Filename, "generated_"))
}

func TestCompositeSkipsCorruptReference(t *testing.T) {
	model := &fakeModel{}
	store := &fakeStore{}
	svc, tempDir := newTestService(t, model, store, nil)

	good := pngBytes(t)
	_, err := svc.Composite(context.Background(), [][]byte{good, []byte("not an image"), good}, "a group ad", "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, model.editCalls)
	assert.Len(t, model.lastEdit.Images, 2)
	assert.Equal(t, "standard", model.lastEdit.Quality)
	assert.Zero(t, tempFileCount(t, tempDir))
}

func TestCompositeAllCorrupt(t *testing.T) {
	model := &fakeModel{}
	store := &fakeStore{}
	svc, tempDir := newTestService(t, model, store, nil)

	_, err := svc.Composite(context.Background(), [][]byte{[]byte("junk")}, "x", "", "")
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.Zero(t, model.editCalls)
	assert.Zero(t, tempFileCount(t, tempDir))
}

func TestMaskEdit(t *testing.T) {
	model := &fakeModel{}
	store := &fakeStore{}
	svc, tempDir := newTestService(t, model, store, nil)

	artifact, err := svc.MaskEdit(context.Background(), pngBytes(t), pngBytes(t), "remove background", "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, model.editCalls)
	require.Len(t, model.lastEdit.Images, 1)
	assert.NotEmpty(t, model.lastEdit.Mask)
	assert.Equal(t, "standard", model.lastEdit.Quality)
	assert.True(t, strings.HasPrefix(artifact.Filename, "edited_"))
	assert.Zero(t, tempFileCount(t, tempDir))
}

func TestEditUndecodableSourceFails(t *testing.T) {
	model := &fakeModel{}
	store := &fakeStore{}
	svc, tempDir := newTestService(t, model, store, nil)

	_, err := svc.Edit(context.Background(), EditRequest{
		Prompt: "x",
		Images: [][]byte{[]byte("junk")},
	})
	require.ErrorIs(t, err, domain.ErrUnsupportedImage)
	assert.Zero(t, model.editCalls)
	assert.Zero(t, tempFileCount(t, tempDir))
}

func TestPersistFallsBackToLocal(t *testing.T) {
	model := &fakeModel{}
	store := &fakeStore{uploadErr: errors.New("bucket down")}
	localDir := t.TempDir()
	local, err := storage.NewFileStore(localDir, "/static")
	require.NoError(t, err)

	svc, err := NewService(Options{
		Model:   model,
		Store:   store,
		Local:   local,
		TempDir: t.TempDir(),
	})
	require.NoError(t, err)

	artifact, err := svc.Generate(context.Background(), GenerateRequest{Prompt: "x"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(artifact.URL, "/static/generated/"))

	data, err := local.Read("generated/" + artifact.Filename)
	require.NoError(t, err)
	assert.Equal(t, []byte("generated-bytes"), data)
}

func TestMetadataFailureSwallowed(t *testing.T) {
	model := &fakeModel{}
	store := &fakeStore{}
	meta := &fakeMeta{insertErr: errors.New("db down")}
	svc, _ := newTestService(t, model, store, meta)

	_, err := svc.Generate(context.Background(), GenerateRequest{Prompt: "x"})
	require.NoError(t, err)
	assert.Len(t, store.uploads, 1)
}
