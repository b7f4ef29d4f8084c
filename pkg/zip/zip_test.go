package zip

import (
	archive "archive/zip"
	"bytes"
	"io"
	"testing"
)

func readArchive(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := archive.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	out := map[string][]byte{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		out[f.Name] = content
	}
	return out
}

func TestArchiveAssets(t *testing.T) {
	data := ArchiveAssets([]Asset{
		{Filename: "a.png", MIME: "image/png", Data: []byte("one")},
		{Filename: "b.png", MIME: "image/png", Data: []byte("two")},
	})
	files := readArchive(t, data)
	if len(files) != 2 {
		t.Fatalf("len(files) = %d, want 2", len(files))
	}
	if string(files["a.png"]) != "one" || string(files["b.png"]) != "two" {
		t.Fatalf("files = %v", files)
	}
}

func TestArchiveAssetsSkipsEmpty(t *testing.T) {
	data := ArchiveAssets([]Asset{
		{Filename: "a.png", Data: []byte("one")},
		{Filename: "empty.png"},
	})
	files := readArchive(t, data)
	if len(files) != 1 {
		t.Fatalf("len(files) = %d, want 1", len(files))
	}
}

func TestArchiveAssetsUniquifiesDuplicates(t *testing.T) {
	data := ArchiveAssets([]Asset{
		{Filename: "a.png", Data: []byte("one")},
		{Filename: "a.png", Data: []byte("two")},
	})
	files := readArchive(t, data)
	if len(files) != 2 {
		t.Fatalf("len(files) = %d, want 2", len(files))
	}
	if string(files["a.png"]) != "one" || string(files["1-a.png"]) != "two" {
		t.Fatalf("files = %v", files)
	}
}
