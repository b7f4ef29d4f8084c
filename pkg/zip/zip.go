package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// Asset is one file destined for an archive.
type Asset struct {
	Filename string
	MIME     string
	Data     []byte
}

// ArchiveAssets bundles the assets into a single in-memory zip. Empty assets
// are skipped; duplicate filenames are suffixed to stay unique.
func ArchiveAssets(assets []Asset) []byte {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	seen := make(map[string]int, len(assets))
	for _, asset := range assets {
		if len(asset.Data) == 0 {
			continue
		}
		name := asset.Filename
		if n := seen[name]; n > 0 {
			name = fmt.Sprintf("%d-%s", n, name)
		}
		seen[asset.Filename]++
		w, err := zw.Create(name)
		if err != nil {
			continue
		}
		if _, err := w.Write(asset.Data); err != nil {
			return nil
		}
	}
	_ = zw.Close()
	return buf.Bytes()
}
