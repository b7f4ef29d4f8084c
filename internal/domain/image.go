package domain

import "time"

// Canonical storage folders inside the bucket. Every artifact lives under one
// of these two prefixes.
const (
	FolderGenerated = "generated"
	FolderEdited    = "edited"
)

// ImageRecord is the metadata row kept for every persisted artifact.
type ImageRecord struct {
	ImageID     string
	StoragePath string
	PublicURL   string
	Prompt      string
	AdText      string
	Category    string
	Size        string
	IsReference bool
	Title       string
	CreatedAt   time.Time
}

// GeneratedArtifact is what a pipeline run hands back to the HTTP layer once
// the image has been produced and persisted.
type GeneratedArtifact struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Prompt   string `json:"prompt"`
	AdText   string `json:"adText,omitempty"`
}
