package models

// SavedAnime is an admin-authored override for a single work, keyed by the
// Annict work id. Content fields replace the system-derived values wholesale
// once IsPublished is true; IsVisible and RecommendationScore apply
// regardless of publish state.
type SavedAnime struct {
	ID                  int      `json:"id"`
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	Genres              []string `json:"genres"`
	StreamingServices   []string `json:"streamingServices"`
	IsVisible           bool     `json:"isVisible"`
	CustomImageURL      string   `json:"customImageUrl,omitempty"`
	RecommendationScore *int     `json:"recommendationScore,omitempty"`
	LastModified        int64    `json:"lastModified"`
	IsPublished         bool     `json:"isPublished"`
}

// SavedAnimePatch carries field-level update intents. A nil field keeps the
// stored value; patching a work without an override starts from defaults
// (visible, unpublished).
type SavedAnimePatch struct {
	Title               *string   `json:"title,omitempty"`
	Description         *string   `json:"description,omitempty"`
	Genres              *[]string `json:"genres,omitempty"`
	StreamingServices   *[]string `json:"streamingServices,omitempty"`
	IsVisible           *bool     `json:"isVisible,omitempty"`
	CustomImageURL      *string   `json:"customImageUrl,omitempty"`
	RecommendationScore *int      `json:"recommendationScore,omitempty"`
	IsPublished         *bool     `json:"isPublished,omitempty"`
}
