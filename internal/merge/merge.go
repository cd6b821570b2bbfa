// Package merge combines raw Annict data, the optional Jikan rating, the
// static enrichment datasets, and admin overrides into the final per-work
// record. Field precedence is resolved in two stages so that override edits
// take effect immediately even against a warm cache: BuildBase produces the
// system-derived record that the caches store, and ApplyOverride layers the
// admin override on top at read time.
package merge

import (
	"courtracker/internal/enrichment"
	"courtracker/internal/models"
)

const (
	// DescriptionFallback is served when neither enrichment nor a published
	// override carries a synopsis.
	DescriptionFallback = "synopsis not yet available"

	// PlaceholderImageURL stands in when Annict has no usable image.
	PlaceholderImageURL = "https://picsum.photos/400/600"
)

// BuildBase merges a raw work, its optional rating, and the static
// enrichment entry into the system-derived record. Overrides are
// deliberately absent here; cache entries must stay override-free.
func BuildBase(work models.Work, score *float64, static *enrichment.Entry) models.Anime {
	a := models.Anime{
		ID:                  work.AnnictID,
		Title:               work.Title,
		ImageURL:            resolveImage(work),
		Season:              work.SeasonKey(),
		StreamingServices:   enrichment.StreamingServices(work.AnnictID),
		Genres:              []string{},
		Score:               score,
		Description:         DescriptionFallback,
		RecommendationScore: BandScore(score),
	}
	if static != nil {
		if static.Description != "" {
			a.Description = static.Description
		}
		if len(static.Genres) > 0 {
			a.Genres = static.Genres
		}
		a.Prequel = static.Prequel
	}
	return a
}

// ApplyOverride layers an admin override onto a system-derived record for
// the public path. Content fields (title, description, genres, streaming,
// image) only apply once the override is published; the recommendation
// score applies regardless of publish state, matching the longstanding
// curation workflow. The raw rating is never overridable.
func ApplyOverride(base models.Anime, ov *models.SavedAnime) models.Anime {
	return layer(base, ov, false)
}

// AdminView layers the override including draft content, so admins preview
// unpublished edits, and attaches the effective visibility/publish flags.
func AdminView(base models.Anime, ov *models.SavedAnime) models.AdminAnime {
	out := models.AdminAnime{Anime: layer(base, ov, true), IsVisible: true}
	if ov != nil {
		out.HasOverride = true
		out.IsVisible = ov.IsVisible
		out.IsPublished = ov.IsPublished
		out.LastModified = ov.LastModified
	}
	return out
}

func layer(base models.Anime, ov *models.SavedAnime, includeDraft bool) models.Anime {
	if ov == nil {
		return base
	}
	out := base
	if ov.RecommendationScore != nil {
		out.RecommendationScore = *ov.RecommendationScore
	}
	if !ov.IsPublished && !includeDraft {
		return out
	}
	out.Title = ov.Title
	out.Description = ov.Description
	out.Genres = ov.Genres
	if out.Genres == nil {
		out.Genres = []string{}
	}
	out.StreamingServices = ov.StreamingServices
	if out.StreamingServices == nil {
		out.StreamingServices = []string{}
	}
	if ov.CustomImageURL != "" {
		out.ImageURL = ov.CustomImageURL
	}
	return out
}

// Visible reports whether the record appears in public listings. Works
// without an override are visible by default.
func Visible(ov *models.SavedAnime) bool {
	return ov == nil || ov.IsVisible
}

// BandScore derives the 0-5 recommendation scale from the raw 0-10 rating.
// Bands are inclusive-lower: a 8.0 is a 4, not a 3.
func BandScore(score *float64) int {
	if score == nil {
		return 0
	}
	switch s := *score; {
	case s >= 9.0:
		return 5
	case s >= 8.0:
		return 4
	case s >= 7.0:
		return 3
	case s >= 6.0:
		return 2
	case s > 0:
		return 1
	default:
		return 0
	}
}

func resolveImage(work models.Work) string {
	if work.Image != nil {
		if work.Image.RecommendedImageURL != "" {
			return work.Image.RecommendedImageURL
		}
		if work.Image.FacebookOgImageURL != "" {
			return work.Image.FacebookOgImageURL
		}
	}
	return PlaceholderImageURL
}
