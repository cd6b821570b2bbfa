package merge

import (
	"testing"

	"courtracker/internal/enrichment"
	"courtracker/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func score(v float64) *float64 { return &v }
func intPtr(v int) *int        { return &v }

func sampleWork() models.Work {
	return models.Work{
		AnnictID:   12792,
		Title:      "葬送のフリーレン",
		Media:      "TV",
		SeasonYear: 2023,
		SeasonName: "AUTUMN",
		Image: &models.WorkImage{
			RecommendedImageURL: "https://example.com/frieren.jpg",
			FacebookOgImageURL:  "https://example.com/frieren_og.jpg",
		},
	}
}

func TestBandScore(t *testing.T) {
	tests := []struct {
		name  string
		score *float64
		want  int
	}{
		{"top band", score(9.5), 5},
		{"boundary belongs to higher band", score(8.0), 4},
		{"just below boundary", score(6.95), 2},
		{"low but rated", score(0.1), 1},
		{"zero", score(0), 0},
		{"negative", score(-1), 0},
		{"unrated", nil, 0},
		{"exactly nine", score(9.0), 5},
		{"exactly seven", score(7.0), 3},
		{"exactly six", score(6.0), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BandScore(tt.score))
		})
	}
}

func TestBuildBaseWithEnrichment(t *testing.T) {
	static := &enrichment.Entry{
		Description: "後日譚ファンタジー。",
		Genres:      []string{"Fantasy", "Adventure"},
		Prequel:     &models.Prequel{ID: 111, Title: "前作"},
	}
	a := BuildBase(sampleWork(), score(9.1), static)

	assert.Equal(t, 12792, a.ID)
	assert.Equal(t, "葬送のフリーレン", a.Title)
	assert.Equal(t, "2023-autumn", a.Season)
	assert.Equal(t, "https://example.com/frieren.jpg", a.ImageURL)
	assert.Equal(t, "後日譚ファンタジー。", a.Description)
	assert.Equal(t, []string{"Fantasy", "Adventure"}, a.Genres)
	assert.Equal(t, []string{"netflix"}, a.StreamingServices, "curated streaming map lookup by id")
	require.NotNil(t, a.Score)
	assert.Equal(t, 9.1, *a.Score)
	assert.Equal(t, 5, a.RecommendationScore)
	require.NotNil(t, a.Prequel)
	assert.Equal(t, 111, a.Prequel.ID)
}

func TestBuildBaseWithoutEnrichment(t *testing.T) {
	work := sampleWork()
	work.AnnictID = 99999 // not in any curated dataset
	a := BuildBase(work, nil, nil)

	assert.Equal(t, DescriptionFallback, a.Description)
	assert.Empty(t, a.Genres)
	assert.Empty(t, a.StreamingServices)
	assert.Nil(t, a.Score)
	assert.Equal(t, 0, a.RecommendationScore)
	assert.Nil(t, a.Prequel)
}

func TestImageFallbackChain(t *testing.T) {
	work := sampleWork()

	work.Image.RecommendedImageURL = ""
	a := BuildBase(work, nil, nil)
	assert.Equal(t, "https://example.com/frieren_og.jpg", a.ImageURL)

	work.Image = nil
	a = BuildBase(work, nil, nil)
	assert.Equal(t, PlaceholderImageURL, a.ImageURL)
}

func TestUnpublishedOverrideDoesNotLeakContent(t *testing.T) {
	base := BuildBase(sampleWork(), score(8.5), &enrichment.Entry{
		Description: "orig desc",
		Genres:      []string{"Fantasy"},
	})
	ov := &models.SavedAnime{
		ID:                12792,
		Title:             "draft title",
		Description:       "draft desc",
		Genres:            []string{"Horror"},
		StreamingServices: []string{"hulu"},
		CustomImageURL:    "https://example.com/custom.jpg",
		IsVisible:         true,
		IsPublished:       false,
	}

	got := ApplyOverride(base, ov)

	assert.Equal(t, base.Title, got.Title)
	assert.Equal(t, base.Description, got.Description)
	assert.Equal(t, base.Genres, got.Genres)
	assert.Equal(t, base.StreamingServices, got.StreamingServices)
	assert.Equal(t, base.ImageURL, got.ImageURL)
}

func TestPublishedOverrideReplacesContent(t *testing.T) {
	base := BuildBase(sampleWork(), score(8.5), nil)
	ov := &models.SavedAnime{
		ID:                12792,
		Title:             "公開タイトル",
		Description:       "公開あらすじ",
		Genres:            []string{"Romance", "Custom Genre"},
		StreamingServices: []string{"hulu"},
		CustomImageURL:    "https://example.com/custom.jpg",
		IsVisible:         true,
		IsPublished:       true,
	}

	got := ApplyOverride(base, ov)

	assert.Equal(t, "公開タイトル", got.Title)
	assert.Equal(t, "公開あらすじ", got.Description)
	assert.Equal(t, []string{"Romance", "Custom Genre"}, got.Genres)
	assert.Equal(t, []string{"hulu"}, got.StreamingServices)
	assert.Equal(t, "https://example.com/custom.jpg", got.ImageURL)
}

func TestPublishedOverrideWithEmptyImageKeepsRawImage(t *testing.T) {
	base := BuildBase(sampleWork(), nil, nil)
	ov := &models.SavedAnime{ID: 12792, IsVisible: true, IsPublished: true}

	got := ApplyOverride(base, ov)
	assert.Equal(t, base.ImageURL, got.ImageURL)
}

func TestRawScoreIsNeverOverridden(t *testing.T) {
	base := BuildBase(sampleWork(), score(7.7), nil)
	ov := &models.SavedAnime{ID: 12792, IsVisible: true, IsPublished: true}

	got := ApplyOverride(base, ov)
	require.NotNil(t, got.Score)
	assert.Equal(t, 7.7, *got.Score)
}

func TestRecommendationScoreOverride(t *testing.T) {
	base := BuildBase(sampleWork(), score(9.5), nil)
	require.Equal(t, 5, base.RecommendationScore)

	// an explicit override wins over the derived band
	published := &models.SavedAnime{ID: 12792, RecommendationScore: intPtr(3), IsVisible: true, IsPublished: true}
	assert.Equal(t, 3, ApplyOverride(base, published).RecommendationScore)

	// and it applies even while the override is a draft
	draft := &models.SavedAnime{ID: 12792, RecommendationScore: intPtr(2), IsVisible: true, IsPublished: false}
	assert.Equal(t, 2, ApplyOverride(base, draft).RecommendationScore)
}

func TestVisible(t *testing.T) {
	assert.True(t, Visible(nil), "absent override means visible")
	assert.True(t, Visible(&models.SavedAnime{IsVisible: true}))
	assert.False(t, Visible(&models.SavedAnime{IsVisible: false}))
}

func TestAdminViewShowsDraftContentAndFlags(t *testing.T) {
	base := BuildBase(sampleWork(), nil, nil)
	ov := &models.SavedAnime{
		ID:           12792,
		Title:        "draft title",
		IsVisible:    false,
		IsPublished:  false,
		LastModified: 1700000000000,
	}

	got := AdminView(base, ov)
	assert.Equal(t, "draft title", got.Title, "admin preview includes draft edits")
	assert.True(t, got.HasOverride)
	assert.False(t, got.IsVisible)
	assert.False(t, got.IsPublished)
	assert.Equal(t, int64(1700000000000), got.LastModified)
}

func TestAdminViewWithoutOverride(t *testing.T) {
	base := BuildBase(sampleWork(), nil, nil)
	got := AdminView(base, nil)

	assert.Equal(t, base, got.Anime)
	assert.False(t, got.HasOverride)
	assert.True(t, got.IsVisible)
	assert.False(t, got.IsPublished)
}
