package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"courtracker/internal/cache"
	"courtracker/internal/datastore"
	"courtracker/internal/models"
	"courtracker/internal/storage"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMetadata struct {
	works       []models.Work
	err         error
	seasonCalls int
}

func (f *fakeMetadata) SeasonWorks(ctx context.Context, season string, first int) ([]models.Work, error) {
	f.seasonCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.works, nil
}

func (f *fakeMetadata) WorkByID(ctx context.Context, id int) (*models.Work, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.works {
		if f.works[i].AnnictID == id {
			return &f.works[i], nil
		}
	}
	return nil, nil
}

type fakeRatings struct {
	mu     sync.Mutex
	scores map[string]float64
	fail   map[string]bool
}

func (f *fakeRatings) BestMatch(ctx context.Context, title string) (*models.JikanAnime, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[title] {
		return nil, errors.New("jikan unreachable")
	}
	score, ok := f.scores[title]
	if !ok {
		return nil, nil
	}
	return &models.JikanAnime{Title: title, Score: &score}, nil
}

func work(id int, title string) models.Work {
	return models.Work{
		AnnictID:   id,
		Title:      title,
		Media:      "TV",
		SeasonYear: 2023,
		SeasonName: "AUTUMN",
	}
}

func newService(t *testing.T, metadata *fakeMetadata, ratings *fakeRatings) *AnimeService {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	js := storage.NewJSONStore(storage.NewMemoryStore(), log)
	return NewAnimeService(
		metadata,
		ratings,
		cache.New[models.Anime](cache.SeasonPrefix, js, log),
		cache.New[models.Anime](cache.AdminPrefix, js, log),
		datastore.New(js, log),
		log,
	)
}

func TestSeasonListingKeepsMetadataOrder(t *testing.T) {
	metadata := &fakeMetadata{works: []models.Work{
		work(1, "first"), work(2, "second"), work(3, "third"),
	}}
	ratings := &fakeRatings{scores: map[string]float64{
		"first": 7.5, "second": 9.2, "third": 6.1,
	}}
	svc := newService(t, metadata, ratings)

	result, err := svc.GetAnimeBySeason(context.Background(), "2023-autumn")
	require.NoError(t, err)
	require.Len(t, result, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{result[0].ID, result[1].ID, result[2].ID})
	assert.Equal(t, 3, result[0].RecommendationScore)
	assert.Equal(t, 5, result[1].RecommendationScore)
}

func TestSeasonListingFiltersToTV(t *testing.T) {
	movie := work(4, "a movie")
	movie.Media = "MOVIE"
	metadata := &fakeMetadata{works: []models.Work{work(1, "show"), movie}}
	svc := newService(t, metadata, &fakeRatings{})

	result, err := svc.GetAnimeBySeason(context.Background(), "2023-autumn")
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, 1, result[0].ID)
}

func TestPartialRatingFailureDegrades(t *testing.T) {
	metadata := &fakeMetadata{works: []models.Work{
		work(1, "ok one"), work(2, "broken"), work(3, "ok two"),
	}}
	ratings := &fakeRatings{
		scores: map[string]float64{"ok one": 8.1, "ok two": 7.2},
		fail:   map[string]bool{"broken": true},
	}
	svc := newService(t, metadata, ratings)

	result, err := svc.GetAnimeBySeason(context.Background(), "2023-autumn")
	require.NoError(t, err)
	require.Len(t, result, 3, "one failed rating must not drop the season")

	assert.NotNil(t, result[0].Score)
	assert.Nil(t, result[1].Score)
	assert.Equal(t, 0, result[1].RecommendationScore)
	assert.NotNil(t, result[2].Score)
}

func TestTotalMetadataFailurePropagates(t *testing.T) {
	metadata := &fakeMetadata{err: errors.New("annict down")}
	svc := newService(t, metadata, &fakeRatings{})

	_, err := svc.GetAnimeBySeason(context.Background(), "2023-autumn")
	assert.Error(t, err)
}

func TestSecondListingServedFromCache(t *testing.T) {
	metadata := &fakeMetadata{works: []models.Work{work(1, "show")}}
	svc := newService(t, metadata, &fakeRatings{})
	ctx := context.Background()

	_, err := svc.GetAnimeBySeason(ctx, "2023-autumn")
	require.NoError(t, err)
	_, err = svc.GetAnimeBySeason(ctx, "2023-autumn")
	require.NoError(t, err)

	assert.Equal(t, 1, metadata.seasonCalls)
}

func TestHiddenWorkExcludedFromPublicButNotAdmin(t *testing.T) {
	metadata := &fakeMetadata{works: []models.Work{work(1, "shown"), work(2, "hidden")}}
	svc := newService(t, metadata, &fakeRatings{})
	ctx := context.Background()

	require.NoError(t, svc.SaveOverride(ctx, models.SavedAnime{ID: 2, IsVisible: false}))

	public, err := svc.GetAnimeBySeason(ctx, "2023-autumn")
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, 1, public[0].ID)

	admin, err := svc.GetAllAnimeForAdmin(ctx, "2023-autumn", false)
	require.NoError(t, err)
	require.Len(t, admin, 2)
	assert.False(t, admin[1].IsVisible)
	assert.True(t, admin[1].HasOverride)
}

func TestPublishGatingThroughService(t *testing.T) {
	metadata := &fakeMetadata{works: []models.Work{work(1, "raw title")}}
	svc := newService(t, metadata, &fakeRatings{})
	ctx := context.Background()

	require.NoError(t, svc.SaveOverride(ctx, models.SavedAnime{
		ID:        1,
		Title:     "edited title",
		IsVisible: true,
	}))

	// draft: public still sees raw data
	public, err := svc.GetAnimeBySeason(ctx, "2023-autumn")
	require.NoError(t, err)
	assert.Equal(t, "raw title", public[0].Title)

	// publish takes effect immediately, even with a warm cache
	require.NoError(t, svc.PublishOverride(ctx, 1))
	public, err = svc.GetAnimeBySeason(ctx, "2023-autumn")
	require.NoError(t, err)
	assert.Equal(t, "edited title", public[0].Title)

	require.NoError(t, svc.UnpublishOverride(ctx, 1))
	public, err = svc.GetAnimeBySeason(ctx, "2023-autumn")
	require.NoError(t, err)
	assert.Equal(t, "raw title", public[0].Title)
}

func TestDeleteOverrideRevertsToSystemData(t *testing.T) {
	metadata := &fakeMetadata{works: []models.Work{work(1, "raw title")}}
	ratings := &fakeRatings{scores: map[string]float64{"raw title": 8.4}}
	svc := newService(t, metadata, ratings)
	ctx := context.Background()

	before, err := svc.GetAnimeBySeason(ctx, "2023-autumn")
	require.NoError(t, err)

	require.NoError(t, svc.SaveOverride(ctx, models.SavedAnime{
		ID: 1, Title: "edited", IsVisible: true, IsPublished: true,
	}))
	require.NoError(t, svc.DeleteOverride(ctx, 1))

	after, err := svc.GetAnimeBySeason(ctx, "2023-autumn")
	require.NoError(t, err)
	assert.Equal(t, before, after, "no trace of the deleted override may remain")
}

func TestAdminForceRefreshLeavesPublicCacheWarm(t *testing.T) {
	metadata := &fakeMetadata{works: []models.Work{work(1, "show")}}
	svc := newService(t, metadata, &fakeRatings{})
	ctx := context.Background()

	_, err := svc.GetAnimeBySeason(ctx, "2023-autumn")
	require.NoError(t, err)
	_, err = svc.GetAllAnimeForAdmin(ctx, "2023-autumn", false)
	require.NoError(t, err)
	require.Equal(t, 2, metadata.seasonCalls, "caches are separate namespaces")

	_, err = svc.GetAllAnimeForAdmin(ctx, "2023-autumn", true)
	require.NoError(t, err)
	assert.Equal(t, 3, metadata.seasonCalls)

	// the public cache was not disturbed by the admin refresh
	_, err = svc.GetAnimeBySeason(ctx, "2023-autumn")
	require.NoError(t, err)
	assert.Equal(t, 3, metadata.seasonCalls)
}

func TestGetAnimeDetails(t *testing.T) {
	site := "https://frieren-anime.jp"
	twitter := "Anime_Frieren"
	epTitle := "旅の終わり"
	w := work(12792, "葬送のフリーレン")
	w.OfficialSiteURL = &site
	w.TwitterUsername = &twitter
	w.Episodes = &models.EpisodeNodes{Nodes: []models.EpisodeNode{
		{AnnictID: 1, NumberText: "第1話", Title: &epTitle},
	}}
	w.Casts = &models.CastNodes{Nodes: []models.CastNode{
		{Character: &models.CharacterNode{AnnictID: 10, Name: "フリーレン"}, Person: &models.PersonNode{Name: "種﨑敦美"}},
		{Character: nil, Person: &models.PersonNode{Name: "incomplete"}},
	}}
	w.Staffs = &models.StaffNodes{Nodes: []models.StaffNode{
		{AnnictID: 20, RoleText: "監督", Resource: &models.ResourceNode{Name: "斎藤圭一郎"}},
		{AnnictID: 21, RoleText: "原作", Resource: nil},
	}}

	metadata := &fakeMetadata{works: []models.Work{w}}
	ratings := &fakeRatings{scores: map[string]float64{"葬送のフリーレン": 9.1}}
	svc := newService(t, metadata, ratings)

	detail, err := svc.GetAnimeDetails(context.Background(), 12792)
	require.NoError(t, err)
	require.NotNil(t, detail)

	assert.Equal(t, 12792, detail.ID)
	require.NotNil(t, detail.Score)
	assert.Equal(t, 9.1, *detail.Score)
	assert.Equal(t, 5, detail.RecommendationScore)
	require.NotNil(t, detail.TwitterURL)
	assert.Equal(t, "https://twitter.com/Anime_Frieren", *detail.TwitterURL)
	require.Len(t, detail.Episodes, 1)
	assert.Equal(t, "第1話", detail.Episodes[0].Number)
	require.Len(t, detail.Cast, 1, "incomplete cast entries are dropped")
	require.Len(t, detail.Staff, 1, "staff without a resource name is dropped")
}

func TestGetAnimeDetailsUnknownWork(t *testing.T) {
	svc := newService(t, &fakeMetadata{}, &fakeRatings{})

	detail, err := svc.GetAnimeDetails(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, detail)
}

func TestGetAnimeDetailsRatingFailureDegrades(t *testing.T) {
	metadata := &fakeMetadata{works: []models.Work{work(1, "show")}}
	ratings := &fakeRatings{fail: map[string]bool{"show": true}}
	svc := newService(t, metadata, ratings)

	detail, err := svc.GetAnimeDetails(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Nil(t, detail.Score)
}
