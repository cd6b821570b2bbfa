package services

import (
	"context"
	"fmt"
	"sync"

	"courtracker/internal/cache"
	"courtracker/internal/datastore"
	"courtracker/internal/enrichment"
	"courtracker/internal/merge"
	"courtracker/internal/models"

	"github.com/sirupsen/logrus"
)

// animePerSeason bounds the season fetch; Annict orders by watcher count so
// the cut keeps the most-followed works.
const animePerSeason = 30

// MetadataAPI is the primary metadata source (Annict).
type MetadataAPI interface {
	SeasonWorks(ctx context.Context, season string, first int) ([]models.Work, error)
	WorkByID(ctx context.Context, id int) (*models.Work, error)
}

// RatingAPI is the secondary rating source (Jikan).
type RatingAPI interface {
	BestMatch(ctx context.Context, title string) (*models.JikanAnime, error)
}

// AnimeService is the data-access surface the presentation layer consumes:
// season listings, detail records, the admin listing, override mutations,
// and cache control.
type AnimeService struct {
	metadata    MetadataAPI
	ratings     RatingAPI
	seasonCache *cache.Cache[models.Anime]
	adminCache  *cache.Cache[models.Anime]
	overrides   *datastore.OverrideStore
	logger      *logrus.Logger
}

func NewAnimeService(
	metadata MetadataAPI,
	ratings RatingAPI,
	seasonCache *cache.Cache[models.Anime],
	adminCache *cache.Cache[models.Anime],
	overrides *datastore.OverrideStore,
	logger *logrus.Logger,
) *AnimeService {
	return &AnimeService{
		metadata:    metadata,
		ratings:     ratings,
		seasonCache: seasonCache,
		adminCache:  adminCache,
		overrides:   overrides,
		logger:      logger,
	}
}

// GetAnimeBySeason returns the public season listing: cached system-derived
// records with published overrides layered on top, hidden works filtered out.
func (s *AnimeService) GetAnimeBySeason(ctx context.Context, season string) ([]models.Anime, error) {
	base, err := s.baseRecords(ctx, season, s.seasonCache)
	if err != nil {
		return nil, err
	}

	overrides := s.overrides.GetAll(ctx)
	result := make([]models.Anime, 0, len(base))
	for _, a := range base {
		ov := overrideFor(overrides, a.ID)
		if !merge.Visible(ov) {
			continue
		}
		result = append(result, merge.ApplyOverride(a, ov))
	}
	return result, nil
}

// GetAllAnimeForAdmin returns every fetched work regardless of visibility,
// augmented with override state. It runs against the admin preview cache so
// a force refresh here leaves the public cache warm.
func (s *AnimeService) GetAllAnimeForAdmin(ctx context.Context, season string, forceRefresh bool) ([]models.AdminAnime, error) {
	if forceRefresh {
		s.adminCache.Invalidate(ctx, season)
	}
	base, err := s.baseRecords(ctx, season, s.adminCache)
	if err != nil {
		return nil, err
	}

	overrides := s.overrides.GetAll(ctx)
	result := make([]models.AdminAnime, 0, len(base))
	for _, a := range base {
		result = append(result, merge.AdminView(a, overrideFor(overrides, a.ID)))
	}
	return result, nil
}

// GetAnimeDetails fetches the detail record for one work, or nil when the
// work does not exist. The season listing is the authority for descriptions
// and genres; the detail path reuses its cached values when present.
func (s *AnimeService) GetAnimeDetails(ctx context.Context, id int) (*models.AnimeDetail, error) {
	work, err := s.metadata.WorkByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch details for %d: %w", id, err)
	}
	if work == nil {
		return nil, nil
	}

	// Rating degradation: a failed lookup costs the score, not the page.
	var rawScore *float64
	if match, err := s.ratings.BestMatch(ctx, work.Title); err != nil {
		s.logger.WithError(err).WithField("title", work.Title).Warn("Rating lookup failed")
	} else if match != nil {
		rawScore = match.Score
	}

	base := merge.BuildBase(*work, rawScore, enrichmentFor(work.AnnictID))

	if cached, ok := s.seasonCache.Get(ctx, work.SeasonKey()); ok {
		for _, a := range cached {
			if a.ID == work.AnnictID {
				base.Description = a.Description
				base.Genres = a.Genres
				break
			}
		}
	}

	ov := overrideFor(s.overrides.GetAll(ctx), work.AnnictID)
	detail := &models.AnimeDetail{
		Anime:           merge.ApplyOverride(base, ov),
		OfficialSiteURL: work.OfficialSiteURL,
		Episodes:        []models.Episode{},
		Cast:            []models.CastMember{},
		Staff:           []models.StaffMember{},
	}
	if work.TwitterUsername != nil && *work.TwitterUsername != "" {
		twitterURL := "https://twitter.com/" + *work.TwitterUsername
		detail.TwitterURL = &twitterURL
	}
	if work.Episodes != nil {
		for _, ep := range work.Episodes.Nodes {
			detail.Episodes = append(detail.Episodes, models.Episode{
				ID:     ep.AnnictID,
				Number: ep.NumberText,
				Title:  ep.Title,
			})
		}
	}
	if work.Casts != nil {
		for _, c := range work.Casts.Nodes {
			if c.Character == nil || c.Person == nil || c.Character.Name == "" || c.Person.Name == "" {
				continue
			}
			detail.Cast = append(detail.Cast, models.CastMember{
				ID:         c.Character.AnnictID,
				Character:  c.Character.Name,
				VoiceActor: c.Person.Name,
			})
		}
	}
	if work.Staffs != nil {
		for _, st := range work.Staffs.Nodes {
			if st.Resource == nil || st.Resource.Name == "" {
				continue
			}
			role := st.RoleText
			if role == "" {
				role = "不明"
			}
			detail.Staff = append(detail.Staff, models.StaffMember{
				ID:   st.AnnictID,
				Role: role,
				Name: st.Resource.Name,
			})
		}
	}
	return detail, nil
}

// ClearSeasonCache drops the public cache entry for one season, forcing the
// next listing request to refetch.
func (s *AnimeService) ClearSeasonCache(ctx context.Context, season string) {
	s.seasonCache.Invalidate(ctx, season)
}

// ClearAllCaches drops every cached season in both namespaces. Overrides
// are primary data and are never touched.
func (s *AnimeService) ClearAllCaches(ctx context.Context) {
	s.seasonCache.InvalidateAll(ctx)
	s.adminCache.InvalidateAll(ctx)
}

// Override mutations pass through to the store. Caches stay untouched:
// overrides are layered at read time, so edits take effect immediately.

func (s *AnimeService) SaveOverride(ctx context.Context, rec models.SavedAnime) error {
	return s.overrides.Save(ctx, rec)
}

func (s *AnimeService) PatchOverride(ctx context.Context, id int, patch models.SavedAnimePatch) error {
	return s.overrides.Patch(ctx, id, patch)
}

func (s *AnimeService) PublishOverride(ctx context.Context, id int) error {
	return s.overrides.Publish(ctx, id)
}

func (s *AnimeService) UnpublishOverride(ctx context.Context, id int) error {
	return s.overrides.Unpublish(ctx, id)
}

func (s *AnimeService) DeleteOverride(ctx context.Context, id int) error {
	return s.overrides.Delete(ctx, id)
}

// baseRecords returns the system-derived records for a season from the given
// cache, fetching and filling it on a miss.
func (s *AnimeService) baseRecords(ctx context.Context, season string, c *cache.Cache[models.Anime]) ([]models.Anime, error) {
	if records, ok := c.Get(ctx, season); ok {
		return records, nil
	}

	s.logger.WithField("season", season).Info("Cache miss, fetching fresh season data")
	records, err := s.fetchSeason(ctx, season)
	if err != nil {
		return nil, err
	}
	if err := c.Put(ctx, season, records); err != nil {
		// best-effort durability: the fetched records are still served
		s.logger.WithError(err).WithField("season", season).Warn("Failed to write season cache")
	}
	return records, nil
}

// fetchSeason pulls the raw season works, fans out the rating lookups, and
// builds the system-derived records. Output order follows the metadata
// fetch, not rating completion order.
func (s *AnimeService) fetchSeason(ctx context.Context, season string) ([]models.Anime, error) {
	works, err := s.metadata.SeasonWorks(ctx, season, animePerSeason)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch season %s: %w", season, err)
	}

	tv := works[:0:0]
	for _, w := range works {
		if w.Media == "TV" {
			tv = append(tv, w)
		}
	}

	// Fan out rating lookups; the client's limiter spaces the actual calls.
	// Results land by index so completion order cannot reorder the season.
	scores := make([]*float64, len(tv))
	var wg sync.WaitGroup
	for i, w := range tv {
		wg.Add(1)
		go func(i int, w models.Work) {
			defer wg.Done()
			match, err := s.ratings.BestMatch(ctx, w.Title)
			if err != nil {
				s.logger.WithError(err).WithField("title", w.Title).Warn("Rating lookup failed, degrading")
				return
			}
			if match != nil {
				scores[i] = match.Score
			}
		}(i, w)
	}
	wg.Wait()

	records := make([]models.Anime, 0, len(tv))
	for i, w := range tv {
		records = append(records, merge.BuildBase(w, scores[i], enrichmentFor(w.AnnictID)))
	}
	return records, nil
}

func enrichmentFor(id int) *enrichment.Entry {
	if entry, ok := enrichment.Lookup(id); ok {
		return &entry
	}
	return nil
}

func overrideFor(all map[int]models.SavedAnime, id int) *models.SavedAnime {
	if ov, ok := all[id]; ok {
		return &ov
	}
	return nil
}
