// Package handlers is the thin HTTP glue over the core services. No merge,
// cache, or override rules live here.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"courtracker/internal/auth"
	"courtracker/internal/container"
	"courtracker/internal/datastore"
	"courtracker/internal/models"
)

// SeasonHandler serves the public season listing.
// GET /api/season?season=2023-autumn
func SeasonHandler(c *container.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		season := r.URL.Query().Get("season")
		if season == "" {
			http.Error(w, "season is required", http.StatusBadRequest)
			return
		}
		records, err := c.AnimeService.GetAnimeBySeason(r.Context(), season)
		if err != nil {
			c.Logger.WithError(err).WithField("season", season).Error("Season fetch failed")
			http.Error(w, "failed to fetch season", http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, records)
	}
}

// DetailHandler serves one work's detail record.
// GET /api/anime/{id}
func DetailHandler(c *container.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		detail, err := c.AnimeService.GetAnimeDetails(r.Context(), id)
		if err != nil {
			c.Logger.WithError(err).WithField("anime_id", id).Error("Detail fetch failed")
			http.Error(w, "failed to fetch details", http.StatusBadGateway)
			return
		}
		if detail == nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

// LoginHandler exchanges the admin password for a session token.
// POST /api/admin/login
func LoginHandler(c *container.Container) http.HandlerFunc {
	type loginRequest struct {
		Password string `json:"password"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		token, err := c.Auth.Login(req.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				http.Error(w, "invalid credentials", http.StatusUnauthorized)
				return
			}
			c.Logger.WithError(err).Error("Login failed")
			http.Error(w, "login failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}

// AdminSeasonHandler serves the unfiltered admin listing.
// GET /api/admin/season?season=2023-autumn&refresh=1
func AdminSeasonHandler(c *container.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		season := r.URL.Query().Get("season")
		if season == "" {
			http.Error(w, "season is required", http.StatusBadRequest)
			return
		}
		force := r.URL.Query().Get("refresh") == "1"
		records, err := c.AnimeService.GetAllAnimeForAdmin(r.Context(), season, force)
		if err != nil {
			c.Logger.WithError(err).WithField("season", season).Error("Admin season fetch failed")
			http.Error(w, "failed to fetch season", http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, records)
	}
}

// SaveOverrideHandler upserts a full override record.
// PUT /api/admin/anime
func SaveOverrideHandler(c *container.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rec models.SavedAnime
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if err := c.AnimeService.SaveOverride(r.Context(), rec); err != nil {
			saveError(w, c, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// PatchOverrideHandler applies field-level override updates.
// PATCH /api/admin/anime/{id}
func PatchOverrideHandler(c *container.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var patch models.SavedAnimePatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if err := c.AnimeService.PatchOverride(r.Context(), id, patch); err != nil {
			saveError(w, c, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// PublishHandler flips an override's publish flag.
// POST /api/admin/anime/{id}/publish and /unpublish
func PublishHandler(c *container.Container, publish bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		var err error
		if publish {
			err = c.AnimeService.PublishOverride(r.Context(), id)
		} else {
			err = c.AnimeService.UnpublishOverride(r.Context(), id)
		}
		if err != nil {
			saveError(w, c, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteOverrideHandler removes an override entirely.
// DELETE /api/admin/anime/{id}
func DeleteOverrideHandler(c *container.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		if err := c.AnimeService.DeleteOverride(r.Context(), id); err != nil {
			saveError(w, c, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ClearCacheHandler drops one season's public cache entry, or every cache
// entry when no season is given.
// POST /api/admin/cache/clear?season=2023-autumn
func ClearCacheHandler(c *container.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		season := r.URL.Query().Get("season")
		if season == "" {
			c.AnimeService.ClearAllCaches(r.Context())
		} else {
			c.AnimeService.ClearSeasonCache(r.Context(), season)
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// WatchedHandler returns the watched-episode set for a work.
// GET /api/anime/{id}/watched
func WatchedHandler(c *container.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, c.Progress.Watched(r.Context(), id))
	}
}

// ToggleWatchedHandler flips one episode's watched state.
// POST /api/anime/{id}/watched/{episodeId}
func ToggleWatchedHandler(c *container.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		episodeID, err := strconv.Atoi(r.PathValue("episodeId"))
		if err != nil {
			http.Error(w, "invalid episode id", http.StatusBadRequest)
			return
		}
		updated, err := c.Progress.Toggle(r.Context(), id, episodeID)
		if err != nil {
			c.Logger.WithError(err).WithField("anime_id", id).Warn("Failed to persist watched state")
			http.Error(w, "save failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func saveError(w http.ResponseWriter, c *container.Container, err error) {
	if errors.Is(err, datastore.ErrSaveFailed) {
		http.Error(w, "save failed", http.StatusInternalServerError)
		return
	}
	c.Logger.WithError(err).Error("Override operation failed")
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
