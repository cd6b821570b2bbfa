package models

// Anime is the merged per-work view model, the unit returned to consumers.
// Score is the raw MyAnimeList rating (0-10) and stays nil when the rating
// lookup failed or found nothing.
type Anime struct {
	ID                  int      `json:"id"`
	Title               string   `json:"title"`
	ImageURL            string   `json:"imageUrl"`
	Season              string   `json:"season"` // "<year>-<seasonName>", e.g. "2025-winter"
	StreamingServices   []string `json:"streamingServices"`
	Genres              []string `json:"genres"`
	Score               *float64 `json:"score"`
	Description         string   `json:"description"`
	RecommendationScore int      `json:"recommendationScore"`
	Prequel             *Prequel `json:"prequel,omitempty"`
}

// Prequel is a weak reference to an earlier-season work. It is resolved
// lazily by the caller and may dangle if the referenced work disappears.
type Prequel struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// AdminAnime augments a merged record with its override state so the admin
// listing can group rows by visibility and publish status.
type AdminAnime struct {
	Anime
	HasOverride  bool  `json:"hasOverride"`
	IsVisible    bool  `json:"isVisible"`
	IsPublished  bool  `json:"isPublished"`
	LastModified int64 `json:"lastModified,omitempty"`
}

type Episode struct {
	ID     int     `json:"id"`
	Number string  `json:"number"` // Annict numberText, e.g. "第1話"
	Title  *string `json:"title"`
}

type CastMember struct {
	ID         int    `json:"id"` // character annictId
	Character  string `json:"character"`
	VoiceActor string `json:"voiceActor"`
}

type StaffMember struct {
	ID   int    `json:"id"`
	Role string `json:"role"`
	Name string `json:"name"`
}

// AnimeDetail extends the list record with the detail-page fields.
type AnimeDetail struct {
	Anime
	OfficialSiteURL *string       `json:"officialSiteUrl"`
	TwitterURL      *string       `json:"twitterUrl"`
	Episodes        []Episode     `json:"episodes"`
	Cast            []CastMember  `json:"cast"`
	Staff           []StaffMember `json:"staff"`
}
