package models

type JikanSearchResponse struct {
	Data []JikanAnime `json:"data"`
}

// JikanAnime is the best-match result of a title search. Score is nil when
// the work has no rating yet.
type JikanAnime struct {
	MalID    int          `json:"mal_id"`
	Title    string       `json:"title"`
	Score    *float64     `json:"score"`
	Synopsis string       `json:"synopsis"`
	Genres   []JikanGenre `json:"genres"`
}

type JikanGenre struct {
	Name string `json:"name"`
}
