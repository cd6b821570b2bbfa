package models

import (
	"fmt"
	"strings"
)

// Annict GraphQL response shapes, limited to the fields the queries select.

type SearchWorksData struct {
	SearchWorks WorkConnection `json:"searchWorks"`
}

type WorkConnection struct {
	Nodes []Work `json:"nodes"`
}

type Work struct {
	AnnictID        int              `json:"annictId"`
	Title           string           `json:"title"`
	Media           string           `json:"media"` // TV, MOVIE, OVA, WEB, OTHER
	SeasonYear      int              `json:"seasonYear"`
	SeasonName      string           `json:"seasonName"` // WINTER, SPRING, SUMMER, AUTUMN
	Image           *WorkImage       `json:"image"`
	OfficialSiteURL *string          `json:"officialSiteUrl"`
	TwitterUsername *string          `json:"twitterUsername"`
	Episodes        *EpisodeNodes    `json:"episodes"`
	Casts           *CastNodes       `json:"casts"`
	Staffs          *StaffNodes      `json:"staffs"`
}

type WorkImage struct {
	RecommendedImageURL string `json:"recommendedImageUrl"`
	FacebookOgImageURL  string `json:"facebookOgImageUrl"`
}

type EpisodeNodes struct {
	Nodes []EpisodeNode `json:"nodes"`
}

type EpisodeNode struct {
	AnnictID   int     `json:"annictId"`
	NumberText string  `json:"numberText"`
	Title      *string `json:"title"`
}

type CastNodes struct {
	Nodes []CastNode `json:"nodes"`
}

type CastNode struct {
	Character *CharacterNode `json:"character"`
	Person    *PersonNode    `json:"person"`
}

type CharacterNode struct {
	AnnictID int    `json:"annictId"`
	Name     string `json:"name"`
}

type PersonNode struct {
	Name string `json:"name"`
}

type StaffNodes struct {
	Nodes []StaffNode `json:"nodes"`
}

type StaffNode struct {
	AnnictID int           `json:"annictId"`
	RoleText string        `json:"roleText"`
	Resource *ResourceNode `json:"resource"`
}

type ResourceNode struct {
	Name string `json:"name"`
}

// SeasonKey builds the season identifier the rest of the system keys on,
// e.g. "2025-winter".
func (w Work) SeasonKey() string {
	return fmt.Sprintf("%d-%s", w.SeasonYear, strings.ToLower(w.SeasonName))
}
