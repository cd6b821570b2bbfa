// Package enrichment holds the curated reference datasets bundled with the
// application: per-work descriptions, genres and prequel links, and the
// streaming availability map. Netflix and Amazon Prime Video expose no public
// availability API, so this data is maintained by hand and is immutable at
// runtime; admins layer corrections on top through overrides.
package enrichment

import "courtracker/internal/models"

// Genres is the fixed enumeration used for system-assigned genre tags.
// Admin overrides may carry arbitrary strings.
var Genres = []string{
	"Action",
	"Adventure",
	"Comedy",
	"Drama",
	"Fantasy",
	"Horror",
	"Mystery",
	"Romance",
	"Sci-Fi",
	"Slice of Life",
	"Sports",
	"Supernatural",
	"Thriller",
}

// Entry supplements a work's sparse API data. Prequel is a weak reference:
// nothing guarantees the referenced work is still reachable.
type Entry struct {
	Description string
	Genres      []string
	Prequel     *models.Prequel
}

// Lookup returns the curated entry for an Annict work id.
func Lookup(id int) (Entry, bool) {
	entry, ok := animeEnrichmentMap[id]
	return entry, ok
}

// StreamingServices returns the curated streaming identifiers for a work.
// Works outside the curated list get an empty set rather than a guess.
func StreamingServices(id int) []string {
	if services, ok := animeStreamingMap[id]; ok {
		return services
	}
	return []string{}
}

var animeEnrichmentMap = map[int]Entry{
	// 2023 Fall
	12792: {
		Description: "勇者一行と魔王を倒した魔法使いフリーレンが、人間たちとの再会と別れを経て旅を続ける後日譚ファンタジー。",
		Genres:      []string{"Fantasy", "Adventure", "Drama"},
	},
	12911: {
		Description: "後宮に勤める薬師の少女・猫猫が、毒と薬の知識で宮中の謎を解き明かしていく。",
		Genres:      []string{"Mystery", "Drama"},
	},
	12948: {
		Description: "仮初めの家族フォージャー家が、それぞれの秘密を抱えたまま任務と日常に奔走する第2期。",
		Genres:      []string{"Action", "Comedy"},
		Prequel:     &models.Prequel{ID: 11983, Title: "SPY×FAMILY"},
	},
	// 2023 Summer
	12533: {
		Description: "最強の呪術師・五条悟の過去と、渋谷で巻き起こる大規模な呪霊との戦いを描く第2期。",
		Genres:      []string{"Action", "Supernatural"},
		Prequel:     &models.Prequel{ID: 11499, Title: "呪術廻戦"},
	},
	12845: {
		Description: "千年血戦篇の続章。護廷十三隊と滅却師の戦いが激化する。",
		Genres:      []string{"Action", "Supernatural"},
		Prequel:     &models.Prequel{ID: 12077, Title: "BLEACH 千年血戦篇"},
	},
	// 2023 Spring
	12613: {
		Description: "伝説のアイドル・星野アイと、彼女の子供として転生した二人の物語。芸能界の光と闇を描く。",
		Genres:      []string{"Drama", "Supernatural", "Mystery"},
	},
	12616: {
		Description: "スレッタ・マーキュリーの学園での戦いの行方と、ベネリットグループを巡る陰謀の決着を描くSeason2。",
		Genres:      []string{"Sci-Fi", "Action", "Drama"},
		Prequel:     &models.Prequel{ID: 12304, Title: "機動戦士ガンダム 水星の魔女"},
	},
	// 2024 Spring
	13139: {
		Description: "転生した少年ルーデウスの冒険が続く第2期第2クール。",
		Genres:      []string{"Fantasy", "Adventure"},
		Prequel:     &models.Prequel{ID: 12883, Title: "無職転生 II ～異世界行ったら本気だす～"},
	},
	13140: {
		Description: "カズマとアクア一行のドタバタ異世界コメディ、待望の第3期。",
		Genres:      []string{"Comedy", "Fantasy"},
	},
	12985: {
		Description: "野クルの面々がのんびりキャンプを楽しむSEASON3。",
		Genres:      []string{"Slice of Life", "Comedy"},
		Prequel:     &models.Prequel{ID: 10080, Title: "ゆるキャン△ SEASON２"},
	},
	// 2022 Fall
	12298: {
		Description: "極度の人見知りの後藤ひとりがバンド「結束バンド」でギターを弾くことになる青春音楽物語。",
		Genres:      []string{"Comedy", "Slice of Life"},
	},
	11874: {
		Description: "チェンソーの悪魔ポチタと融合したデンジが、デビルハンターとして悪魔と戦う。",
		Genres:      []string{"Action", "Horror", "Supernatural"},
	},
}

// animeStreamingMap maps Annict work ids to streaming-service identifiers.
var animeStreamingMap = map[int][]string{
	// 2024 Spring
	13139: {"netflix", "amazon_prime_video"},
	13140: {"netflix", "amazon_prime_video"},
	13138: {},
	12985: {"netflix", "amazon_prime_video"},

	// 2023 Fall
	12792: {"netflix"},
	12911: {"netflix", "amazon_prime_video"},
	12948: {"netflix"},

	// 2023 Summer
	12533: {"netflix", "amazon_prime_video"},
	12845: {"netflix"},

	// 2023 Spring
	12613: {"netflix", "amazon_prime_video"},
	12616: {"netflix"},
	12953: {},

	// 2022 Fall
	12298: {"amazon_prime_video"},
	11874: {"amazon_prime_video", "netflix"},

	// Other popular
	11475: {"netflix", "amazon_prime_video"},
	11094: {"netflix"},
}
