package model

// NoLanguage is the placeholder returned for favorite/most-starred language
// when a user has no qualifying data.
const NoLanguage = "N/A"

// UserStats is the derived usage summary for one user. It is never persisted;
// it is recomputed from the execution and star records on every request.
type UserStats struct {
	TotalExecutions     int            `json:"totalExecutions"`
	LanguagesCount      int            `json:"languagesCount"`
	Languages           []string       `json:"languages"` // sorted lexicographically
	Last24Hours         int            `json:"last24Hours"`
	FavoriteLanguage    string         `json:"favoriteLanguage"`
	LanguageStats       map[string]int `json:"languageStats"`
	MostStarredLanguage string         `json:"mostStarredLanguage"`
}
