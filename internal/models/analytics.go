package models

type CardMetrics struct {
	TotalKnow            int      `json:"totalKnow"`
	TotalRefresher       int      `json:"totalRefresher"`
	MasteredPlayers      int      `json:"masteredPlayers"`
	TotalPlayers         int      `json:"totalPlayers"`
	AverageKnowToMastery *float64 `json:"averageKnowToMastery"`
}

type CardAnalytics struct {
	Card    CardContent `json:"card"`
	Metrics CardMetrics `json:"metrics"`
}

type DeckAnalyticsTotals struct {
	Players   int `json:"players"`
	Responses int `json:"responses"`
}

type DeckAnalytics struct {
	Cards  []CardAnalytics     `json:"cards"`
	Totals DeckAnalyticsTotals `json:"totals"`
}

// StateRow is the minimal projection used for deck analytics.
type StateRow struct {
	PlayerID       string `db:"player_id"`
	CardID         string `db:"card_id"`
	KnowCount      int    `db:"know_count"`
	RefresherCount int    `db:"refresher_count"`
	Mastered       bool   `db:"mastered"`
}
