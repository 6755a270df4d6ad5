package models

// Progress summarises how far a player is through their snapshot.
type Progress struct {
	MasteredCount int  `json:"masteredCount"`
	Total         int  `json:"total"`
	Finished      bool `json:"finished"`
}

func NewProgress(mastered, total int) Progress {
	return Progress{
		MasteredCount: mastered,
		Total:         total,
		Finished:      mastered >= total && total > 0,
	}
}

type CardStats struct {
	KnowCount      int `json:"knowCount"`
	RefresherCount int `json:"refresherCount"`
}

// NextResult is either Finished or carries the card to show next.
type NextResult struct {
	Finished bool         `json:"finished,omitempty"`
	Card     *CardContent `json:"card,omitempty"`
	Stats    *CardStats   `json:"stats,omitempty"`
}

type AnswerResult struct {
	Mastered bool     `json:"mastered"`
	Progress Progress `json:"progress"`
}

type SummaryCard struct {
	CardContent
	KnowCount      int  `json:"knowCount"`
	RefresherCount int  `json:"refresherCount"`
	Mastered       bool `json:"mastered"`
}

type Summary struct {
	Cards []SummaryCard `json:"cards"`
}
