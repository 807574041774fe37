package storage

import "time"

// WatchlistItem is a followed stock with the score from its latest analysis.
type WatchlistItem struct {
	Symbol    string    `gorm:"primarykey" json:"symbol"`
	CreatedAt time.Time `json:"addedAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	CompanyName  string  `gorm:"not null;default:''" json:"companyName"`
	Score        float64 `json:"score"`
	IsHighGrowth bool    `json:"isHighGrowth"`
}

type AnalysisLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	Query        string  `gorm:"not null" json:"query"`
	Symbol       string  `gorm:"index" json:"symbol"`
	Provider     string  `json:"provider"`
	Score        float64 `json:"score"`
	IsHighGrowth bool    `json:"isHighGrowth"`
	RawResponse  string  `gorm:"type:text" json:"-"`
	ResultJSON   string  `gorm:"type:text" json:"-"`
	Error        string  `json:"error,omitempty"`
}
