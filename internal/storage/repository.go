package storage

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("not found")

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// NormalizeSymbol is the watchlist key: trimmed and upper-cased.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Watchlist

// AddToWatchlist inserts the item or refreshes name and score of an existing
// one. The original add time is kept.
func (r *Repository) AddToWatchlist(item *WatchlistItem) error {
	item.Symbol = NormalizeSymbol(item.Symbol)
	if item.Symbol == "" {
		return fmt.Errorf("watchlist symbol is empty")
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"company_name", "score", "is_high_growth", "updated_at"}),
	}).Create(item).Error
}

func (r *Repository) RemoveFromWatchlist(symbol string) error {
	res := r.db.Where("symbol = ?", NormalizeSymbol(symbol)).Delete(&WatchlistItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) GetWatchlist() ([]WatchlistItem, error) {
	var items []WatchlistItem
	err := r.db.Order("created_at DESC").Order("symbol").Find(&items).Error
	return items, err
}

func (r *Repository) GetWatchlistItem(symbol string) (*WatchlistItem, error) {
	var item WatchlistItem
	err := r.db.Where("symbol = ?", NormalizeSymbol(symbol)).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository) UpdateWatchlistScore(symbol string, score float64, isHighGrowth bool) error {
	res := r.db.Model(&WatchlistItem{}).
		Where("symbol = ?", NormalizeSymbol(symbol)).
		Updates(map[string]any{"score": score, "is_high_growth": isHighGrowth})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Analysis Logs

func (r *Repository) SaveAnalysisLog(log *AnalysisLog) error {
	return r.db.Create(log).Error
}

func (r *Repository) GetRecentAnalyses(limit int) ([]AnalysisLog, error) {
	var logs []AnalysisLog
	err := r.db.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
