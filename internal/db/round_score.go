package db

import "time"

type RoundScore struct {
	ID              uint      `gorm:"primaryKey"`
	RoundID         uint      `gorm:"index;not null;uniqueIndex:idx_round_scores_round_player"`
	PlayerID        uint      `gorm:"index;not null;uniqueIndex:idx_round_scores_round_player"`
	RoundScore      int       `gorm:"not null;default:0"`
	ValidWordsCount int       `gorm:"not null;default:0"`
	StoppedEarly    bool      `gorm:"not null;default:false"`
	PenaltyApplied  bool      `gorm:"not null;default:false"`
	FinishedAt      time.Time `gorm:"not null"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}
