package db

import "time"

type Answer struct {
	ID                     uint      `gorm:"primaryKey"`
	RoomID                 uint      `gorm:"index;not null"`
	RoundID                uint      `gorm:"index;not null;uniqueIndex:idx_answers_round_player_category"`
	PlayerID               uint      `gorm:"index;not null;uniqueIndex:idx_answers_round_player_category"`
	CategoryID             int       `gorm:"not null;uniqueIndex:idx_answers_round_player_category"`
	Word                   string    `gorm:"size:64;not null;default:''"`
	IsValid                bool      `gorm:"not null;default:false"`
	Points                 int       `gorm:"not null;default:0"`
	NeedsManualValidation  bool      `gorm:"not null;default:false"`
	ManualValidationResult *bool     `gorm:""`
	CreatedAt              time.Time `gorm:"not null"`
	UpdatedAt              time.Time `gorm:"not null"`
}
