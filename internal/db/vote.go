package db

import "time"

type WordValidationVote struct {
	ID        uint      `gorm:"primaryKey"`
	RoomID    uint      `gorm:"index;not null"`
	RoundID   uint      `gorm:"index;not null"`
	AnswerID  uint      `gorm:"index;not null;uniqueIndex:idx_votes_answer_player"`
	PlayerID  uint      `gorm:"index;not null;uniqueIndex:idx_votes_answer_player"`
	Vote      *bool     `gorm:""`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
