package db

import "time"

type EndGameRequest struct {
	ID                uint       `gorm:"primaryKey"`
	RoomID            uint       `gorm:"index;not null"`
	RoundID           uint       `gorm:"index;not null"`
	RequesterPlayerID uint       `gorm:"index;not null"`
	Status            string     `gorm:"size:16;not null"`
	RespondedAt       *time.Time `gorm:""`
	CreatedAt         time.Time  `gorm:"not null"`
	UpdatedAt         time.Time  `gorm:"not null"`
}
