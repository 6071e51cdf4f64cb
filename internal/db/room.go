package db

import "time"

type Room struct {
	ID           uint       `gorm:"primaryKey"`
	Code         string     `gorm:"size:8;uniqueIndex;not null"`
	Letter       string     `gorm:"size:1;not null;default:''"`
	Status       string     `gorm:"size:16;not null"`
	MaxPlayers   int        `gorm:"not null;default:2"`
	UsedLetters  string     `gorm:"size:32;not null;default:''"`
	CurrentRound int        `gorm:"not null;default:0"`
	StartedAt    *time.Time `gorm:""`
	FinishedAt   *time.Time `gorm:""`
	CreatedAt    time.Time  `gorm:"not null"`
	UpdatedAt    time.Time  `gorm:"not null"`
	Players      []Player   `gorm:"constraint:OnDelete:CASCADE"`
	Rounds       []Round    `gorm:"constraint:OnDelete:CASCADE"`
	Events       []Event    `gorm:"constraint:OnDelete:CASCADE"`
}
