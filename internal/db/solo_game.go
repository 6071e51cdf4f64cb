package db

import "time"

type SoloGame struct {
	ID        uint         `gorm:"primaryKey"`
	Letter    string       `gorm:"size:1;not null"`
	Score     int          `gorm:"not null;default:0"`
	CreatedAt time.Time    `gorm:"not null"`
	UpdatedAt time.Time    `gorm:"not null"`
	Answers   []SoloAnswer `gorm:"constraint:OnDelete:CASCADE"`
}

type SoloAnswer struct {
	ID         uint      `gorm:"primaryKey"`
	SoloGameID uint      `gorm:"index;not null"`
	CategoryID int       `gorm:"not null"`
	Word       string    `gorm:"size:64;not null;default:''"`
	IsValid    bool      `gorm:"not null;default:false"`
	Points     int       `gorm:"not null;default:0"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}
