package db

import "time"

type Category struct {
	ID        int       `gorm:"primaryKey"`
	Name      string    `gorm:"size:64;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type Word struct {
	ID         uint      `gorm:"primaryKey"`
	CategoryID int       `gorm:"index;not null;uniqueIndex:idx_words_category_normalized"`
	Text       string    `gorm:"size:64;not null"`
	Normalized string    `gorm:"size:64;not null;uniqueIndex:idx_words_category_normalized"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}
