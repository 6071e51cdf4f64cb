// Package dictionary resolves game categories and word validity against the
// words table, with an in-memory snapshot as offline fallback. Lookup errors
// never escalate past ErrUnavailable; the scoring layer downgrades them to a
// manual-validation flag.
package dictionary

import (
	"errors"
	"sync"

	"petit-bac/internal/db"

	"gorm.io/gorm"
)

var ErrUnavailable = errors.New("dictionary unavailable")

type Category struct {
	ID   int
	Name string
}

type Service struct {
	db *gorm.DB

	mu         sync.RWMutex
	categories []Category
	words      map[int]map[string]struct{}
}

func New(conn *gorm.DB) *Service {
	return &Service{
		db:    conn,
		words: make(map[int]map[string]struct{}),
	}
}

// LoadSnapshot replaces the offline fallback with the given data.
func (s *Service) LoadSnapshot(categories []Category, words map[int][]string) {
	normalized := make(map[int]map[string]struct{}, len(words))
	for categoryID, list := range words {
		set := make(map[string]struct{}, len(list))
		for _, word := range list {
			set[Normalize(word)] = struct{}{}
		}
		normalized[categoryID] = set
	}
	s.mu.Lock()
	s.categories = append([]Category(nil), categories...)
	s.words = normalized
	s.mu.Unlock()
}

func (s *Service) Categories() ([]Category, error) {
	if s.db != nil {
		var records []db.Category
		if err := s.db.Order("id").Find(&records).Error; err == nil {
			categories := make([]Category, 0, len(records))
			for _, record := range records {
				categories = append(categories, Category{ID: record.ID, Name: record.Name})
			}
			if len(categories) > 0 {
				return categories, nil
			}
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.categories) == 0 {
		return nil, ErrUnavailable
	}
	return append([]Category(nil), s.categories...), nil
}

func (s *Service) ValidateWord(word string, categoryID int) (bool, error) {
	normalized := Normalize(word)
	if normalized == "" {
		return false, nil
	}
	if s.db != nil {
		var count int64
		err := s.db.Model(&db.Word{}).
			Where("normalized = ? AND category_id = ?", normalized, categoryID).
			Count(&count).Error
		if err == nil {
			return count > 0, nil
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.words[categoryID]
	if !ok {
		return false, ErrUnavailable
	}
	_, found := set[normalized]
	return found, nil
}
