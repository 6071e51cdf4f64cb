package main

import (
	"encoding/csv"
	"flag"
	"log"
	"os"
	"strings"

	"petit-bac/internal/config"
	"petit-bac/internal/db"
	"petit-bac/internal/dictionary"
)

type wordRecord struct {
	Category string
	Text     string
}

func main() {
	filePath := flag.String("file", "words.csv", "path to words csv")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}

	conn, err := db.Open()
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	records, err := readWords(*filePath)
	if err != nil {
		log.Fatalf("failed to read words: %v", err)
	}

	categories := make(map[string]int)
	inserted := 0
	for _, record := range records {
		categoryID, ok := categories[record.Category]
		if !ok {
			category := db.Category{Name: record.Category}
			if err := conn.FirstOrCreate(&category, db.Category{Name: record.Category}).Error; err != nil {
				log.Fatalf("failed to upsert category: %v", err)
			}
			categoryID = category.ID
			categories[record.Category] = categoryID
		}
		entry := db.Word{
			CategoryID: categoryID,
			Text:       record.Text,
			Normalized: dictionary.Normalize(record.Text),
		}
		if err := conn.FirstOrCreate(&entry, db.Word{CategoryID: categoryID, Normalized: entry.Normalized}).Error; err != nil {
			log.Fatalf("failed to upsert word: %v", err)
		}
		inserted++
	}

	log.Printf("loaded %d words across %d categories", inserted, len(categories))
}

func readWords(path string) ([]wordRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var records []wordRecord
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 2 {
			continue
		}
		category := strings.TrimSpace(row[0])
		text := strings.TrimSpace(row[1])
		if category == "" || text == "" {
			continue
		}
		records = append(records, wordRecord{Category: category, Text: text})
	}
	return records, nil
}
