package dictionary

import "testing"

func snapshotService() *Service {
	svc := New(nil)
	svc.LoadSnapshot(
		[]Category{{ID: 1, Name: "Animal"}, {ID: 2, Name: "Ville"}},
		map[int][]string{
			1: {"Éléphant", "Tigre"},
			2: {"Paris", "Sète"},
		},
	)
	return svc
}

func TestCategoriesFromSnapshot(t *testing.T) {
	svc := snapshotService()
	categories, err := svc.Categories()
	if err != nil {
		t.Fatalf("categories failed: %v", err)
	}
	if len(categories) != 2 || categories[0].Name != "Animal" {
		t.Fatalf("unexpected categories: %v", categories)
	}
}

func TestCategoriesUnavailableWithoutData(t *testing.T) {
	svc := New(nil)
	if _, err := svc.Categories(); err != ErrUnavailable {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestValidateWordAccentInsensitive(t *testing.T) {
	svc := snapshotService()
	for _, word := range []string{"elephant", "ÉLÉPHANT", "  éléphant "} {
		valid, err := svc.ValidateWord(word, 1)
		if err != nil {
			t.Fatalf("validate %q failed: %v", word, err)
		}
		if !valid {
			t.Fatalf("expected %q to validate", word)
		}
	}
}

func TestValidateWordMiss(t *testing.T) {
	svc := snapshotService()
	valid, err := svc.ValidateWord("Licorne", 1)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if valid {
		t.Fatal("unknown word must not validate")
	}
}

func TestValidateWordWrongCategory(t *testing.T) {
	svc := snapshotService()
	valid, err := svc.ValidateWord("Paris", 1)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if valid {
		t.Fatal("word must only count in its own category")
	}
}

func TestValidateWordUnknownCategory(t *testing.T) {
	svc := snapshotService()
	if _, err := svc.ValidateWord("Paris", 99); err != ErrUnavailable {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestValidateWordEmpty(t *testing.T) {
	svc := snapshotService()
	valid, err := svc.ValidateWord("   ", 1)
	if err != nil || valid {
		t.Fatalf("empty word must be invalid without error, got valid=%t err=%v", valid, err)
	}
}
