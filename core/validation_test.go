package core

import (
	"errors"
	"testing"
)

func TestValidateCatalogEntry(t *testing.T) {
	tests := []struct {
		name    string
		entry   *CatalogEntry
		wantErr error
	}{
		{
			name: "valid entry",
			entry: &CatalogEntry{
				ID:       "X1",
				LongName: "Lipton Diet Green Tea (20oz)",
				Vector:   []float32{0.1, 0.2},
			},
			wantErr: nil,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantErr: ErrInvalidCatalogEntry,
		},
		{
			name: "blank id",
			entry: &CatalogEntry{
				ID:       "  ",
				LongName: "Lipton Diet Green Tea (20oz)",
				Vector:   []float32{0.1},
			},
			wantErr: ErrEmptyDatapointID,
		},
		{
			name: "empty long name",
			entry: &CatalogEntry{
				ID:     "X1",
				Vector: []float32{0.1},
			},
			wantErr: ErrEmptyLongName,
		},
		{
			name: "missing vector",
			entry: &CatalogEntry{
				ID:       "X1",
				LongName: "Lipton Diet Green Tea (20oz)",
			},
			wantErr: ErrEmptyVector,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCatalogEntry(tt.entry)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateCatalogEntry() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateCatalogEntry() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidCatalogEntry) {
				t.Errorf("ValidateCatalogEntry() error = %v should wrap ErrInvalidCatalogEntry", err)
			}
		})
	}
}

func TestValidateProducts(t *testing.T) {
	if err := ValidateProducts([]string{"coke 12oz", "coke 12oz"}); err != nil {
		t.Errorf("duplicates should be allowed, got %v", err)
	}
	if err := ValidateProducts(nil); err != nil {
		t.Errorf("empty input should be allowed, got %v", err)
	}
	if err := ValidateProducts([]string{"coke", " "}); !errors.Is(err, ErrInvalidProduct) {
		t.Errorf("blank item error = %v, want ErrInvalidProduct", err)
	}
}
