package dto

import "testing"

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name          string
		page, perPage int
		total         int
		totalPages    int
		hasNext       bool
		hasPrev       bool
	}{
		{"empty", 1, 10, 0, 0, false, false},
		{"single page", 1, 10, 7, 1, false, false},
		{"exact fit", 2, 5, 10, 2, false, true},
		{"middle page", 2, 3, 7, 3, true, true},
		{"last partial page", 3, 3, 7, 3, false, true},
		{"page past the end", 5, 10, 7, 1, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.perPage, tt.total)
			if p.TotalPages != tt.totalPages {
				t.Errorf("totalPages = %d, want %d", p.TotalPages, tt.totalPages)
			}
			if p.HasNext != tt.hasNext {
				t.Errorf("hasNext = %v, want %v", p.HasNext, tt.hasNext)
			}
			if p.HasPrev != tt.hasPrev {
				t.Errorf("hasPrev = %v, want %v", p.HasPrev, tt.hasPrev)
			}
			if p.Total != tt.total || p.Page != tt.page || p.PerPage != tt.perPage {
				t.Errorf("echoed fields mismatch: %+v", p)
			}
		})
	}
}
