package docmerge

import (
	"errors"
	"strconv"
	"testing"
)

func makeRecords(n int) []Record {
	records := make([]Record, n)
	for i := range records {
		records[i] = Record{"n": strconv.Itoa(i + 1)}
	}
	return records
}

func TestPlanChunks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		records   int
		size      int
		wantSizes []int
	}{
		{"remainder in last chunk", 5, 2, []int{2, 2, 1}},
		{"exact multiple", 6, 3, []int{3, 3}},
		{"single chunk", 3, 200, []int{3}},
		{"size one", 3, 1, []int{1, 1, 1}},
		{"one record", 1, 5, []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			records := makeRecords(tt.records)
			chunks, err := PlanChunks(records, tt.size)
			if err != nil {
				t.Fatalf("PlanChunks() unexpected error: %v", err)
			}

			wantCount := (tt.records + tt.size - 1) / tt.size
			if len(chunks) != wantCount {
				t.Fatalf("len(chunks) = %d, want ceil(%d/%d) = %d", len(chunks), tt.records, tt.size, wantCount)
			}

			next := 1
			for i, c := range chunks {
				if c.Index != i+1 {
					t.Errorf("chunks[%d].Index = %d, want %d", i, c.Index, i+1)
				}
				if len(c.Records) != tt.wantSizes[i] {
					t.Errorf("chunks[%d] size = %d, want %d", i, len(c.Records), tt.wantSizes[i])
				}
				for _, r := range c.Records {
					if r["n"] != strconv.Itoa(next) {
						t.Errorf("chunks[%d] record = %s, want %d", i, r["n"], next)
					}
					next++
				}
			}
			if next != tt.records+1 {
				t.Errorf("chunks cover %d records, want %d", next-1, tt.records)
			}
		})
	}
}

func TestPlanChunks_AppendDoesNotLeak(t *testing.T) {
	t.Parallel()

	records := makeRecords(4)
	chunks, err := PlanChunks(records, 2)
	if err != nil {
		t.Fatal(err)
	}

	_ = append(chunks[0].Records, Record{"n": "x"})
	if records[2]["n"] != "3" {
		t.Errorf("appending to chunk 1 overwrote record 3: %v", records[2])
	}
}

func TestPlanChunks_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		records []Record
		size    int
		wantErr error
	}{
		{"zero size", makeRecords(3), 0, ErrInvalidChunkSize},
		{"negative size", makeRecords(3), -1, ErrInvalidChunkSize},
		{"no records", nil, 2, ErrNoRecords},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := PlanChunks(tt.records, tt.size)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("PlanChunks() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
