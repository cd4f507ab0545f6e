package docmerge

// DefaultChunkSize is the number of records rendered into one document.
const DefaultChunkSize = 200

// PlanChunks splits records into consecutive chunks of size records; the last
// chunk holds the remainder. Indexes start at 1.
func PlanChunks(records []Record, size int) ([]Chunk, error) {
	if size <= 0 {
		return nil, ErrInvalidChunkSize
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	chunks := make([]Chunk, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		chunks = append(chunks, Chunk{
			Index:   len(chunks) + 1,
			Records: records[start:end:end],
		})
	}
	return chunks, nil
}
