package docmerge

// BuildRecords resolves the mapping against rows.
//
// A mapping made only of constants yields a single record whatever the row
// count. Otherwise every row yields one record and a column missing from a
// row resolves to "".
func BuildRecords(m Mapping, rows []Row) ([]Record, error) {
	if len(m) == 0 {
		return nil, ErrEmptyMapping
	}

	if m.AllConstant() {
		return []Record{resolve(m, nil)}, nil
	}

	if len(rows) == 0 {
		return nil, ErrNoRecords
	}
	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = resolve(m, row)
	}
	return records, nil
}

func resolve(m Mapping, row Row) Record {
	rec := make(Record, len(m))
	for name, rule := range m {
		rec[name] = rule.Resolve(row)
	}
	return rec
}
