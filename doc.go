// Package docmerge mail-merges a DOCX template with tabular data into one PDF.
//
// # Quick Start
//
//	gen := docmerge.NewGenerator(
//	    docmerge.WithProgressWriter(os.Stdout),
//	    docmerge.WithLogger(slog.Default()),
//	)
//
//	res, err := gen.Run(ctx, docmerge.Job{
//	    Template: "letter.docx",
//	    Data:     "customers.csv",
//	    Mapping:  "mapping.json",
//	    Output:   "letters.pdf",
//	})
//
// Run writes the progress stream to the progress writer, one JSON value per
// line, and ends it with the result line:
//
//	{"type":"meta","total":5}
//	{"type":"progress","processed":2,"total":5,"percent":40,"stage":"converting"}
//	...
//	{"success":true,"page_count":5,"variables_found":3,"variables_mapped":3,"output_pdf":"letters.pdf"}
//
// # Pipeline
//
// A run goes through these stages:
//
//  1. The mapping document is normalized into rules (column or constant).
//  2. Rules are resolved against the data rows into records. A mapping made
//     only of constants yields a single record.
//  3. Records are split into chunks (DefaultChunkSize records each).
//  4. Each chunk is rendered into its own DOCX by a bounded worker pool.
//  5. Each rendered chunk is converted to PDF by headless LibreOffice in a
//     second pool, every invocation with its own profile directory. One
//     progress event is emitted per completed conversion.
//  6. The PDFs are merged in chunk order with pdfcpu and renamed onto the
//     output path.
//
// All intermediate files live in a scratch directory that is removed when
// the run ends, however it ends. A failed run leaves nothing at the output path.
//
// # Mapping Documents
//
// A mapping document is a JSON (or YAML) object keyed by template variable:
//
//	{
//	  "first_name": "First Name",
//	  "city":       {"type": "csv", "value": "City"},
//	  "sender":     {"type": "custom", "value": "ACME Corp"}
//	}
//
// A bare string names a column. Objects with type "custom" (or "constant")
// use their value for every record; any other type reads a column.
//
// # Errors
//
// Every error returned by Generate wraps one of ErrInput, ErrRender,
// ErrConversion, ErrMerge or ErrWorkspace. Failures tied to a chunk are
// reported as *ChunkError, which names the chunk index.
package docmerge
