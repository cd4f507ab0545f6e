package docmerge

import (
	"encoding/json"
	"sort"
)

// RuleKind says where a template variable takes its value from.
type RuleKind int

const (
	// RuleCSV reads the value from a data column.
	RuleCSV RuleKind = iota
	// RuleConstant uses the same fixed value for every record.
	RuleConstant
)

func (k RuleKind) String() string {
	if k == RuleConstant {
		return "constant"
	}
	return "csv"
}

// MappingRule resolves one template variable.
// For RuleCSV, Value is the column name; for RuleConstant, the value itself.
type MappingRule struct {
	Kind  RuleKind
	Value string
}

// CSV returns a rule that reads column.
func CSV(column string) MappingRule {
	return MappingRule{Kind: RuleCSV, Value: column}
}

// Constant returns a rule with a fixed value.
func Constant(value string) MappingRule {
	return MappingRule{Kind: RuleConstant, Value: value}
}

// Resolve returns the rule's value for row. Absent columns resolve to "".
func (r MappingRule) Resolve(row Row) string {
	if r.Kind == RuleConstant {
		return r.Value
	}
	return row[r.Value]
}

// Mapping associates template variables with their rules.
type Mapping map[string]MappingRule

// Variables returns the mapped variable names, sorted.
func (m Mapping) Variables() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Counts returns how many rules read a column and how many are constant.
func (m Mapping) Counts() (csv, constant int) {
	for _, r := range m {
		if r.Kind == RuleConstant {
			constant++
		} else {
			csv++
		}
	}
	return csv, constant
}

// AllConstant reports whether every rule is a constant. An empty mapping is not.
func (m Mapping) AllConstant() bool {
	if len(m) == 0 {
		return false
	}
	_, constant := m.Counts()
	return constant == len(m)
}

// Row is one data source row keyed by column header.
type Row = map[string]string

// Record holds the resolved value of every mapped variable for one output page.
type Record = map[string]string

// Chunk is a contiguous group of records. Index starts at 1.
type Chunk struct {
	Index   int
	Records []Record
}

// RenderedChunk is a chunk merged into a DOCX file.
type RenderedChunk struct {
	Index int
	Size  int
	Path  string
}

// ConvertedChunk is a rendered chunk converted to PDF.
type ConvertedChunk struct {
	Index int
	Size  int
	Path  string
}

// Result is the outcome of a run, serialized as the last line of the
// progress stream.
type Result struct {
	Success         bool
	PageCount       int
	VariablesFound  int
	VariablesMapped int
	OutputPath      string
	Error           string
}

type successJSON struct {
	Success         bool   `json:"success"`
	PageCount       int    `json:"page_count"`
	VariablesFound  int    `json:"variables_found"`
	VariablesMapped int    `json:"variables_mapped"`
	OutputPath      string `json:"output_pdf"`
}

type failureJSON struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// MarshalJSON emits the success shape or the failure shape, never both.
func (r Result) MarshalJSON() ([]byte, error) {
	if !r.Success {
		return json.Marshal(failureJSON{Success: false, Error: r.Error})
	}
	return json.Marshal(successJSON{
		Success:         true,
		PageCount:       r.PageCount,
		VariablesFound:  r.VariablesFound,
		VariablesMapped: r.VariablesMapped,
		OutputPath:      r.OutputPath,
	})
}

// Failed builds a failure Result from err.
func Failed(err error) Result {
	return Result{Success: false, Error: err.Error()}
}
