package docmerge

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by Generate wraps exactly one of them.
var (
	ErrInput      = errors.New("input error")
	ErrRender     = errors.New("render error")
	ErrConversion = errors.New("conversion error")
	ErrMerge      = errors.New("merge error")
	ErrWorkspace  = errors.New("workspace error")
)

// Input validation errors.
var (
	ErrTemplateType     = fmt.Errorf("%w: Template must be a .docx file", ErrInput)
	ErrEmptyMapping     = fmt.Errorf("%w: mapping is empty", ErrInput)
	ErrInvalidMapping   = fmt.Errorf("%w: invalid mapping document", ErrInput)
	ErrNoRecords        = fmt.Errorf("%w: No records to generate", ErrInput)
	ErrInvalidChunkSize = fmt.Errorf("%w: chunk size must be positive", ErrInput)
	ErrMissingOutput    = fmt.Errorf("%w: output path is required", ErrInput)
	ErrOutputDir        = fmt.Errorf("%w: output directory does not exist", ErrInput)
	ErrDataSource       = fmt.Errorf("%w: cannot read data source", ErrInput)
	ErrTemplateRead     = fmt.Errorf("%w: cannot read template", ErrInput)
)

// Renderer and conversion errors.
var (
	ErrRendererNotFound = fmt.Errorf("%w: LibreOffice (soffice) not found", ErrConversion)
	ErrRendererFailed   = fmt.Errorf("%w: renderer exited with an error", ErrConversion)
	ErrArtifactMissing  = fmt.Errorf("%w: renderer produced no PDF", ErrConversion)
)

// Stage names a pipeline step in ChunkError.
type Stage string

// Pipeline stages that work per chunk.
const (
	StageRender  Stage = "render"
	StageConvert Stage = "convert"
)

// ChunkError reports a failure tied to one chunk.
// It unwraps to both the stage category and the cause.
type ChunkError struct {
	Stage Stage
	Index int
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("%s chunk %d: %v", e.Stage, e.Index, e.Err)
}

// Unwrap returns the stage category and the underlying cause.
func (e *ChunkError) Unwrap() []error {
	return []error{e.category(), e.Err}
}

func (e *ChunkError) category() error {
	if e.Stage == StageRender {
		return ErrRender
	}
	return ErrConversion
}
