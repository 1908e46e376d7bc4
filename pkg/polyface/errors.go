package polyface

import (
	"errors"
	"fmt"
)

// Validation error codes.
const (
	CodeInvalidTolerance   = "INVALID_TOLERANCE"
	CodeNonUnitNormal      = "NON_UNIT_NORMAL"
	CodeIndexOutOfRange    = "INDEX_OUT_OF_RANGE"
	CodeNegativeIndex      = "NEGATIVE_INDEX"
	CodeStreamLength       = "STREAM_LENGTH"
	CodeTerminatorMismatch = "TERMINATOR_MISMATCH"
	CodeFaceDataRange      = "FACE_DATA_RANGE"
	CodeAuxLayout          = "AUX_LAYOUT"
)

// ValidationError reports a precondition failure on builder input or a
// consistency failure found when reading a mesh.
type ValidationError struct {
	Code    string
	Message string
	Index   int // offending position, if any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (index %d)", e.Code, e.Message, e.Index)
}

// ErrNotClosed is returned by volume queries on meshes that fail the edge
// pairing test.
var ErrNotClosed = errors.New("polyface: mesh is not closed by edge pairing")

// IsValidationCode reports whether err is a *ValidationError with the
// given code.
func IsValidationCode(err error, code string) bool {
	var ve *ValidationError
	return errors.As(err, &ve) && ve.Code == code
}
