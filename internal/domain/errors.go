package domain

import (
	"errors"
	"fmt"
)

// ErrorType classifies pipeline failures.
type ErrorType string

const (
	// ErrorTypeValidation marks an ingested item rejected by the allow-list.
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeDecode marks a source image or document that could not be decoded.
	ErrorTypeDecode ErrorType = "decode"
	// ErrorTypeRender marks a page that failed to render.
	ErrorTypeRender ErrorType = "render"
	// ErrorTypeEncode marks a failed final document or archive assembly.
	ErrorTypeEncode ErrorType = "encode"
)

// Sentinel errors.
var (
	// ErrSuperseded is returned for an extraction pass that was abandoned
	// because a newer request replaced it. It is not a user-facing failure.
	ErrSuperseded = errors.New("pinea: extraction superseded by a newer request")

	// ErrEmptySequence is returned when an export is attempted on an empty
	// item sequence.
	ErrEmptySequence = errors.New("pinea: nothing to export, sequence is empty")
)

// PipelineError is a classified failure with enough context to say what
// failed: the offending item's id for image problems, the page number for
// page problems.
type PipelineError struct {
	Type    ErrorType
	Message string
	ItemID  string
	Page    int
	Err     error
}

func (e *PipelineError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Type, e.Message)
	switch {
	case e.ItemID != "":
		msg = fmt.Sprintf("%s (item %s)", msg, e.ItemID)
	case e.Page > 0:
		msg = fmt.Sprintf("%s (page %d)", msg, e.Page)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// ValidationError reports a rejected item.
func ValidationError(message string, err error) *PipelineError {
	return &PipelineError{Type: ErrorTypeValidation, Message: message, Err: err}
}

// DecodeError reports an undecodable item by id.
func DecodeError(itemID, message string, err error) *PipelineError {
	return &PipelineError{Type: ErrorTypeDecode, Message: message, ItemID: itemID, Err: err}
}

// RenderError reports a failed page render by page number.
func RenderError(page int, message string, err error) *PipelineError {
	return &PipelineError{Type: ErrorTypeRender, Message: message, Page: page, Err: err}
}

// EncodeError reports a failed document or archive assembly.
func EncodeError(message string, err error) *PipelineError {
	return &PipelineError{Type: ErrorTypeEncode, Message: message, Err: err}
}
