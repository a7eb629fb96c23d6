package server

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/resume-tailor/internal/types"
)

// ParseRequest is the body for POST /parse/resume and /parse/job
type ParseRequest struct {
	Text string `json:"text" validate:"required,max=200000"`
}

// PairRequest carries a resume and a job as raw JSON so they can be gated
// by the structural validator before decoding.
type PairRequest struct {
	Resume json.RawMessage `json:"resume" validate:"required"`
	Job    json.RawMessage `json:"job" validate:"required"`
}

// TailorRequest is the body for POST /tailor
type TailorRequest struct {
	PairRequest
	Style    string `json:"style,omitempty" validate:"omitempty,oneof=concise detailed"`
	UserID   string `json:"user_id,omitempty" validate:"omitempty,max=128"`
	ResumeID string `json:"resume_id,omitempty" validate:"omitempty,uuid"`
	JobID    string `json:"job_id,omitempty" validate:"omitempty,uuid"`
}

// ParseResumeResponse is returned by POST /parse/resume
type ParseResumeResponse struct {
	Resume   types.Resume `json:"resume"`
	Degraded bool         `json:"degraded"`
	ID       string       `json:"id,omitempty"`
}

// ParseJobResponse is returned by POST /parse/job
type ParseJobResponse struct {
	Job      types.Job `json:"job"`
	Degraded bool      `json:"degraded"`
	ID       string    `json:"id,omitempty"`
}

// MatchResponse is returned by POST /match
type MatchResponse struct {
	Matches  []types.BulletSimilarityMatch `json:"matches"`
	Degraded bool                          `json:"degraded"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// newValidator reports fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var validate = newValidator()

// validateRequest converts validator failures into ErrValidation for the first bad field
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		return &ErrValidation{Field: fe.Field(), Message: describe(fe)}
	}
	return &ErrValidation{Field: "body", Message: err.Error()}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		return "exceeds maximum length " + fe.Param()
	case "uuid":
		return "must be a UUID"
	default:
		return "failed " + fe.Tag() + " check"
	}
}
