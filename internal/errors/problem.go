package errors

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/render"
)

// Problem type URIs. Responses follow RFC 7807 with error_code and
// trace_id as extension members.
const (
	TypeValidation      = "/errors/validation"
	TypeNotFound        = "/errors/not-found"
	TypeMethod          = "/errors/method-not-allowed"
	TypeRateLimit       = "/errors/rate-limit"
	TypeTimeout         = "/errors/timeout"
	TypeInternal        = "/errors/internal"
	TypeParseFailed     = "/errors/analysis/parse-failed"
	TypeNoStiffness     = "/errors/analysis/no-stiffness"
	TypeDegenerateSlope = "/errors/session/degenerate-slope"
	TypeExportFailed    = "/errors/export/failed"
	TypePayloadTooLarge = "/errors/payload-too-large"
	TypeStorage         = "/errors/storage"
)

type problemKind struct {
	status int
	uri    string
	title  string
}

var appProblems = map[ErrorType]problemKind{
	ErrTypeParsing:         {http.StatusUnprocessableEntity, TypeParseFailed, "Log Parse Failed"},
	ErrTypeNoStiffness:     {http.StatusConflict, TypeNoStiffness, "No Stiffness Region"},
	ErrTypeDegenerateSlope: {http.StatusConflict, TypeDegenerateSlope, "Degenerate Slope"},
	ErrTypeValidation:      {http.StatusBadRequest, TypeValidation, "Validation Failed"},
	ErrTypeNotFound:        {http.StatusNotFound, TypeNotFound, "Resource Not Found"},
	ErrTypeExportIO:        {http.StatusInternalServerError, TypeExportFailed, "Export Failed"},
	ErrTypeStorage:         {http.StatusInternalServerError, TypeStorage, "Storage Error"},
}

var internalProblem = problemKind{http.StatusInternalServerError, TypeInternal, "Internal Server Error"}

func kindOf(t ErrorType) problemKind {
	if k, ok := appProblems[t]; ok {
		return k
	}
	return internalProblem
}

// ProblemDetails is an RFC 7807 response body.
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	Extensions map[string]interface{} `json:"-"`
}

func NewProblemDetails(status int, problemType, title, detail, instance string) *ProblemDetails {
	return &ProblemDetails{
		Type:       problemType,
		Title:      title,
		Status:     status,
		Detail:     detail,
		Instance:   instance,
		Extensions: make(map[string]interface{}),
	}
}

func (k problemKind) problem(detail, instance string) *ProblemDetails {
	return NewProblemDetails(k.status, k.uri, k.title, detail, instance)
}

// WithExtension sets a top-level extension member.
func (pd *ProblemDetails) WithExtension(key string, value interface{}) *ProblemDetails {
	if pd.Extensions == nil {
		pd.Extensions = make(map[string]interface{})
	}
	pd.Extensions[key] = value
	return pd
}

// Render implements render.Renderer.
func (pd *ProblemDetails) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, pd.Status)
	return nil
}

// MarshalJSON flattens extensions next to the standard members. Standard
// members win on a name clash.
func (pd *ProblemDetails) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(pd.Extensions)+5)
	for k, v := range pd.Extensions {
		out[k] = v
	}
	out["type"] = pd.Type
	out["title"] = pd.Title
	out["status"] = pd.Status
	if pd.Detail != "" {
		out["detail"] = pd.Detail
	}
	if pd.Instance != "" {
		out["instance"] = pd.Instance
	}
	return json.Marshal(out)
}
