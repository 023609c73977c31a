// Package errors defines the HTTP error-writing helpers and the typed
// pipeline error kinds described in the system's error-handling design:
// ValidationError, DownloadError, ProbeError, ExtractError,
// TranscriptionError, SelectionEmpty, RenderError, BrokerError and
// InternalError.
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/clipforge/viralclip/log"
	"github.com/xeipuuv/gojsonschema"
)

type APIError struct {
	Msg    string `json:"message"`
	Status int    `json:"status"`
	Err    error  `json:"-"`
}

func (e APIError) Error() string {
	return e.Msg
}

func writeHttpError(w http.ResponseWriter, msg string, status int, err error) APIError {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	var errorDetail string
	if err != nil {
		errorDetail = err.Error()
	}

	if err := json.NewEncoder(w).Encode(map[string]string{"error": msg, "error_detail": errorDetail}); err != nil {
		log.LogNoJobID("error writing HTTP error", "http_error_msg", msg, "error", err)
	}
	return APIError{msg, status, err}
}

// HTTP Errors
func WriteHTTPUnauthorized(w http.ResponseWriter, msg string, err error) APIError {
	return writeHttpError(w, msg, http.StatusUnauthorized, err)
}

func WriteHTTPBadRequest(w http.ResponseWriter, msg string, err error) APIError {
	return writeHttpError(w, msg, http.StatusBadRequest, err)
}

func WriteHTTPNotFound(w http.ResponseWriter, msg string, err error) APIError {
	return writeHttpError(w, msg, http.StatusNotFound, err)
}

func WriteHTTPInternalServerError(w http.ResponseWriter, msg string, err error) APIError {
	return writeHttpError(w, msg, http.StatusInternalServerError, err)
}

func WriteHTTPBadBodySchema(where string, w http.ResponseWriter, errs []gojsonschema.ResultError) APIError {
	sb := strings.Builder{}
	sb.WriteString("Body validation error in ")
	sb.WriteString(where)
	sb.WriteString(" ")
	for i := 0; i < len(errs); i++ {
		sb.WriteString(errs[i].String())
		sb.WriteString(" ")
	}
	return writeHttpError(w, sb.String(), http.StatusBadRequest, nil)
}

// Unretriable wraps an error that the caller must not retry.
type UnretriableError struct{ error }

func Unretriable(err error) error {
	return UnretriableError{err}
}

func (e UnretriableError) Unwrap() error {
	return e.error
}

func IsUnretriable(err error) bool {
	return errors.As(err, &UnretriableError{})
}

type ObjectNotFoundError struct {
	msg   string
	cause error
}

func (e ObjectNotFoundError) Error() string {
	return e.msg
}

func (e ObjectNotFoundError) Unwrap() error {
	return e.cause
}

func NewObjectNotFoundError(msg string, cause error) error {
	if cause != nil {
		msg = fmt.Sprintf("ObjectNotFoundError: %s: %s", msg, cause)
	} else {
		msg = fmt.Sprintf("ObjectNotFoundError: %s", msg)
	}
	return Unretriable(ObjectNotFoundError{msg: msg, cause: cause})
}

func IsObjectNotFound(err error) bool {
	return errors.As(err, &ObjectNotFoundError{})
}

// ValidationError — bad/missing input at the API boundary, surfaces as 400.
type ValidationError struct{ msg string }

func (e ValidationError) Error() string { return e.msg }

func NewValidationError(format string, args ...any) error {
	return ValidationError{msg: fmt.Sprintf(format, args...)}
}

func IsValidationError(err error) bool {
	return errors.As(err, &ValidationError{})
}

// DownloadCategory classifies why a remote source could not be fetched.
type DownloadCategory string

const (
	DownloadUnavailable DownloadCategory = "unavailable"
	DownloadRestricted  DownloadCategory = "restricted"
	DownloadTimeout     DownloadCategory = "timeout"
	DownloadUnknown     DownloadCategory = "unknown"
)

type DownloadError struct {
	Category DownloadCategory
	cause    error
}

func (e DownloadError) Error() string {
	return fmt.Sprintf("download error (%s): %v", e.Category, e.cause)
}

func (e DownloadError) Unwrap() error { return e.cause }

func NewDownloadError(category DownloadCategory, cause error) error {
	return DownloadError{Category: category, cause: cause}
}

func IsDownloadError(err error) (DownloadError, bool) {
	var de DownloadError
	ok := errors.As(err, &de)
	return de, ok
}

// UserMessage maps a DownloadError category to a client-safe string.
func (e DownloadError) UserMessage() string {
	switch e.Category {
	case DownloadUnavailable:
		return "the source video is unavailable (private or deleted)"
	case DownloadRestricted:
		return "the source video is restricted (copyright, age, or region)"
	case DownloadTimeout:
		return "timed out fetching the source video"
	default:
		return "could not fetch the source video"
	}
}

// ProbeError — the media toolchain cannot read the file's streams.
type ProbeError struct{ cause error }

func (e ProbeError) Error() string { return fmt.Sprintf("probe error: %v", e.cause) }
func (e ProbeError) Unwrap() error { return e.cause }
func NewProbeError(cause error) error { return ProbeError{cause: cause} }

// ExtractError — the media toolchain cannot extract audio from the file.
type ExtractError struct{ cause error }

func (e ExtractError) Error() string { return fmt.Sprintf("audio extract error: %v", e.cause) }
func (e ExtractError) Unwrap() error { return e.cause }
func NewExtractError(cause error) error { return ExtractError{cause: cause} }

// TranscriptionError — the ASR adapter could not produce a transcript. Fatal for the job.
type TranscriptionError struct{ cause error }

func (e TranscriptionError) Error() string { return fmt.Sprintf("transcription error: %v", e.cause) }
func (e TranscriptionError) Unwrap() error { return e.cause }
func NewTranscriptionError(cause error) error { return TranscriptionError{cause: cause} }

// SelectionEmpty means no candidate windows survived segmentation. This is
// reported as job success with an empty clip list, never as a failure.
var SelectionEmpty = errors.New("no candidate clips survived segmentation")

// RenderError — a single clip failed during the render pipeline. Carries the
// stage it failed at for diagnostics. The job only fails if every clip fails.
type RenderError struct {
	Stage string
	cause error
}

func (e RenderError) Error() string {
	return fmt.Sprintf("render error at stage %s: %v", e.Stage, e.cause)
}
func (e RenderError) Unwrap() error { return e.cause }

func NewRenderError(stage string, cause error) error {
	return RenderError{Stage: stage, cause: cause}
}

// BrokerError — the job queue broker is unreachable or an atomic op failed.
type BrokerError struct{ cause error }

func (e BrokerError) Error() string { return fmt.Sprintf("broker error: %v", e.cause) }
func (e BrokerError) Unwrap() error { return e.cause }
func NewBrokerError(cause error) error { return BrokerError{cause: cause} }

// InternalError — an uncaught error, always captured with a full stack trace.
type InternalError struct {
	cause error
	Trace string
}

func NewInternalError(cause error) error {
	return InternalError{cause: cause, Trace: string(debug.Stack())}
}

func (e InternalError) Error() string { return fmt.Sprintf("internal error: %v", e.cause) }
func (e InternalError) Unwrap() error { return e.cause }

var (
	UnauthorisedError = errors.New("UnauthorisedError")
	InvalidJWT        = errors.New("InvalidJWTError")
)
