// Package apierror provides the typed error taxonomy shared by services and
// handlers, plus the JSON envelope every 4xx/5xx response is rendered with.
// Store errors are translated here so internal details (SQL, stack traces)
// never reach clients.
package apierror

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Kind is the public error class returned as "code" in the envelope.
type Kind string

const (
	KindValidation        Kind = "VALIDATION_ERROR"
	KindNotFound          Kind = "NOT_FOUND"
	KindConflict          Kind = "CONFLICT"
	KindInsufficientStock Kind = "INSUFFICIENT_STOCK"
	KindPersistence       Kind = "PERSISTENCE_ERROR"
	KindUnauthorized      Kind = "UNAUTHORIZED"
)

// Reason narrows a Kind to the concrete business rule that failed.
type Reason string

const (
	ReasonImeiAlreadyInCart       Reason = "IMEI_ALREADY_IN_CART"
	ReasonItemAlreadySold         Reason = "ITEM_ALREADY_SOLD"
	ReasonImeiNotFound            Reason = "IMEI_NOT_FOUND"
	ReasonImeiAlreadyRegistered   Reason = "IMEI_ALREADY_REGISTERED"
	ReasonInvalidStatusTransition Reason = "INVALID_STATUS_TRANSITION"
	ReasonItemNotFound            Reason = "ITEM_NOT_FOUND"
	ReasonDeviceNotFound          Reason = "DEVICE_NOT_FOUND"
	ReasonBatchLineNotFound       Reason = "BATCH_LINE_NOT_FOUND"
	ReasonSaleNotFound            Reason = "SALE_NOT_FOUND"
	ReasonCategoryNotFound        Reason = "CATEGORY_NOT_FOUND"
	ReasonBrandNotFound           Reason = "BRAND_NOT_FOUND"
	ReasonCartEmpty               Reason = "CART_EMPTY"
	ReasonInvalidMode             Reason = "INVALID_MODE"
	ReasonImeiRequired            Reason = "IMEI_REQUIRED"
	ReasonImeiNotAllowed          Reason = "IMEI_NOT_ALLOWED"
	ReasonInsufficientStock       Reason = "INSUFFICIENT_STOCK"
	ReasonDuplicate               Reason = "DUPLICATE"
	ReasonReferenced              Reason = "REFERENCED"
	ReasonOutOfRange              Reason = "OUT_OF_RANGE"
)

var statusByKind = map[Kind]int{
	KindValidation:        http.StatusBadRequest,
	KindNotFound:          http.StatusNotFound,
	KindConflict:          http.StatusConflict,
	KindInsufficientStock: http.StatusConflict,
	KindPersistence:       http.StatusInternalServerError,
	KindUnauthorized:      http.StatusUnauthorized,
}

// Error is the typed failure returned by every service operation.
type Error struct {
	Kind    Kind
	Reason  Reason
	Message string
	Fields  map[string]string

	status int
	cause  error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Reason != "" {
		msg += "/" + string(e.Reason)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.cause }

// Status returns the HTTP status code for the error.
func (e *Error) Status() int {
	if e.status != 0 {
		return e.status
	}
	if s, ok := statusByKind[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func New(kind Kind, reason Reason, msg string) *Error {
	return &Error{Kind: kind, Reason: reason, Message: msg}
}

func Wrap(kind Kind, reason Reason, msg string, cause error) *Error {
	return &Error{Kind: kind, Reason: reason, Message: msg, cause: cause}
}

func Validation(reason Reason, msg string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Reason: reason, Message: msg, Fields: fields}
}

// NewValidation is used for struct-tag failures; it renders as 422.
func NewValidation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields, status: http.StatusUnprocessableEntity}
}

func NotFound(reason Reason, msg string) *Error {
	return New(KindNotFound, reason, msg)
}

func Conflict(reason Reason, msg string) *Error {
	return New(KindConflict, reason, msg)
}

func InsufficientStock(msg string) *Error {
	return New(KindInsufficientStock, ReasonInsufficientStock, msg)
}

func Persistence(cause error) *Error {
	return Wrap(KindPersistence, "", "persistence failure", cause)
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}

// IsReason reports whether err carries the given reason.
func IsReason(err error, reason Reason) bool {
	e, ok := As(err)
	return ok && e.Reason == reason
}

// FromStore translates a gorm/driver error into the taxonomy. Errors that
// are already typed pass through untouched. notFound is the reason used
// when the record is missing.
func FromStore(err error, notFound Reason, msg string) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Wrap(KindNotFound, notFound, msg, err)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return Wrap(KindConflict, ReasonDuplicate, "duplicate value", err)
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return Wrap(KindConflict, ReasonReferenced, "referenced record", err)
	}
	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return Wrap(KindValidation, ReasonOutOfRange, "value out of range", err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return Wrap(KindConflict, ReasonDuplicate, "duplicate value", err)
		case "23503":
			return Wrap(KindConflict, ReasonReferenced, "referenced record", err)
		case "23514":
			return Wrap(KindValidation, ReasonOutOfRange, "value out of range", err)
		}
	}
	return Persistence(err)
}

// Details returns driver-level context for logging. It never goes on the wire.
func Details(err error) map[string]string {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	return map[string]string{
		"pg_code":       pgErr.Code,
		"pg_constraint": pgErr.ConstraintName,
		"pg_table":      pgErr.TableName,
		"pg_detail":     pgErr.Detail,
	}
}

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Code        Kind              `json:"code"`
	Reason      Reason            `json:"reason,omitempty"`
	Detail      string            `json:"detail"`
	Fields      map[string]string `json:"fields,omitempty"`
	SupportCode string            `json:"support_code,omitempty"`
}

// Envelope renders err for the client. Untyped errors become an opaque 500.
func Envelope(err error, supportCode string) (int, *APIError) {
	e, ok := As(err)
	if !ok {
		return http.StatusInternalServerError, &APIError{
			Code:        KindPersistence,
			Detail:      "internal server error",
			SupportCode: supportCode,
		}
	}
	detail := e.Message
	if e.Kind == KindPersistence {
		detail = "internal server error"
	}
	return e.Status(), &APIError{
		Code:        e.Kind,
		Reason:      e.Reason,
		Detail:      detail,
		Fields:      e.Fields,
		SupportCode: supportCode,
	}
}
