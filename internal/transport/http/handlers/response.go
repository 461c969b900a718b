package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Error codes returned inside the response envelope.
const (
	CodeInvalidInput          = "INVALID_INPUT"
	CodeNotFound              = "NOT_FOUND"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeParcelNotFound        = "PARCEL_NOT_FOUND"
	CodeAddressNotFound       = "ADDRESS_NOT_FOUND"
	CodeInvalidAddress        = "INVALID_ADDRESS"
	CodeUnauthorizedUpdate    = "UNAUTHORIZED_UPDATE"
	CodeUpdateNotAllowed      = "UPDATE_NOT_ALLOWED"
	CodeInvalidStatusUpdate   = "INVALID_STATUS_UPDATE"
	CodeParcelAlreadyAssigned = "PARCEL_ALREADY_ASSIGNED"
	CodeInvalidReshipper      = "INVALID_RESHIPPER"
	CodeAlreadyExists         = "ALREADY_EXISTS"
	CodeAlreadyDeleted        = "ALREADY_DELETED"
	CodeAlreadyReshipping     = "ALREADY_RESHIPPING"
	CodeAccountDisabled       = "ACCOUNT_DISABLED"
	CodeAccountDeleted        = "ACCOUNT_DELETED"
	CodeInvalidOTP            = "INVALID_OTP"
	CodeExpiredOTP            = "EXPIRED_OTP"
	CodeInternalError         = "INTERNAL_ERROR"
)

// ErrorBody carries the machine-readable error inside the envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Details string `json:"details"`
}

// Metadata is attached to every response.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// Envelope is the uniform JSON shape of every API response.
type Envelope struct {
	Status   int        `json:"status"`
	Success  bool       `json:"success"`
	Message  string     `json:"message"`
	Data     any        `json:"data,omitempty"`
	Error    *ErrorBody `json:"error,omitempty"`
	Metadata Metadata   `json:"metadata"`
}

// Responder shapes envelopes with the running API version.
type Responder struct {
	version string
}

// NewResponder constructs a Responder stamping the given version.
func NewResponder(version string) *Responder {
	if version == "" {
		version = "1.0.0"
	}
	return &Responder{version: version}
}

func (r *Responder) metadata() Metadata {
	return Metadata{Timestamp: time.Now().UTC(), Version: r.version}
}

// OK writes a success envelope.
func (r *Responder) OK(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{
		Status:   status,
		Success:  true,
		Message:  message,
		Data:     data,
		Metadata: r.metadata(),
	})
}

// Fail writes an error envelope. Details never carry internal error text, only
// the fixed message for the matched case.
func (r *Responder) Fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, Envelope{
		Status:   status,
		Success:  false,
		Message:  message,
		Error:    &ErrorBody{Code: code, Details: message},
		Metadata: r.metadata(),
	})
}

// AbortFail writes an error envelope and aborts the handler chain.
func (r *Responder) AbortFail(c *gin.Context, status int, code, message string) {
	c.Abort()
	r.Fail(c, status, code, message)
}

// ErrorCase maps a sentinel error to an HTTP status, error code, and message.
type ErrorCase struct {
	Err     error
	Status  int
	Code    string
	Message string
}

// MapError resolves the provided error against known cases or falls back to a
// generic 500. Internal detail is logged upstream, never surfaced.
func (r *Responder) MapError(c *gin.Context, err error, cases []ErrorCase) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	for _, cs := range cases {
		if cs.Err == nil {
			continue
		}
		if errors.Is(err, cs.Err) {
			r.Fail(c, cs.Status, cs.Code, cs.Message)
			return
		}
	}

	r.Fail(c, http.StatusInternalServerError, CodeInternalError, "Something went wrong. Please try again later.")
}
