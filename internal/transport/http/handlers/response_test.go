package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/badrkarrachai/WanaShip-Backend/internal/usecase"
)

func record(t *testing.T, write func(c *gin.Context)) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	write(c)

	var envelope Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return rec, envelope
}

func TestResponderOK(t *testing.T) {
	respond := NewResponder("2.1.0")

	rec, envelope := record(t, func(c *gin.Context) {
		respond.OK(c, http.StatusCreated, "Parcel created successfully.", gin.H{"id": "parcel-1"})
	})

	if rec.Code != http.StatusCreated {
		t.Errorf("status %d, want 201", rec.Code)
	}
	if !envelope.Success || envelope.Status != http.StatusCreated {
		t.Errorf("unexpected envelope: %+v", envelope)
	}
	if envelope.Message != "Parcel created successfully." {
		t.Errorf("message = %q", envelope.Message)
	}
	if envelope.Metadata.Version != "2.1.0" {
		t.Errorf("version = %q, want 2.1.0", envelope.Metadata.Version)
	}
	if envelope.Error != nil {
		t.Error("success envelope must not carry an error body")
	}
}

func TestMapError(t *testing.T) {
	respond := NewResponder("")
	cases := []ErrorCase{
		{Err: usecase.ErrParcelNotFound, Status: http.StatusNotFound, Code: CodeParcelNotFound, Message: "Parcel not found."},
		{Err: usecase.ErrParcelExists, Status: http.StatusConflict, Code: CodeAlreadyExists, Message: "A matching parcel already exists."},
		{Err: nil, Status: http.StatusTeapot, Code: "SKIPPED", Message: "never matched"},
	}

	t.Run("known sentinel", func(t *testing.T) {
		rec, envelope := record(t, func(c *gin.Context) {
			respond.MapError(c, usecase.ErrParcelNotFound, cases)
		})
		if rec.Code != http.StatusNotFound {
			t.Errorf("status %d, want 404", rec.Code)
		}
		if envelope.Error == nil || envelope.Error.Code != CodeParcelNotFound {
			t.Errorf("unexpected error body: %+v", envelope.Error)
		}
	})

	t.Run("wrapped sentinel still matches", func(t *testing.T) {
		wrapped := fmt.Errorf("lookup parcel: %w", usecase.ErrParcelExists)
		rec, envelope := record(t, func(c *gin.Context) {
			respond.MapError(c, wrapped, cases)
		})
		if rec.Code != http.StatusConflict || envelope.Error.Code != CodeAlreadyExists {
			t.Errorf("status %d code %v", rec.Code, envelope.Error)
		}
	})

	t.Run("unknown error falls back to 500 without leaking detail", func(t *testing.T) {
		internal := errors.New("pq: connection refused on 10.3.1.7")
		rec, envelope := record(t, func(c *gin.Context) {
			respond.MapError(c, internal, cases)
		})
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status %d, want 500", rec.Code)
		}
		if envelope.Error == nil || envelope.Error.Code != CodeInternalError {
			t.Errorf("unexpected error body: %+v", envelope.Error)
		}
		if envelope.Message != "Something went wrong. Please try again later." {
			t.Errorf("message = %q", envelope.Message)
		}
		if envelope.Error.Details == internal.Error() {
			t.Error("internal error text leaked to the client")
		}
	})

	t.Run("validation errors surface their message", func(t *testing.T) {
		svc := usecase.NewAddressService(nil)
		_, err := svc.Create(context.Background(), "owner-1", usecase.AddressInput{})
		if !usecase.IsValidationError(err) {
			t.Fatalf("fixture did not produce a validation error: %v", err)
		}

		rec, envelope := record(t, func(c *gin.Context) {
			respond.MapError(c, err, append(cases, validationCase(err)))
		})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status %d, want 400", rec.Code)
		}
		if envelope.Error == nil || envelope.Error.Code != CodeInvalidInput {
			t.Errorf("unexpected error body: %+v", envelope.Error)
		}
		if envelope.Message != err.Error() {
			t.Errorf("message = %q, want %q", envelope.Message, err.Error())
		}
	})
}
