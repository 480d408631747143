package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructors_MapToHTTPStatus(t *testing.T) {
	cases := []struct {
		err    *AppError
		code   ErrorCode
		status int
	}{
		{InvalidInput("bad sku"), CodeInvalidInput, http.StatusBadRequest},
		{Unauthorized("no key"), CodeUnauthorized, http.StatusUnauthorized},
		{Forbidden("bad key"), CodeForbidden, http.StatusForbidden},
		{RateLimited(60, 60), CodeRateLimited, http.StatusTooManyRequests},
		{Internal(errors.New("boom")), CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if tc.err.Code != tc.code {
			t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
		}
		if tc.err.HTTPStatus != tc.status {
			t.Errorf("%s: expected status %d, got %d", tc.code, tc.status, tc.err.HTTPStatus)
		}
	}
}

func TestInternal_HidesCauseFromResponse(t *testing.T) {
	cause := errors.New("redis exploded")
	appErr := Internal(cause)

	if !errors.Is(appErr, cause) {
		t.Error("cause must be reachable through Unwrap")
	}

	resp := appErr.ToResponse()
	if resp.Error.Message == cause.Error() {
		t.Error("internal cause must not leak into the client message")
	}
	if resp.Error.Code != CodeInternal {
		t.Errorf("unexpected code %s", resp.Error.Code)
	}
}

func TestAsAppError(t *testing.T) {
	appErr := InvalidInput("bad")
	wrapped := fmt.Errorf("handling request: %w", appErr)

	got, ok := AsAppError(wrapped)
	if !ok || got.Code != CodeInvalidInput {
		t.Errorf("expected to recover the AppError, got %v %v", got, ok)
	}

	if _, ok := AsAppError(errors.New("plain")); ok {
		t.Error("plain errors must not convert")
	}
}

func TestRateLimited_MessageNamesTheWindow(t *testing.T) {
	err := RateLimited(60, 60)
	if err.Message == "" {
		t.Fatal("expected a client-facing message")
	}
}
