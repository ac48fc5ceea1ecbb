package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/karoldydo/i18n-mate-sub003/internal/platform/httpx"
	"github.com/karoldydo/i18n-mate-sub003/internal/services"
)

const maxRequestBody = 16 * 1024

var errBodyTooLarge = errors.New("request body too large")

func readLimitedBody(r *http.Request, limit int64) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, errBodyTooLarge
	}
	return body, nil
}

func decodeJSONBody(r *http.Request, dst any) *httpx.Error {
	body, err := readLimitedBody(r, maxRequestBody)
	if err != nil {
		if errors.Is(err, errBodyTooLarge) {
			e := httpx.NewError(http.StatusRequestEntityTooLarge, "request body exceeds allowed size")
			return &e
		}
		e := httpx.NewError(http.StatusBadRequest, "unable to read request body")
		return &e
	}
	if len(body) == 0 {
		e := httpx.NewError(http.StatusBadRequest, "request body is required")
		return &e
	}
	if err := json.Unmarshal(body, dst); err != nil {
		e := httpx.NewError(http.StatusBadRequest, "invalid JSON payload")
		return &e
	}
	return nil
}

// serviceError maps service sentinel errors onto the JSON error envelope.
func serviceError(err error) httpx.Error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return httpx.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrLocaleNotFound),
		errors.Is(err, services.ErrKeyNotFound),
		errors.Is(err, services.ErrJobNotFound):
		return httpx.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrDuplicateName),
		errors.Is(err, services.ErrDuplicateLocale),
		errors.Is(err, services.ErrDuplicateKey),
		errors.Is(err, services.ErrDefaultLocale),
		errors.Is(err, services.ErrJobAlreadyActive),
		errors.Is(err, services.ErrJobNotCancellable):
		return httpx.NewError(http.StatusConflict, err.Error())
	default:
		return httpx.NewError(http.StatusInternalServerError, "internal server error")
	}
}
