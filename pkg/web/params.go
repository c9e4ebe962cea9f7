package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// PathUUID reads the named path value as a UUID, answering 400 when it is malformed.
func PathUUID(w http.ResponseWriter, r *http.Request, logger *slog.Logger, name string) (uuid.UUID, bool) {
	value := r.PathValue(name)
	id, err := uuid.Parse(value)
	if err != nil {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid ID: %s", value))
		return uuid.Nil, false
	}
	return id, true
}

// QueryBool reads a boolean query parameter. An absent parameter yields false.
func QueryBool(w http.ResponseWriter, r *http.Request, logger *slog.Logger, key string) (bool, bool) {
	b, ok := query(w, r, logger, key, strconv.ParseBool)
	if b == nil {
		return false, ok
	}
	return *b, ok
}

// QueryTime reads an RFC 3339 timestamp query parameter. An absent parameter yields nil.
func QueryTime(w http.ResponseWriter, r *http.Request, logger *slog.Logger, key string) (*time.Time, bool) {
	return query(w, r, logger, key, func(s string) (time.Time, error) {
		return time.Parse(time.RFC3339, s)
	})
}

// QueryUUID reads a UUID query parameter. An absent parameter yields nil.
func QueryUUID(w http.ResponseWriter, r *http.Request, logger *slog.Logger, key string) (*uuid.UUID, bool) {
	return query(w, r, logger, key, uuid.Parse)
}

// QueryInt reads a positive integer query parameter. An absent parameter yields nil.
func QueryInt(w http.ResponseWriter, r *http.Request, logger *slog.Logger, key string) (*int, bool) {
	return query(w, r, logger, key, func(s string) (int, error) {
		n, err := strconv.Atoi(s)
		if err == nil && n <= 0 {
			err = fmt.Errorf("must be positive")
		}
		return n, err
	})
}

func query[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, key string, parse func(string) (T, error)) (*T, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil, true
	}
	v, err := parse(value)
	if err != nil {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s: %s", key, value))
		return nil, false
	}
	return &v, true
}
