package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/thonny3/suivi-buget-perso-sub000/internal/utils"
)

const maxBodyBytes = 1 << 20

// payload is implemented by request bodies that check their own required fields.
type payload interface {
	check() error
}

// decodeBody reads a JSON body into dst and runs its schema check.
func decodeBody(w http.ResponseWriter, r *http.Request, dst payload) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		var syntaxErr *json.SyntaxError
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return &SchemaError{Message: "corps de requête vide"}
		case errors.As(err, &typeErr):
			return invalidField(typeErr.Field, "type invalide, attendu "+typeErr.Type.String())
		case errors.As(err, &syntaxErr):
			return &SchemaError{Message: "JSON invalide à la position " + strconv.FormatInt(syntaxErr.Offset, 10)}
		case errors.As(err, &maxErr):
			return &SchemaError{Message: "corps de requête trop volumineux"}
		default:
			return &SchemaError{Message: "JSON invalide: " + err.Error()}
		}
	}
	return dst.check()
}

func pathID(r *http.Request, name string) (int32, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, invalidField(name, "identifiant invalide")
	}
	return int32(id), nil
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, name string, fallback int32) (int32, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, invalidField(name, "entier attendu")
	}
	return int32(v), nil
}

// parseDate reads an optional yyyy-mm-dd field; the zero time means absent.
func parseDate(field, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := utils.ParseDate(raw)
	if err != nil {
		return time.Time{}, invalidField(field, "date attendue au format aaaa-mm-jj")
	}
	return t, nil
}

func parseOptionalDate(field, raw string) (*time.Time, error) {
	t, err := parseDate(field, raw)
	if err != nil || t.IsZero() {
		return nil, err
	}
	return &t, nil
}
