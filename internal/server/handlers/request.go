// internal/server/handlers/request.go

package handlers

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"neighborly/internal/apperror"
	"neighborly/internal/domain/identity"
	"neighborly/internal/domain/paging"
)

// NewValidator returns the request validator. Field errors are reported with
// their JSON names, and "hhmm" checks 24-hour HH:MM times.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("15:04", fl.Field().String())
		return err == nil
	})
	return v
}

// decode reads a JSON body into dst and validates it
func decode(r *http.Request, v *validator.Validate, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		appErr := apperror.Validation(apperror.CodeValidation, "Invalid request body")
		appErr.Err = err
		return appErr
	}
	if err := v.Struct(dst); err != nil {
		return apperror.FromValidation(err)
	}
	return nil
}

// currentUser returns the ID of the authenticated caller
func currentUser(r *http.Request) string {
	u, _ := identity.FromContext(r.Context())
	return u.ID
}

// pageFrom reads page and limit; malformed values fall back to defaults
func pageFrom(r *http.Request) paging.Request {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return paging.Request{Page: page, Limit: limit}.Normalize()
}

func queryFloat(r *http.Request, key string) (float64, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func queryBool(r *http.Request, key string) *bool {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &b
}

// queryList splits a comma-separated parameter, dropping blanks
func queryList(r *http.Request, key string) []string {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates
func parseDate(field, raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	appErr := apperror.Validation(apperror.CodeValidation, "Validation failed")
	appErr.Fields = []map[string]string{{field: "must be a valid date"}}
	return time.Time{}, appErr
}
