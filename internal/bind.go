package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/dmitrymomot/upresume/pkg/validator"
)

// maxBodySize caps JSON bodies accepted by Bind.
const maxBodySize = 1 << 20

var (
	ErrUnsupportedTarget = errors.New("bind: target must be a non-nil pointer to a struct")
	ErrMalformedBody     = errors.New("bind: malformed request body")
)

func bindAndValidate(r *http.Request, v any, bind func(*http.Request, any) error) (ValidationErrors, error) {
	if err := bind(r, v); err != nil {
		return nil, err
	}
	if err := validator.Struct(v); err != nil {
		if ve, ok := validator.ExtractValidationErrors(err); ok {
			return ve, nil
		}
		return nil, fmt.Errorf("validate: %w", err)
	}
	return nil, nil
}

func bindBody(r *http.Request, v any) error {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		if r.Body == nil {
			return ErrMalformedBody
		}
		dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
		if err := dec.Decode(v); err != nil {
			return errors.Join(ErrMalformedBody, err)
		}
		return nil
	}

	if err := r.ParseForm(); err != nil {
		return errors.Join(ErrMalformedBody, err)
	}
	return decodeValues(r.PostForm, v)
}

func bindQuery(r *http.Request, v any) error {
	return decodeValues(r.URL.Query(), v)
}

// decodeValues fills exported fields of the struct pointed to by v from vals.
// The key is the form, json or query tag, falling back to the field name.
func decodeValues(vals url.Values, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrUnsupportedTarget
	}
	rv = rv.Elem()
	rt := rv.Type()

	for i := range rt.NumField() {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		key := fieldKey(f)
		if key == "-" || !vals.Has(key) {
			continue
		}
		if err := setField(rv.Field(i), vals.Get(key)); err != nil {
			return fmt.Errorf("%w: field %s: %w", ErrMalformedBody, key, err)
		}
	}
	return nil
}

func fieldKey(f reflect.StructField) string {
	for _, tag := range []string{"form", "json", "query"} {
		if name, _, _ := strings.Cut(f.Tag.Get(tag), ","); name != "" {
			return name
		}
	}
	return f.Name
}

func setField(fv reflect.Value, raw string) error {
	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		fv.SetInt(n)
	default:
		return fmt.Errorf("unsupported kind %s", fv.Kind())
	}
	return nil
}
