package internal

import "strconv"

// Scalar is the set of types the typed accessors can parse into.
type Scalar interface {
	~string | ~int | ~int64 | ~float64 | ~bool
}

// ContextValue returns the value stored under key, or T's zero value.
func ContextValue[T any](c Context, key any) T {
	if v, ok := c.Get(key).(T); ok {
		return v
	}
	var zero T
	return zero
}

func Param[T Scalar](c Context, name string) T {
	v, _ := parseAs[T](c.Param(name))
	return v
}

func Query[T Scalar](c Context, name string) T {
	v, _ := parseAs[T](c.Query(name))
	return v
}

// QueryDefault returns defaultValue when the parameter is missing or does not parse.
//
//	limit := QueryDefault(c, "limit", 50)
func QueryDefault[T Scalar](c Context, name string, defaultValue T) T {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue
	}
	if v, ok := parseAs[T](raw); ok {
		return v
	}
	return defaultValue
}

func parseAs[T Scalar](raw string) (T, bool) {
	var zero T
	var (
		v   any
		err error
	)
	switch any(zero).(type) {
	case string:
		v = raw
	case int:
		v, err = strconv.Atoi(raw)
	case int64:
		v, err = strconv.ParseInt(raw, 10, 64)
	case float64:
		v, err = strconv.ParseFloat(raw, 64)
	case bool:
		v, err = strconv.ParseBool(raw)
	default:
		return zero, false
	}
	if err != nil {
		return zero, false
	}
	return v.(T), true
}
