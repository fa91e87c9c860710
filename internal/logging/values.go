package logging

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"jazzmate/internal/services"
)

// FieldScore carries a recommendation match score in [0,1].
const FieldScore = "score"

const consoleTimeLayout = "2006-01-02 15:04:05"

var classifiedMarkers = []error{
	services.ErrNotFound,
	services.ErrValidation,
	services.ErrConfiguration,
	services.ErrTimeout,
	services.ErrUnavailable,
	services.ErrTransient,
}

func consoleTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.In(time.Local).Format(consoleTimeLayout)
}

// errorKind returns the failure class of err, or "" when err carries no
// marker from the services package.
func errorKind(err error) string {
	for _, marker := range classifiedMarkers {
		if errors.Is(err, marker) {
			return services.Kind(err)
		}
	}
	return ""
}

// subjectValue renders the review id or attempt for the line header.
func subjectValue(v slog.Value) string {
	v = v.Resolve()
	if v.Kind() == slog.KindString {
		return strings.TrimSpace(v.String())
	}
	return strings.TrimSpace(rawField("", v))
}

// fieldValue renders one console field, quoting values that would break the
// "key: value" layout.
func fieldValue(key string, v slog.Value) string {
	s := rawField(key, v)
	if s == "" || strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '"' || r == '=' }) {
		return strconv.Quote(s)
	}
	return s
}

func rawField(key string, v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindFloat64:
		if key == FieldScore {
			return strconv.FormatFloat(v.Float64()*100, 'f', 1, 64) + "%"
		}
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindDuration:
		return v.Duration().Round(time.Millisecond).String()
	case slog.KindTime:
		return consoleTime(v.Time())
	case slog.KindAny:
		switch x := v.Any().(type) {
		case error:
			if kind := errorKind(x); kind != "" {
				return x.Error() + " [" + kind + "]"
			}
			return x.Error()
		case fmt.Stringer:
			return x.String()
		default:
			return fmt.Sprint(x)
		}
	default:
		return v.String()
	}
}
