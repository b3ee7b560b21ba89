package flash

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	fo "github.com/mechanik-daniel/flashonata"
	"github.com/mechanik-daniel/flashonata/definitions"
	"github.com/mechanik-daniel/flashonata/env"
)

// integerLikeTypes coerce to an exact Go int64 — these are bounded integer
// FHIR types with no trailing-zero/precision concern (spec §4.7/D3).
var integerLikeTypes = map[string]bool{
	"integer":     true,
	"positiveInt": true,
	"unsignedInt": true,
}

// decimalLikeTypes carry a shopspring/decimal.Decimal through to JSON
// encoding, preserving the scale of the original literal (spec §4.7).
var decimalLikeTypes = map[string]bool{
	"decimal":   true,
	"integer64": true,
}

// isEmptyScalar reports whether raw is the "empty" falsy input spec §4.4
// treats as undefined, excluding the explicitly-retained false/0.
func isEmptyScalar(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case float64:
		return math.IsNaN(v)
	default:
		return false
	}
}

// truthy implements the ambient-language booleanization rule spec §4.4
// references for coercing a non-bool value into a FHIR boolean.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case int64:
		return t != 0
	case decimal.Decimal:
		return !t.IsZero()
	case nil:
		return false
	default:
		return true
	}
}

// isScalar reports whether raw is a leaf value the primitive normalizer can
// operate on (spec §4.4's type pre-check, F3006 on failure).
func isScalar(raw any) bool {
	switch raw.(type) {
	case bool, string, float64, float32, int, int64, decimal.Decimal:
		return true
	default:
		return false
	}
}

// normalizeScalar applies spec §4.4's primitive normalization to a single
// leaf value against its ED. Returns (nil, nil) for an empty/absent input.
func normalizeScalar(scope *env.Env, ed *definitions.ElementDefinition, raw any, opts *fo.Options) (any, *fo.EvalError) {
	if ed.FhirTypeCode == "" {
		return nil, fo.NewErr(fo.ErrUnresolvedPrimitiveType).
			At(ed.Path, "", ed.FlashPathRefKey).
			Message("element %q has no resolved FHIR primitive type", ed.Path).
			Build()
	}

	if isEmptyScalar(raw) {
		return nil, nil
	}

	if !isScalar(raw) {
		return nil, fo.NewErr(fo.ErrNotScalar).
			At(ed.Path, "", ed.FlashPathRefKey).
			Value(raw, fmt.Sprintf("%T", raw)).
			Message("inline value for %q must be a scalar, got %T", ed.Path, raw).
			Build()
	}

	var normalized any
	switch ed.FhirTypeCode {
	case "boolean":
		normalized = truthy(raw)

	case "date", "dateTime", "instant":
		normalized = normalizeDate(ed.FhirTypeCode, raw, opts)

	default:
		if decimalLikeTypes[ed.FhirTypeCode] {
			d, err := toDecimal(raw)
			if err != nil {
				return nil, fo.NewErr(fo.ErrNotScalar).
					At(ed.Path, "", ed.FlashPathRefKey).
					Value(raw, fmt.Sprintf("%T", raw)).
					Message("cannot coerce %v to %s: %v", raw, ed.FhirTypeCode, err).
					Build()
			}
			normalized = d
		} else if integerLikeTypes[ed.FhirTypeCode] {
			i, err := toInt64(raw)
			if err != nil {
				return nil, fo.NewErr(fo.ErrNotScalar).
					At(ed.Path, "", ed.FlashPathRefKey).
					Value(raw, fmt.Sprintf("%T", raw)).
					Message("cannot coerce %v to %s: %v", raw, ed.FhirTypeCode, err).
					Build()
			}
			normalized = i
		} else {
			normalized = stringify(raw)
		}
	}

	if ed.Regex != "" {
		re, err := compiledRegex(scope, ed.Regex)
		if err != nil {
			return nil, fo.NewErr(fo.ErrRegexMismatch).
				At(ed.Path, "", ed.FlashPathRefKey).
				Regex(ed.Regex, ed.FhirTypeCode).
				Message("invalid regex %q on element %q: %v", ed.Regex, ed.Path, err).
				Build()
		}
		if !re.MatchString(stringify(normalized)) {
			return nil, fo.NewErr(fo.ErrRegexMismatch).
				At(ed.Path, "", ed.FlashPathRefKey).
				Value(normalized, fmt.Sprintf("%T", normalized)).
				Regex(ed.Regex, ed.FhirTypeCode).
				Message("value %v does not match %s pattern for %q", normalized, ed.FhirTypeCode, ed.Path).
				Build()
		}
	}

	return normalized, nil
}

// normalizeDate truncates a date literal longer than 10 characters to its
// first 10, or (when StrictDateTruncation is set) leaves it untouched so the
// regex check can reject it. dateTime and instant values pass through as
// supplied.
func normalizeDate(fhirType string, raw any, opts *fo.Options) string {
	s := stringify(raw)
	if fhirType != "date" || (opts != nil && opts.StrictDateTruncation) {
		return s
	}
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

// toDecimal coerces a scalar to a decimal.Decimal, preserving the original
// string's trailing zeros when the input is already textual.
func toDecimal(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case decimal.Decimal:
		return v, nil
	case string:
		return decimal.NewFromString(v)
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case bool:
		if v {
			return decimal.NewFromInt(1), nil
		}
		return decimal.NewFromInt(0), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("unsupported numeric input type %T", raw)
	}
}

// toInt64 coerces a scalar to an exact int64 for the bounded-integer FHIR
// types (integer, positiveInt, unsignedInt).
func toInt64(raw any) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case decimal.Decimal:
		return v.IntPart(), nil
	default:
		return 0, fmt.Errorf("unsupported integer input type %T", raw)
	}
}

// stringify renders a scalar's string form for regex matching and the
// "all other primitive codes are stringified" fallback (spec §4.4).
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case decimal.Decimal:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}
