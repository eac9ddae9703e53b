package decode

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

// Options controls decode behavior.
type Options struct {
	// Weak typing (default true): "123" -> int, 1.0 -> int64, etc.
	// JSON decoding turns all numbers into float64, so this stays on.
	WeaklyTypedInput bool
}

func DefaultOptions() Options {
	return Options{WeaklyTypedInput: true}
}

// DecodeMap decodes a generic payload map into a typed struct T using
// `json` tags. Frame payloads arrive as map[string]any after the outer
// JSON unmarshal; handlers use this to get their typed view.
func DecodeMap[T any](m map[string]any, opts ...Options) (*T, error) {
	if m == nil {
		return nil, fmt.Errorf("payload is nil")
	}

	cfg := DefaultOptions()
	if len(opts) > 0 {
		cfg = opts[0]
	}

	var out T
	decCfg := &mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &out,
		WeaklyTypedInput: cfg.WeaklyTypedInput,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			floatToIntHook(),
			jsonRawStringToMapHook(),
		),
	}

	dec, err := mapstructure.NewDecoder(decCfg)
	if err != nil {
		return nil, fmt.Errorf("new decoder: %w", err)
	}
	if err := dec.Decode(m); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &out, nil
}

// floatToIntHook converts float64 JSON numbers into integer targets
// when the value is integral.
func floatToIntHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.Float64 {
			return data, nil
		}
		f := data.(float64)
		switch to.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if f == float64(int64(f)) {
				return int64(f), nil
			}
			return nil, fmt.Errorf("non-integral number %v for %s", f, to.Kind())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if f >= 0 && f == float64(uint64(f)) {
				return uint64(f), nil
			}
			return nil, fmt.Errorf("non-integral number %v for %s", f, to.Kind())
		case reflect.String:
			return strconv.FormatFloat(f, 'f', -1, 64), nil
		default:
			return data, nil
		}
	}
}

// jsonRawStringToMapHook lets a payload field carry embedded JSON as a
// string and still land in a map/struct target.
func jsonRawStringToMapHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String {
			return data, nil
		}
		if to.Kind() != reflect.Map && to.Kind() != reflect.Struct {
			return data, nil
		}
		s := data.(string)
		if len(s) == 0 || (s[0] != '{' && s[0] != '[') {
			return data, nil
		}
		var out any
		if err := json.Unmarshal([]byte(s), &out); err != nil {
			return data, nil
		}
		return out, nil
	}
}
