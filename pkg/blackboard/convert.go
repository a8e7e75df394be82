package blackboard

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/canopy/pkg/domain"
)

// ParseString converts an XML literal to T. Semicolons separate slice
// elements. Exposed so the port layer can parse literal bindings with the
// same rules that apply to stored string entries.
func ParseString[T any](s string) (T, error) {
	var zero T
	var out any
	var err error

	switch any(zero).(type) {
	case string:
		out = s
	case bool:
		out, err = parseBool(s)
	case int:
		var v int64
		v, err = strconv.ParseInt(s, 10, 0)
		out = int(v)
	case int8:
		var v int64
		v, err = strconv.ParseInt(s, 10, 8)
		out = int8(v)
	case int16:
		var v int64
		v, err = strconv.ParseInt(s, 10, 16)
		out = int16(v)
	case int32:
		var v int64
		v, err = strconv.ParseInt(s, 10, 32)
		out = int32(v)
	case int64:
		out, err = strconv.ParseInt(s, 10, 64)
	case uint:
		var v uint64
		v, err = strconv.ParseUint(s, 10, 0)
		out = uint(v)
	case uint8:
		var v uint64
		v, err = strconv.ParseUint(s, 10, 8)
		out = uint8(v)
	case uint16:
		var v uint64
		v, err = strconv.ParseUint(s, 10, 16)
		out = uint16(v)
	case uint32:
		var v uint64
		v, err = strconv.ParseUint(s, 10, 32)
		out = uint32(v)
	case uint64:
		out, err = strconv.ParseUint(s, 10, 64)
	case float32:
		var v float64
		v, err = strconv.ParseFloat(s, 32)
		out = float32(v)
	case float64:
		out, err = strconv.ParseFloat(s, 64)
	case time.Duration:
		out, err = time.ParseDuration(s)
	case domain.NodeStatus:
		out, err = domain.ParseNodeStatus(s)
	case domain.PortDirection:
		out, err = domain.ParsePortDirection(s)
	case []string:
		out = strings.Split(s, ";")
	case []int:
		out, err = parseSlice(s, func(el string) (int, error) {
			v, err := strconv.ParseInt(el, 10, 0)
			return int(v), err
		})
	case []float64:
		out, err = parseSlice(s, func(el string) (float64, error) {
			return strconv.ParseFloat(el, 64)
		})
	default:
		return zero, fmt.Errorf("no string conversion for %T", zero)
	}

	if err != nil {
		return zero, err
	}
	return out.(T), nil
}

// parseBool follows the reference wire format: 1/0, true/false, TRUE/FALSE.
func parseBool(s string) (bool, error) {
	switch s {
	case "1", "true", "TRUE":
		return true, nil
	case "0", "false", "FALSE":
		return false, nil
	}
	return false, fmt.Errorf("%q is not one of 1/0, true/false, TRUE/FALSE", s)
}

func parseSlice[E any](s string, parse func(string) (E, error)) ([]E, error) {
	parts := strings.Split(s, ";")
	out := make([]E, 0, len(parts))
	for _, p := range parts {
		v, err := parse(p)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// decodeMap decodes a map-shaped stored value (e.g. from a YAML seed file)
// into a struct or map type T. The bool result reports whether decoding was
// applicable at all.
func decodeMap[T any](v any) (T, bool, error) {
	var out T

	switch v.(type) {
	case map[string]any, map[any]any:
	default:
		return out, false, nil
	}

	rt := reflect.TypeOf(out)
	if rt == nil {
		return out, false, nil
	}
	switch rt.Kind() {
	case reflect.Struct, reflect.Map:
	default:
		return out, false, nil
	}

	err := mapstructure.Decode(v, &out)
	return out, true, err
}
