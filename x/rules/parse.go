package rules

import (
	"fmt"

	"github.com/mizuame/searchgate/core"
)

// The yaml decoder hands rule settings over as interface{} trees with
// map[interface{}]interface{} nodes; these helpers normalize them.

func toString(v interface{}) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", core.NewErrorConfig(fmt.Sprintf("expected string, got %T", v))
	}
	return s, nil
}

func toStringSlice(v interface{}) ([]string, error) {
	switch t := v.(type) {
	case string:
		return []string{t}, nil
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, err := toString(item)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	case []string:
		return t, nil
	default:
		return nil, core.NewErrorConfig(fmt.Sprintf("expected string or list of strings, got %T", v))
	}
}

func toInt(v interface{}) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		return int(t), nil
	default:
		return 0, core.NewErrorConfig(fmt.Sprintf("expected integer, got %T", v))
	}
}

func toBool(v interface{}) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, core.NewErrorConfig(fmt.Sprintf("expected boolean, got %T", v))
	}
	return b, nil
}

func toMap(v interface{}) (map[string]interface{}, error) {
	switch t := v.(type) {
	case map[string]interface{}:
		return t, nil
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			ks, ok := k.(string)
			if !ok {
				return nil, core.NewErrorConfig(fmt.Sprintf("expected string key, got %T", k))
			}
			out[ks] = val
		}
		return out, nil
	default:
		return nil, core.NewErrorConfig(fmt.Sprintf("expected mapping, got %T", v))
	}
}
