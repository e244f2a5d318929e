package eventhandler

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/zacharyclement/feature-restrictions/services/restrictions/model"
)

func stringProp(event model.Event, key string) (string, error) {
	raw, ok := event.EventProperties[key]
	if !ok {
		return "", fmt.Errorf("%s: %w", key, model.ErrBadEventProperties)
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%s: %w", key, model.ErrBadEventProperties)
	}
	return s, nil
}

func floatProp(event model.Event, key string) (float64, error) {
	raw, ok := event.EventProperties[key]
	if !ok {
		return 0, fmt.Errorf("%s: %w", key, model.ErrBadEventProperties)
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, model.ErrBadEventProperties)
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, model.ErrBadEventProperties)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%s: %w", key, model.ErrBadEventProperties)
	}
}
