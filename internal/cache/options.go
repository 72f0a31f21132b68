package cache

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/xhit/go-str2duration/v2"
)

// DecodeOptions 将 path/ttl/prefix 选项表解码为 Options，未知字段直接报错。
// ttl 可以是秒数（整数或浮点）、"-1"，或 "90m"、"1d" 之类的时长字符串。
func DecodeOptions(raw map[string]any) (Options, error) {
	var opts Options
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  TTLDecodeHook(reflect.TypeOf(time.Duration(0))),
		ErrorUnused: true,
		Result:      &opts,
	})
	if err != nil {
		return Options{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return Options{}, fmt.Errorf("decode cache options: %w", err)
	}
	if opts.Prefix == "" {
		return Options{}, ErrPrefixRequired
	}
	return opts, nil
}

// TTLDecodeHook 将配置中的 TTL 写法转换为 target（底层类型须为 time.Duration）。
func TTLDecodeHook(target reflect.Type) mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != target {
			return data, nil
		}
		ttl, err := ParseTTL(data)
		if err != nil {
			return nil, err
		}
		return reflect.ValueOf(ttl).Convert(target).Interface(), nil
	}
}

// ParseTTL 解析以秒为单位的数值或时长字符串；-1 映射为 Forever。
func ParseTTL(data any) (time.Duration, error) {
	switch v := data.(type) {
	case nil:
		return 0, nil
	case string:
		raw := strings.TrimSpace(v)
		if raw == "" {
			return 0, nil
		}
		if seconds, err := strconv.ParseFloat(raw, 64); err == nil {
			return secondsToTTL(seconds), nil
		}
		parsed, err := str2duration.ParseDuration(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid ttl value: %s", raw)
		}
		return parsed, nil
	case int:
		return secondsToTTL(float64(v)), nil
	case int64:
		return secondsToTTL(float64(v)), nil
	case float64:
		return secondsToTTL(v), nil
	case time.Duration:
		return v, nil
	default:
		rv := reflect.ValueOf(data)
		if rv.Kind() == reflect.Int64 && rv.Type().ConvertibleTo(reflect.TypeOf(time.Duration(0))) {
			return time.Duration(rv.Int()), nil
		}
		return 0, fmt.Errorf("unsupported ttl type: %T", data)
	}
}

func secondsToTTL(seconds float64) time.Duration {
	if seconds == -1 {
		return Forever
	}
	return time.Duration(seconds * float64(time.Second))
}
