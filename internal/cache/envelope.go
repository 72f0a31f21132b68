package cache

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// envelope 是落盘的 (expiresAt, value) 二元组，编码为 msgpack 数组。
// Value 保留原始字节，由调用方按目标类型解码。
type envelope struct {
	_msgpack struct{} `msgpack:",as_array"`

	ExpiresAt int64
	Value     msgpack.RawMessage
}

// expired 判断 envelope 在 now（Unix 秒）时是否已过期。
func (e envelope) expired(now int64) bool {
	return e.ExpiresAt != neverExpires && now > e.ExpiresAt
}

// EncodeEnvelope 将过期时间与任意可序列化的值编码为字节。
func EncodeEnvelope(expiresAt int64, value any) ([]byte, error) {
	raw, err := msgpack.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode cache value: %w", err)
	}
	data, err := msgpack.Marshal(&envelope{ExpiresAt: expiresAt, Value: raw})
	if err != nil {
		return nil, fmt.Errorf("encode cache envelope: %w", err)
	}
	return data, nil
}

// DecodeEnvelope 解析字节，返回过期时间与原始值字节。
// 空、截断或格式错误的输入一律返回 ErrInvalidEnvelope。
func DecodeEnvelope(data []byte) (int64, msgpack.RawMessage, error) {
	env, err := decodeEnvelope(data)
	if err != nil {
		return 0, nil, err
	}
	return env.ExpiresAt, env.Value, nil
}

// decodeEnvelope 严格校验二元数组结构；值本身可以是 nil（0xc0）。
func decodeEnvelope(data []byte) (envelope, error) {
	if len(data) == 0 {
		return envelope{}, ErrInvalidEnvelope
	}
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return envelope{}, fmt.Errorf("%w: %v", ErrInvalidEnvelope, err)
	}
	if n != 2 {
		return envelope{}, fmt.Errorf("%w: expected 2 elements, got %d", ErrInvalidEnvelope, n)
	}
	expiresAt, err := dec.DecodeInt64()
	if err != nil {
		return envelope{}, fmt.Errorf("%w: expiresAt: %v", ErrInvalidEnvelope, err)
	}
	raw, err := dec.DecodeRaw()
	if err != nil {
		return envelope{}, fmt.Errorf("%w: value: %v", ErrInvalidEnvelope, err)
	}
	return envelope{ExpiresAt: expiresAt, Value: raw}, nil
}

// decodeValue 将原始值字节解码为 any，整数统一为 int64/uint64。
func decodeValue(raw msgpack.RawMessage) (any, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(raw))
	dec.UseLooseInterfaceDecoding(true)
	return dec.DecodeInterfaceLoose()
}

// decodeValueAs 将原始值字节解码为具体类型 T。
func decodeValueAs[T any](raw msgpack.RawMessage) (T, error) {
	var out T
	if err := msgpack.Unmarshal(raw, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
