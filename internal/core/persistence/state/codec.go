package state

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang/snappy"
)

// 记录格式标记，写在值的第一个字节
const (
	formatJSON   byte = 0x01
	formatSnappy byte = 0x02
)

// ErrCorruptRecord 记录无法解码
var ErrCorruptRecord = errors.New("记录已损坏")

// Codec 记录编解码器
//
// 写入格式由 compress 决定；读取按记录自身的格式标记解码，
// 因此切换压缩配置不影响已有数据。
type Codec struct {
	compress bool
}

// NewCodec 创建编解码器
func NewCodec(compress bool) *Codec {
	return &Codec{compress: compress}
}

// Encode 编码记录
func (c *Codec) Encode(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("序列化记录失败: %w", err)
	}
	if !c.compress {
		return append([]byte{formatJSON}, raw...), nil
	}
	out := make([]byte, 1, 1+snappy.MaxEncodedLen(len(raw)))
	out[0] = formatSnappy
	return append(out, snappy.Encode(nil, raw)...), nil
}

// Decode 解码记录
func (c *Codec) Decode(data []byte, v interface{}) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: 空记录", ErrCorruptRecord)
	}
	raw := data[1:]
	switch data[0] {
	case formatJSON:
	case formatSnappy:
		decoded, err := snappy.Decode(nil, raw)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCorruptRecord, err)
		}
		raw = decoded
	default:
		return fmt.Errorf("%w: 未知格式 0x%02x", ErrCorruptRecord, data[0])
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return nil
}
