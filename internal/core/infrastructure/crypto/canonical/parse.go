package canonical

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/weisyn/bcdb/pkg/types"
)

// ParseJSON 严格解析一个 JSON 对象并输出其规范形式
//
// 字段集合必须与某个已知 Schema 完全一致。重复键、嵌套值、null、
// 小数和指数形式的数字都会被拒绝。签名工具用它处理用户给出的 JSON。
func ParseJSON(data []byte) ([]byte, Schema, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, Schema{}, types.Malformedf("无法解析 JSON: %v", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, Schema{}, types.Malformedf("顶层必须是 JSON 对象")
	}

	var fields []Field
	names := make(map[string]struct{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, Schema{}, types.Malformedf("无法解析 JSON: %v", err)
		}
		name := tok.(string)
		if _, dup := names[name]; dup {
			return nil, Schema{}, types.Malformedf("字段 %q 重复", name)
		}
		names[name] = struct{}{}

		tok, err = dec.Token()
		if err != nil {
			return nil, Schema{}, types.Malformedf("无法解析 JSON: %v", err)
		}
		value, err := scalar(tok)
		if err != nil {
			return nil, Schema{}, types.Malformedf("字段 %q: %v", name, err)
		}
		fields = append(fields, Field{Name: name, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, Schema{}, types.Malformedf("无法解析 JSON: %v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, Schema{}, types.Malformedf("JSON 对象之后存在多余内容")
	}

	for _, schema := range Schemas() {
		if schema.sameFieldSet(names) {
			out, err := Canonicalize(schema, fields)
			return out, schema, err
		}
	}
	return nil, Schema{}, types.Malformedf("字段集合不匹配任何已知请求")
}

func scalar(tok json.Token) (interface{}, error) {
	switch v := tok.(type) {
	case string:
		return v, nil
	case bool:
		return v, nil
	case json.Number:
		s := v.String()
		if strings.ContainsAny(s, ".eE") {
			return nil, errNonInteger
		}
		if s == "-0" {
			return nil, errNegativeZero
		}
		if strings.HasPrefix(s, "-") {
			return strconv.ParseInt(s, 10, 64)
		}
		return strconv.ParseUint(s, 10, 64)
	case json.Delim:
		return nil, errNested
	case nil:
		return nil, errNull
	}
	return nil, errNested
}

var (
	errNonInteger   = valueError("只接受整数")
	errNested       = valueError("不接受嵌套值")
	errNull         = valueError("不接受 null")
	errNegativeZero = valueError("不接受 -0")
)

type valueError string

func (e valueError) Error() string { return string(e) }
