// Package canonical 把请求的逻辑字段序列化为确定的签名字节
//
// 输出是无空白的 JSON 对象，字段顺序由 Schema 固定，与调用方的字段顺序无关。
// 只接受非空字符串、整数和布尔值；任何可能产生多种编码的值直接拒绝。
package canonical

import (
	"bytes"
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/weisyn/bcdb/pkg/types"
)

// 字段名
const (
	FieldUserID       = "user_id"
	FieldNodeID       = "node_id"
	FieldTargetUserID = "target_user_id"
)

// Schema 一类请求的精确字段集合，Fields 的顺序即输出顺序
type Schema struct {
	Name   string
	Fields []string
}

var (
	// GetConfigSchema GET /config/tx
	GetConfigSchema = Schema{Name: "GetConfigQuery", Fields: []string{FieldUserID}}
	// GetNodeConfigSchema GET /config/node/{node_id}
	GetNodeConfigSchema = Schema{Name: "GetNodeConfigQuery", Fields: []string{FieldUserID, FieldNodeID}}
	// GetUserSchema GET /user/{user_id}
	GetUserSchema = Schema{Name: "GetUserQuery", Fields: []string{FieldUserID, FieldTargetUserID}}
)

// Schemas 所有已知请求结构
func Schemas() []Schema {
	return []Schema{GetConfigSchema, GetNodeConfigSchema, GetUserSchema}
}

// Field 一个命名字段，Value 只能是 string、int64、uint64 或 bool
type Field struct {
	Name  string
	Value interface{}
}

// String 构造字符串字段
func String(name, value string) Field { return Field{Name: name, Value: value} }

// Canonicalize 按 schema 序列化字段，字段可以任意顺序给出
func Canonicalize(schema Schema, fields []Field) ([]byte, error) {
	byName := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		if _, dup := byName[f.Name]; dup {
			return nil, types.Malformedf("%s: 字段 %q 重复", schema.Name, f.Name)
		}
		if !schema.has(f.Name) {
			return nil, types.Malformedf("%s: 多余字段 %q", schema.Name, f.Name)
		}
		byName[f.Name] = f.Value
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range schema.Fields {
		value, ok := byName[name]
		if !ok {
			return nil, types.Malformedf("%s: 缺少字段 %q", schema.Name, name)
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		writeString(&buf, name)
		buf.WriteByte(':')
		if err := writeValue(&buf, value); err != nil {
			return nil, types.Malformedf("%s: 字段 %q: %v", schema.Name, name, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s Schema) has(name string) bool {
	for _, f := range s.Fields {
		if f == name {
			return true
		}
	}
	return false
}

// sameFieldSet 字段集合是否与 schema 完全一致
func (s Schema) sameFieldSet(names map[string]struct{}) bool {
	if len(names) != len(s.Fields) {
		return false
	}
	for _, f := range s.Fields {
		if _, ok := names[f]; !ok {
			return false
		}
	}
	return true
}

func writeValue(buf *bytes.Buffer, value interface{}) error {
	switch v := value.(type) {
	case string:
		if err := ValidateString(v); err != nil {
			return err
		}
		writeString(buf, v)
	case bool:
		buf.WriteString(strconv.FormatBool(v))
	case int:
		buf.WriteString(strconv.FormatInt(int64(v), 10))
	case int64:
		buf.WriteString(strconv.FormatInt(v, 10))
	case uint64:
		buf.WriteString(strconv.FormatUint(v, 10))
	case nil:
		return fmt.Errorf("值为 null")
	default:
		return fmt.Errorf("不支持的值类型 %T", value)
	}
	return nil
}

// ValidateString 检查字符串是否有唯一编码
//
// 要求合法 UTF-8、NFC 规范化、非空，且不含控制、格式或行/段分隔字符。
func ValidateString(s string) error {
	if s == "" {
		return fmt.Errorf("空字符串")
	}
	if !utf8.ValidString(s) {
		return fmt.Errorf("非法 UTF-8")
	}
	if !norm.NFC.IsNormalString(s) {
		return fmt.Errorf("字符串未做 NFC 规范化")
	}
	for _, r := range s {
		if unicode.IsControl(r) || unicode.Is(unicode.Cf, r) || unicode.Is(unicode.Zl, r) || unicode.Is(unicode.Zp, r) {
			return fmt.Errorf("包含不可见字符 %U", r)
		}
	}
	return nil
}

// writeString 写 JSON 字符串，只转义 '"' 和 '\'
//
// 控制字符已被 ValidateString 拒绝，其余字符原样输出，不做 HTML 转义。
func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\\' {
			buf.WriteByte('\\')
		}
		buf.WriteByte(c)
	}
	buf.WriteByte('"')
}
