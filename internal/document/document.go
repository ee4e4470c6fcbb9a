// Package document 提供有序的 JSON 文档类型
// 用于 metrics、context、last_error 等结构不固定的字段,保证键顺序和数值字面量可以原样往返
package document

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Kind 值类型
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value 文档中的一个值,零值为 null
type Value struct {
	kind Kind
	b    bool
	num  json.Number
	str  string
	arr  []Value
	obj  *Document
}

// Null 返回 null 值
func Null() Value { return Value{} }

// Bool 返回布尔值
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number 返回数值,NaN 和 Inf 无法用 JSON 表示,按 null 处理
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null()
	}
	return Value{kind: KindNumber, num: json.Number(strconv.FormatFloat(f, 'g', -1, 64))}
}

// Int 返回整数值
func Int(i int64) Value {
	return Value{kind: KindNumber, num: json.Number(strconv.FormatInt(i, 10))}
}

// String 返回字符串值
func String(s string) Value { return Value{kind: KindString, str: s} }

// Array 返回数组值
func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, arr: items}
}

// Object 返回对象值
func Object(d *Document) Value {
	if d == nil {
		d = New()
	}
	return Value{kind: KindObject, obj: d}
}

// Kind 返回值类型
func (v Value) Kind() Kind { return v.kind }

// IsNull 是否为 null
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool 仅当值为布尔类型时返回 true
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsFloat 仅接受数值类型
func (v Value) AsFloat() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	f, err := v.num.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}

// CoerceFloat 接受数值以及可以解析为数值的字符串
func (v Value) CoerceFloat() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.AsFloat()
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// AsString 仅当值为字符串类型时返回 true
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// AsArray 仅当值为数组类型时返回 true
func (v Value) AsArray() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.arr, true
}

// AsObject 仅当值为对象类型时返回 true
func (v Value) AsObject() (*Document, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.obj, true
}

// MarshalJSON 实现 json.Marshaler
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		if v.b {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case KindNumber:
		return []byte(v.num), nil
	case KindString:
		return json.Marshal(v.str)
	case KindArray:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			data, err := item.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(data)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case KindObject:
		return v.obj.MarshalJSON()
	default:
		return nil, fmt.Errorf("document: unknown kind %d", v.kind)
	}
}

// UnmarshalJSON 实现 json.Unmarshaler
// 对象交给有序 map 解析,数值保留原始字面量
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("document: empty input")
	}

	switch data[0] {
	case '{':
		doc := New()
		if err := doc.om.UnmarshalJSON(data); err != nil {
			return fmt.Errorf("document: %w", err)
		}
		*v = Object(doc)
		return nil
	case '[':
		var items []Value
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*v = Array(items...)
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var scalar interface{}
	if err := dec.Decode(&scalar); err != nil {
		return err
	}
	switch t := scalar.(type) {
	case nil:
		*v = Null()
	case bool:
		*v = Bool(t)
	case json.Number:
		*v = Value{kind: KindNumber, num: t}
	case string:
		*v = String(t)
	default:
		return fmt.Errorf("document: unexpected value %T", scalar)
	}
	return nil
}

// Field 文档字段
type Field struct {
	Key   string
	Value Value
}

// Document 字符串键的有序文档,保留插入顺序,零值为空文档
type Document struct {
	om *orderedmap.OrderedMap[string, Value]
}

// New 创建空文档
func New() *Document {
	return &Document{om: orderedmap.New[string, Value]()}
}

// Set 设置字段,已存在的键保持原位置
func (d *Document) Set(key string, v Value) *Document {
	if d.om == nil {
		d.om = orderedmap.New[string, Value]()
	}
	d.om.Set(key, v)
	return d
}

// Get 获取字段值
func (d *Document) Get(key string) (Value, bool) {
	if d == nil || d.om == nil {
		return Value{}, false
	}
	return d.om.Get(key)
}

// Len 字段数量
func (d *Document) Len() int {
	if d == nil || d.om == nil {
		return 0
	}
	return d.om.Len()
}

// Keys 按顺序返回所有键
func (d *Document) Keys() []string {
	if d == nil || d.om == nil {
		return nil
	}
	keys := make([]string, 0, d.om.Len())
	for pair := d.om.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Fields 按顺序返回字段副本
func (d *Document) Fields() []Field {
	if d == nil || d.om == nil {
		return nil
	}
	out := make([]Field, 0, d.om.Len())
	for pair := d.om.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, Field{Key: pair.Key, Value: pair.Value})
	}
	return out
}

// MarshalJSON 实现 json.Marshaler,空文档输出 {}
func (d Document) MarshalJSON() ([]byte, error) {
	if d.om == nil || d.om.Len() == 0 {
		return []byte("{}"), nil
	}
	return d.om.MarshalJSON()
}

// UnmarshalJSON 实现 json.Unmarshaler,null 解析为空文档
func (d *Document) UnmarshalJSON(data []byte) error {
	var v Value
	if err := v.UnmarshalJSON(data); err != nil {
		return err
	}
	switch v.kind {
	case KindNull:
		*d = Document{}
		return nil
	case KindObject:
		*d = *v.obj
		return nil
	default:
		return fmt.Errorf("document: expected object, got %s", v.kind)
	}
}

// Value 实现 driver.Valuer
func (d Document) Value() (driver.Value, error) {
	data, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan 实现 sql.Scanner
func (d *Document) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = Document{}
		return nil
	case []byte:
		if len(v) == 0 {
			*d = Document{}
			return nil
		}
		return d.UnmarshalJSON(v)
	case string:
		if v == "" {
			*d = Document{}
			return nil
		}
		return d.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("document: cannot scan %T", src)
	}
}

// GormDataType gorm 通用数据类型
func (Document) GormDataType() string {
	return "json"
}

// GormDBDataType 按数据库方言返回列类型
// postgres 使用 JSON 而不是 JSONB,JSONB 会按自身规则重排对象的键
func (Document) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "sqlserver":
		return "NVARCHAR(MAX)"
	default:
		return "JSON"
	}
}

// NullDocument 可为 null 的文档,用法与 sql.NullString 相同
type NullDocument struct {
	Document Document
	Valid    bool
}

// Some 返回有效的 NullDocument
func Some(d *Document) NullDocument {
	if d == nil {
		d = New()
	}
	return NullDocument{Document: *d, Valid: true}
}

// MarshalJSON 实现 json.Marshaler
func (n NullDocument) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return n.Document.MarshalJSON()
}

// UnmarshalJSON 实现 json.Unmarshaler
func (n *NullDocument) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*n = NullDocument{}
		return nil
	}
	if err := n.Document.UnmarshalJSON(data); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// Value 实现 driver.Valuer
func (n NullDocument) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Document.Value()
}

// Scan 实现 sql.Scanner
func (n *NullDocument) Scan(src interface{}) error {
	if src == nil {
		*n = NullDocument{}
		return nil
	}
	if err := n.Document.Scan(src); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// GormDataType gorm 通用数据类型
func (NullDocument) GormDataType() string {
	return "json"
}

// GormDBDataType 按数据库方言返回列类型
func (NullDocument) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return Document{}.GormDBDataType(db, field)
}
