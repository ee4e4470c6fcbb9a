package document

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TestDocument_PreservesKeyOrder 测试键顺序和数值字面量往返不变
func TestDocument_PreservesKeyOrder(t *testing.T) {
	raw := `{"zeta":1,"alpha":{"b":[1,2.50,"x"],"a":null},"mid":true,"big":12345678901234567890}`

	var doc Document
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	assert.Equal(t, []string{"zeta", "alpha", "mid", "big"}, doc.Keys())

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, raw, string(out))
}

// TestDocument_NullAndEmpty 测试 null 和空对象
func TestDocument_NullAndEmpty(t *testing.T) {
	var doc Document
	require.NoError(t, json.Unmarshal([]byte(`null`), &doc))
	assert.Equal(t, 0, doc.Len())

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(out))

	err = json.Unmarshal([]byte(`[1,2]`), &doc)
	assert.Error(t, err)
}

// TestDocument_SetReplacesInPlace 测试重复设置保持原位置
func TestDocument_SetReplacesInPlace(t *testing.T) {
	doc := New().
		Set("a", Int(1)).
		Set("b", String("x")).
		Set("a", Bool(true))

	assert.Equal(t, []string{"a", "b"}, doc.Keys())
	v, ok := doc.Get("a")
	require.True(t, ok)
	b, ok := v.AsBool()
	assert.True(t, ok)
	assert.True(t, b)

	_, ok = doc.Get("missing")
	assert.False(t, ok)
}

// TestValue_Accessors 测试类型访问器
func TestValue_Accessors(t *testing.T) {
	f, ok := Number(0.25).AsFloat()
	assert.True(t, ok)
	assert.Equal(t, 0.25, f)

	_, ok = String("1.5").AsFloat()
	assert.False(t, ok)

	f, ok = String(" 1.5 ").CoerceFloat()
	assert.True(t, ok)
	assert.Equal(t, 1.5, f)

	_, ok = String("high").CoerceFloat()
	assert.False(t, ok)

	_, ok = Bool(true).CoerceFloat()
	assert.False(t, ok)

	assert.True(t, Number(nan()).IsNull())

	arr, ok := Array(Int(1), Int(2)).AsArray()
	assert.True(t, ok)
	assert.Len(t, arr, 2)
}

// TestDocument_ScanValue 测试数据库读写
func TestDocument_ScanValue(t *testing.T) {
	doc := New().Set("code", String("E42")).Set("retry", Int(3))

	v, err := doc.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"code":"E42","retry":3}`, v)

	var scanned Document
	require.NoError(t, scanned.Scan([]byte(v.(string))))
	assert.Equal(t, doc.Keys(), scanned.Keys())

	require.NoError(t, scanned.Scan(nil))
	assert.Equal(t, 0, scanned.Len())

	assert.Error(t, scanned.Scan(42))
}

func nan() float64 {
	zero := 0.0
	return zero / zero
}

// TestNullDocument 测试可空文档
func TestNullDocument(t *testing.T) {
	var n NullDocument
	require.NoError(t, json.Unmarshal([]byte(`null`), &n))
	assert.False(t, n.Valid)

	out, err := json.Marshal(n)
	require.NoError(t, err)
	assert.Equal(t, `null`, string(out))

	v, err := n.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, json.Unmarshal([]byte(`{"code":"E1"}`), &n))
	assert.True(t, n.Valid)
	code, ok := n.Document.Get("code")
	require.True(t, ok)
	s, _ := code.AsString()
	assert.Equal(t, "E1", s)

	require.NoError(t, n.Scan(nil))
	assert.False(t, n.Valid)
}

// TestDocument_LargeObjectOrder 测试大对象解析后键顺序不变
func TestDocument_LargeObjectOrder(t *testing.T) {
	var b strings.Builder
	want := make([]string, 0, 2000)
	b.WriteByte('{')
	for i := 2000; i > 0; i-- {
		key := fmt.Sprintf("k%d", i)
		want = append(want, key)
		if i < 2000 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%q:%d", key, i)
	}
	b.WriteByte('}')

	var doc Document
	require.NoError(t, json.Unmarshal([]byte(b.String()), &doc))
	assert.Equal(t, want, doc.Keys())

	out, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, b.String(), string(out))
}

// TestDocument_ColumnType 测试各方言的列类型,postgres 不能使用 JSONB
func TestDocument_ColumnType(t *testing.T) {
	pg := &gorm.DB{Config: &gorm.Config{Dialector: postgres.Dialector{Config: &postgres.Config{}}}}
	lite := &gorm.DB{Config: &gorm.Config{Dialector: sqlite.Dialector{}}}

	assert.Equal(t, "JSON", Document{}.GormDBDataType(pg, nil))
	assert.Equal(t, "JSON", NullDocument{}.GormDBDataType(pg, nil))
	assert.Equal(t, "JSON", Document{}.GormDBDataType(lite, nil))
}
