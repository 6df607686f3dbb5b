package alert

import "fmt"

// Field 被跟踪的订单状态字段
// 顺序即优先级：QA Double Check > Modification Status > Packing Status
type Field int

const (
	FieldQACheck      Field = iota // ref_field_1
	FieldModification              // ref_field_2
	FieldPacking                   // ref_field_3
)

// FieldCount 被跟踪字段数量
const FieldCount = 3

// StatusDone 触发通知的状态值
const StatusDone = "Done"

var (
	fieldKeys   = [FieldCount]string{"ref_field_1", "ref_field_2", "ref_field_3"}
	fieldLabels = [FieldCount]string{"QA Double Check", "Modification Status", "Packing Status"}
)

// AllFields 按优先级返回全部被跟踪字段
func AllFields() []Field {
	return []Field{FieldQACheck, FieldModification, FieldPacking}
}

// ParseField 根据上游字段名解析 Field
func ParseField(key string) (Field, error) {
	for i, k := range fieldKeys {
		if k == key {
			return Field(i), nil
		}
	}
	return 0, fmt.Errorf("unknown tracked field: %q", key)
}

// Key 上游字段名（ref_field_N）
func (f Field) Key() string {
	if !f.valid() {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldKeys[f]
}

// Label 展示名称
func (f Field) Label() string {
	if !f.valid() {
		return f.Key()
	}
	return fieldLabels[f]
}

func (f Field) String() string {
	return f.Key()
}

func (f Field) valid() bool {
	return f >= 0 && int(f) < FieldCount
}

// FieldValues 三个被跟踪字段的取值，未设置为空串
type FieldValues [FieldCount]string

// Get 获取字段值
func (v FieldValues) Get(f Field) string {
	if !f.valid() {
		return ""
	}
	return v[f]
}
