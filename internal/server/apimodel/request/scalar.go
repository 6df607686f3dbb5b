package request

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Scalar 上游字段值：字符串、数字、布尔均按原文本保留，null 为空串
type Scalar string

// UnmarshalJSON 实现 json.Unmarshaler
func (s *Scalar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*s = ""
	case len(b) > 0 && b[0] == '"':
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = Scalar(str)
	default:
		*s = Scalar(b)
	}
	return nil
}

// String 原始文本
func (s Scalar) String() string {
	return string(s)
}

// Trimmed 去除首尾空白
func (s Scalar) Trimmed() string {
	return strings.TrimSpace(string(s))
}

// OrderID 订单 ID：与 Scalar 相同，但数字 0 与 false 视为缺失
type OrderID string

// UnmarshalJSON 实现 json.Unmarshaler
func (id *OrderID) UnmarshalJSON(b []byte) error {
	var s Scalar
	if err := s.UnmarshalJSON(b); err != nil {
		return err
	}
	raw := bytes.TrimSpace(b)
	if len(raw) > 0 && raw[0] != '"' && isFalsyLiteral(string(s)) {
		s = ""
	}
	*id = OrderID(s)
	return nil
}

// Trimmed 去除首尾空白
func (id OrderID) Trimmed() string {
	return strings.TrimSpace(string(id))
}

func isFalsyLiteral(raw string) bool {
	if raw == "false" {
		return true
	}
	f, err := strconv.ParseFloat(raw, 64)
	return err == nil && f == 0
}
