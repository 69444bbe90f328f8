package dao

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON 映射 MySQL 的 JSON 列。nil 值按 NULL 写入，
// 读出时 NULL 还原为 nil，避免在实体层到处判空。
type JSON json.RawMessage

func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(src any) error {
	if src == nil {
		*j = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = JSON(v)
	default:
		return fmt.Errorf("无法将 %T 扫描为JSON列", src)
	}
	return nil
}

// MarshalJSON 原样输出列内容，避免 []byte 被编码成base64
func (j JSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	*j = append((*j)[:0], data...)
	return nil
}
