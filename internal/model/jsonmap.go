package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap 是以 JSON 文本落库的键值元数据。
type JSONMap map[string]interface{}

// Value 实现 driver.Valuer 接口，将元数据序列化为 JSON 字符串。
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan 实现 sql.Scanner 接口，从数据库读出的 JSON 字符串反序列化元数据。
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("无法将 %T 扫描为 JSONMap", value)
	}
	if len(data) == 0 {
		*m = nil
		return nil
	}
	return json.Unmarshal(data, m)
}
