package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Vector 是 embedding 向量的数据库列类型，在数据库中以 JSON 文本存储。
// 存储中所有分块向量的维度必须一致（由 Embedder 的输出维度决定）。
type Vector []float32

// Value 实现 driver.Valuer 接口。
func (v Vector) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal([]float32(v))
	if err != nil {
		return nil, fmt.Errorf("序列化向量失败: %w", err)
	}
	return string(data), nil
}

// Scan 实现 sql.Scanner 接口。
func (v *Vector) Scan(value interface{}) error {
	if value == nil {
		*v = nil
		return nil
	}
	switch data := value.(type) {
	case []byte:
		return json.Unmarshal(data, (*[]float32)(v))
	case string:
		return json.Unmarshal([]byte(data), (*[]float32)(v))
	default:
		return fmt.Errorf("无法将 %T 扫描为 Vector", value)
	}
}
