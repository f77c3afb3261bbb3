package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Amount 统一资产数量类型（最小单位整数，非负）
// 数据库以 DECIMAL(78,0) 存储，JSON 以十进制字符串输出，避免精度丢失。
type Amount struct {
	i big.Int
}

// NewAmount 从 int64 创建数量
func NewAmount(value int64) Amount {
	var a Amount
	a.i.SetInt64(value)
	return a
}

// NewAmountFromBig 从 big.Int 创建数量（拷贝）
func NewAmountFromBig(value *big.Int) Amount {
	var a Amount
	if value != nil {
		a.i.Set(value)
	}
	return a
}

// NewAmountFromString 从十进制字符串创建数量
func NewAmountFromString(value string) (Amount, error) {
	var a Amount
	if value == "" {
		return a, nil
	}
	if _, ok := a.i.SetString(value, 10); !ok {
		return Amount{}, fmt.Errorf("invalid amount: %q", value)
	}
	if a.i.Sign() < 0 {
		return Amount{}, fmt.Errorf("negative amount: %q", value)
	}
	return a, nil
}

// Big 返回底层整数拷贝
func (a Amount) Big() *big.Int {
	return new(big.Int).Set(&a.i)
}

// Add 返回 a+b
func (a Amount) Add(b Amount) Amount {
	var r Amount
	r.i.Add(&a.i, &b.i)
	return r
}

// Sub 返回 a-b；b 大于 a 时返回失败
func (a Amount) Sub(b Amount) (Amount, error) {
	if a.Cmp(b) < 0 {
		return Amount{}, fmt.Errorf("amount underflow: %s - %s", a.String(), b.String())
	}
	var r Amount
	r.i.Sub(&a.i, &b.i)
	return r, nil
}

// Cmp 比较两个数量
func (a Amount) Cmp(b Amount) int {
	return a.i.Cmp(&b.i)
}

// Equal 判断数量相等
func (a Amount) Equal(b Amount) bool {
	return a.Cmp(b) == 0
}

// IsZero 判断是否为零
func (a Amount) IsZero() bool {
	return a.i.Sign() == 0
}

// String 返回十进制字符串
func (a Amount) String() string {
	return a.i.String()
}

// Display 按资产精度返回可读金额（如 decimals=6 时 100000000 -> "100"）
func (a Amount) Display(decimals int32) string {
	return decimal.NewFromBigInt(a.Big(), -decimals).String()
}

// MarshalJSON 输出十进制字符串
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON 解析数量（字符串或整数）
func (a *Amount) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = s
	}
	parsed, err := NewAmountFromString(raw)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value 用于数据库写入
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

// Scan 用于数据库读取
func (a *Amount) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*a = Amount{}
		return nil
	case int64:
		*a = NewAmount(v)
		return nil
	case []byte:
		parsed, err := NewAmountFromString(string(v))
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	case string:
		parsed, err := NewAmountFromString(v)
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	default:
		return fmt.Errorf("unsupported amount source: %T", value)
	}
}

// GormDataType 指定数据库列类型
func (Amount) GormDataType() string {
	return "decimal(78,0)"
}
