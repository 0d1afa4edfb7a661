package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateFormat 交易日期格式 (ISO-8601 日期，無時間)
const DateFormat = "2006-01-02"

// Date 以日為最小單位的日期
type Date struct {
	y int
	m time.Month
	d int
}

// NewDate 回傳正規化後的日期 (e.g. 1/32 -> 2/1)
func NewDate(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date{t.Year(), t.Month(), t.Day()}
}

// DateOf 取 t 在其時區的日期
func DateOf(t time.Time) Date { return NewDate(t.Date()) }

// Today 本地時間的今天
func Today() Date { return DateOf(time.Now()) }

// ParseDate 解析 YYYY-MM-DD，也接受完整的 RFC 3339 時間 (只取日期)
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(DateFormat, s); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// IsZero 是否為零值
func (d Date) IsZero() bool { return d.y == 0 && d.m == 0 && d.d == 0 }

// AddDays 加減天數
func (d Date) AddDays(n int) Date { return NewDate(d.y, d.m, d.d+n) }

// Before reports whether d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Weekday 星期幾
func (d Date) Weekday() time.Weekday { return d.time().Weekday() }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.time().Format(DateFormat)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, data)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
