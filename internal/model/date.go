package model

import (
    "database/sql/driver"
    "encoding/json"
    "fmt"
    "time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day stored in a DATE column.  The zero value stands for
// SQL NULL and serializes as JSON null.
type Date struct {
    time.Time
}

// NewDate truncates t to its UTC calendar day.
func NewDate(year int, month time.Month, day int) Date {
    return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts YYYY-MM-DD or a full RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
    if s == "" {
        return Date{}, nil
    }
    if t, err := time.Parse(dateLayout, s); err == nil {
        return Date{Time: t}, nil
    }
    t, err := time.Parse(time.RFC3339, s)
    if err != nil {
        return Date{}, fmt.Errorf("invalid date %q", s)
    }
    return NewDate(t.Year(), t.Month(), t.Day()), nil
}

func (d Date) String() string {
    if d.IsZero() {
        return ""
    }
    return d.Format(dateLayout)
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src any) error {
    switch v := src.(type) {
    case nil:
        *d = Date{}
        return nil
    case time.Time:
        *d = NewDate(v.Year(), v.Month(), v.Day())
        return nil
    case []byte:
        parsed, err := ParseDate(string(v))
        if err != nil {
            return err
        }
        *d = parsed
        return nil
    case string:
        parsed, err := ParseDate(v)
        if err != nil {
            return err
        }
        *d = parsed
        return nil
    }
    return fmt.Errorf("cannot scan %T into Date", src)
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
    if d.IsZero() {
        return nil, nil
    }
    return d.Format(dateLayout), nil
}

func (d Date) MarshalJSON() ([]byte, error) {
    if d.IsZero() {
        return []byte("null"), nil
    }
    return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
    if string(b) == "null" {
        *d = Date{}
        return nil
    }
    var s string
    if err := json.Unmarshal(b, &s); err != nil {
        return err
    }
    parsed, err := ParseDate(s)
    if err != nil {
        return err
    }
    *d = parsed
    return nil
}
