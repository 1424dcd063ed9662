package lending

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

const dateLayout = time.DateOnly

// Date is a calendar day without time-of-day, normalized to midnight UTC.
// The zero value means "no date".
type Date struct {
	t time.Time
}

// DateOf returns the calendar day of t as seen in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()

	return NewDate(y, m, d)
}

// NewDate builds a Date, normalizing overflowing values the way time.Date does.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, errors.Join(ErrInvalidDate, err)
	}

	return Date{t: t}, nil
}

func (d Date) IsZero() bool {
	return d.t.IsZero()
}

func (d Date) Time() time.Time {
	return d.t
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}

	return d.t.Format(dateLayout)
}

func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

func (d Date) Equal(other Date) bool {
	return d.t.Equal(other.t)
}

func (d Date) AddDays(days int) Date {
	return Date{t: d.t.AddDate(0, 0, days)}
}

func (d Date) AddYears(years int) Date {
	return Date{t: d.t.AddDate(years, 0, 0)}
}

// MarshalText implements encoding.TextMarshaler, used by JSON encoders.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty input yields the zero Date.
func (d *Date) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*d = Date{}
		return nil
	}

	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}

// Value implements driver.Valuer; dates travel to the database as YYYY-MM-DD strings.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}

	return d.String(), nil
}

// Scan implements sql.Scanner for DATE columns (Postgres) and TEXT columns (SQLite).
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil

	case time.Time:
		*d = NewDate(v.Year(), v.Month(), v.Day())
		return nil

	case string:
		return d.scanString(v)

	case []byte:
		return d.scanString(string(v))

	default:
		return fmt.Errorf("cannot scan %T into lending.Date", src)
	}
}

func (d *Date) scanString(s string) error {
	if len(s) > len(dateLayout) {
		s = s[:len(dateLayout)]
	}

	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}
