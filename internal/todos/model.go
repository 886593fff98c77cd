package todos

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"time"
)

type Todo struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description" db:"description"`
	Completed   bool      `json:"completed" db:"completed"`
	CompletedAt *Date     `json:"completedAt" db:"completedAt"`
	CreatedAt   Timestamp `json:"createdAt" db:"createdAt"`
}

// NewTodo carries the client-supplied fields of a create.
type NewTodo struct {
	Title       string
	Description *string
}

// TodoUpdate replaces every mutable column of a row. Nil pointers are
// written as NULL.
type TodoUpdate struct {
	Title       string
	Description *string
	Completed   bool
	CompletedAt *Date
}

const dateLayout = "2006-01-02"

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	dateLayout,
}

// Date is a calendar day, "YYYY-MM-DD" on the wire and in storage.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string { return d.Format(dateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.Format(dateLayout))), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("date must be a string: %s", b)
	}
	t, err := parseTime(s)
	if err != nil {
		return fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	*d = NewDate(t.Year(), t.Month(), t.Day())
	return nil
}

func (d Date) Value() (driver.Value, error) {
	return d.Format(dateLayout), nil
}

func (d *Date) Scan(src any) error {
	if src == nil {
		*d = Date{}
		return nil
	}
	t, err := scanTime(src)
	if err != nil {
		return err
	}
	*d = NewDate(t.Year(), t.Month(), t.Day())
	return nil
}

// Timestamp is a point in time assigned by the database. Drivers differ in
// whether they hand it back as time.Time or as text.
type Timestamp struct {
	time.Time
}

func (ts *Timestamp) Scan(src any) error {
	if src == nil {
		*ts = Timestamp{}
		return nil
	}
	t, err := scanTime(src)
	if err != nil {
		return err
	}
	ts.Time = t.UTC()
	return nil
}

func scanTime(src any) (time.Time, error) {
	switch v := src.(type) {
	case time.Time:
		return v, nil
	case string:
		return parseTime(v)
	case []byte:
		return parseTime(string(v))
	default:
		return time.Time{}, fmt.Errorf("cannot scan %T into time", src)
	}
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format %q", s)
}
