package core

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

const maxNameLength = 200

type (
	// Kind tags income and expense rows. The set is closed.
	Kind string

	// Date is a calendar date without time-of-day, stored at UTC midnight.
	Date struct {
		time.Time
	}

	// CategoryRef is the category data joined onto a transaction row.
	CategoryRef struct {
		ID    string
		Name  string
		Color string
	}

	Transaction struct {
		ID          string
		OwnerID     string
		Kind        Kind
		Amount      Money
		Date        Date
		Description string
		Category    *CategoryRef // nil when the row has no category
	}

	Category struct {
		ID      string
		OwnerID string
		Kind    Kind
		Name    string
		Color   string // optional, "#rrggbb"
		Icon    string // optional
	}

	BankAccount struct {
		ID      string
		OwnerID string
		Name    string
		Balance Money // may be negative
	}

	Asset struct {
		ID           string
		OwnerID      string
		Name         string
		CurrentValue Money
		InitialValue Money
		AcquiredOn   Date
	}
)

var (
	// ErrDataIntegrity marks a row that violates an invariant owned by the store.
	ErrDataIntegrity = errors.New("data integrity error")

	ErrUnknownKind    = errors.New("unknown kind")
	ErrMissingAmount  = errors.New("missing amount")
	ErrNegativeAmount = errors.New("negative amount")
	ErrMissingDate    = errors.New("missing date")
	ErrForeignOwner   = errors.New("row belongs to another owner")

	// Input validation errors for writes.
	ErrEmptyName     = errors.New("empty name")
	ErrNameTooLong   = errors.New("name too long (max 200 characters)")
	ErrInvalidColor  = errors.New("invalid color, expected #rrggbb")
	ErrKindMismatch  = errors.New("transaction kind does not match category kind")
	ErrInvalidMonth  = errors.New("invalid month")
	ErrInvalidAmount = errors.New("invalid amount")
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ParseKind accepts "income" or "expense", case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Valid reports whether k is one of the two known kinds.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

func (k Kind) String() string {
	return string(k)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

// Value implements driver.Valuer. Dates travel as ISO strings so that
// sqlite range comparisons stay lexical.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan implements sql.Scanner for DATE and TEXT columns.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = NewDate(v.Year(), int(v.Month()), v.Day())
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("scan date: unsupported type %T", src)
	}
}

func (d *Date) scanString(s string) error {
	// Some drivers hand back full timestamps for DATE columns.
	if len(s) > len(time.DateOnly) {
		s = s[:len(time.DateOnly)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return fmt.Errorf("scan date %q: %w", s, err)
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
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

func integrityError(entity, id string, cause error) error {
	return fmt.Errorf("%w: %s %q: %w", ErrDataIntegrity, entity, id, cause)
}

// Validate checks the invariants the aggregator relies on. Violations wrap
// ErrDataIntegrity.
func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return integrityError("transaction", t.ID, fmt.Errorf("%w %q", ErrUnknownKind, t.Kind))
	}
	if err := t.Amount.ValidateNonNegative(); err != nil {
		return integrityError("transaction", t.ID, err)
	}
	if t.Date.IsZero() {
		return integrityError("transaction", t.ID, ErrMissingDate)
	}
	return nil
}

// ValidateNew checks a transaction submitted for creation.
func (t Transaction) ValidateNew() error {
	if err := t.Validate(); err != nil {
		return err
	}
	if len(t.Description) > maxNameLength {
		return ErrNameTooLong
	}
	return nil
}

func (c Category) Validate() error {
	if !c.Kind.Valid() {
		return fmt.Errorf("%w %q", ErrUnknownKind, c.Kind)
	}
	if err := validateName(c.Name); err != nil {
		return err
	}
	if c.Color != "" && !colorPattern.MatchString(c.Color) {
		return ErrInvalidColor
	}
	return nil
}

// Validate requires a balance; negative balances are legitimate.
func (a BankAccount) Validate() error {
	if !a.Balance.Valid {
		return integrityError("bank account", a.ID, ErrMissingAmount)
	}
	return nil
}

// Validate requires a current value. A negative value is accepted.
func (a Asset) Validate() error {
	if !a.CurrentValue.Valid {
		return integrityError("asset", a.ID, ErrMissingAmount)
	}
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if len(name) > maxNameLength {
		return ErrNameTooLong
	}
	return nil
}

// ValidateNew checks an account submitted for creation.
func (a BankAccount) ValidateNew() error {
	if err := validateName(a.Name); err != nil {
		return err
	}
	return a.Validate()
}

// ValidateNew checks an asset submitted for creation.
func (a Asset) ValidateNew() error {
	if err := validateName(a.Name); err != nil {
		return err
	}
	if err := a.CurrentValue.ValidateNonNegative(); err != nil {
		return err
	}
	if a.InitialValue.Valid && a.InitialValue.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}
