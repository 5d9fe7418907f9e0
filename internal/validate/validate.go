// Package validate holds the field rules shared by every entity. Nothing in
// here touches storage.
package validate

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/matthieukhl/commercial-manager/internal/errs"
	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

// MaxColumnInt is the largest value a signed INT column holds.
const MaxColumnInt = math.MaxInt32

var (
	dateRe   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	digitsRe = regexp.MustCompile(`^[0-9]+$`)
	moneyRe  = regexp.MustCompile(`^[0-9]+(\.[0-9]{1,2})?$`)
	emailRe  = regexp.MustCompile(`^[\w.+-]+@([\w-]+\.)+[\w-]{2,}$`)
	phoneRe  = regexp.MustCompile(`^[0-9]{1,20}$`)

	// MaxMoney is the largest value DECIMAL(10,2) holds.
	MaxMoney = decimal.RequireFromString("99999999.99")

	MaxProductPrice = MaxMoney
)

// ValidationError describes a malformed field value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return errs.ErrInvalidArgument
}

func fail(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidCalendarDate reports whether s is YYYY-MM-DD and names a real day.
func IsValidCalendarDate(s string) bool {
	if !dateRe.MatchString(s) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// IsPositiveIntegerText reports whether s is all digits with a value > 0.
func IsPositiveIntegerText(s string) bool {
	if !digitsRe.MatchString(s) {
		return false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return err == nil && n > 0
}

// IsMoneyText reports whether s is an unsigned decimal with at most two
// fraction digits and a value > 0.
func IsMoneyText(s string) bool {
	if !moneyRe.MatchString(s) {
		return false
	}
	d, err := decimal.NewFromString(s)
	return err == nil && d.IsPositive()
}

// IsNonEmptyBoundedText reports whether s has between 1 and maxLen characters.
func IsNonEmptyBoundedText(s string, maxLen int) bool {
	n := utf8.RuneCountInString(s)
	return n >= 1 && n <= maxLen
}

func CalendarDate(field, s string) error {
	if !IsValidCalendarDate(s) {
		return fail(field, "expected a real calendar date in YYYY-MM-DD format")
	}
	return nil
}

// PositiveInt accepts 1..MaxColumnInt.
func PositiveInt(field, s string) error {
	if !IsPositiveIntegerText(s) {
		return fail(field, "expected a positive whole number")
	}
	return withinColumn(field, s)
}

// NonNegativeInt accepts 0..MaxColumnInt.
func NonNegativeInt(field, s string) error {
	if !digitsRe.MatchString(s) {
		return fail(field, "expected a whole number")
	}
	return withinColumn(field, s)
}

func withinColumn(field, s string) error {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n > MaxColumnInt {
		return fail(field, fmt.Sprintf("must not exceed %d", MaxColumnInt))
	}
	return nil
}

// Money accepts a positive amount that fits DECIMAL(10,2).
func Money(field, s string) error {
	return MoneyUpTo(field, s, MaxMoney)
}

// MoneyUpTo is Money with a caller-chosen upper bound.
func MoneyUpTo(field, s string, limit decimal.Decimal) error {
	if !IsMoneyText(s) {
		return fail(field, "expected a positive amount with at most 2 decimals")
	}
	if decimal.RequireFromString(s).GreaterThan(limit) {
		return fail(field, "must not exceed "+limit.StringFixed(2))
	}
	return nil
}

// ProductPrice accepts zero, unlike Money, and caps at MaxProductPrice.
func ProductPrice(field, s string) error {
	if !moneyRe.MatchString(s) {
		return fail(field, "expected an amount with at most 2 decimals")
	}
	if decimal.RequireFromString(s).GreaterThan(MaxProductPrice) {
		return fail(field, "must not exceed "+MaxProductPrice.StringFixed(2))
	}
	return nil
}

func BoundedText(field, s string, maxLen int) error {
	if !IsNonEmptyBoundedText(s, maxLen) {
		return fail(field, fmt.Sprintf("must be between 1 and %d characters", maxLen))
	}
	return nil
}

// Text requires non-blank content without an upper bound (TEXT columns).
func Text(field, s string) error {
	if strings.TrimSpace(s) == "" {
		return fail(field, "must not be empty")
	}
	return nil
}

func Email(field, s string) error {
	if len(s) > 255 || !emailRe.MatchString(s) {
		return fail(field, "expected an address like name@example.com")
	}
	return nil
}

func Phone(field, s string) error {
	if !phoneRe.MatchString(s) {
		return fail(field, "expected 1 to 20 digits")
	}
	return nil
}

// ID checks a record identifier typed by a user.
func ID(field, s string) error {
	if !digitsRe.MatchString(s) {
		return fail(field, "must contain digits only")
	}
	if !IsPositiveIntegerText(s) {
		return fail(field, "expected a positive whole number")
	}
	return nil
}

func ParseID(field, s string) (int64, error) {
	if err := ID(field, s); err != nil {
		return 0, err
	}
	return strconv.ParseInt(s, 10, 64)
}

func ParsePositiveInt(field, s string) (int, error) {
	if err := PositiveInt(field, s); err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fail(field, "number out of range")
	}
	return n, nil
}

func ParseNonNegativeInt(field, s string) (int, error) {
	if err := NonNegativeInt(field, s); err != nil {
		return 0, err
	}
	return strconv.Atoi(s)
}

func ParseMoney(field, s string) (decimal.Decimal, error) {
	if err := Money(field, s); err != nil {
		return decimal.Zero, err
	}
	return decimal.RequireFromString(s), nil
}

func ParseProductPrice(field, s string) (decimal.Decimal, error) {
	if err := ProductPrice(field, s); err != nil {
		return decimal.Zero, err
	}
	return decimal.RequireFromString(s), nil
}
