package validate

import (
	"errors"
	"testing"

	"github.com/matthieukhl/commercial-manager/internal/errs"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidCalendarDate(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"2024-03-01", true},
		{"2024-02-29", true},
		{"2023-02-29", false},
		{"2024-02-30", false},
		{"2024-13-01", false},
		{"2024-3-1", false},
		{"01/03/2024", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidCalendarDate(tt.in))
		})
	}
}

func TestIsPositiveIntegerText(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1", true},
		{"42", true},
		{"007", true},
		{"0", false},
		{"000", false},
		{"-3", false},
		{"1.5", false},
		{" 4", false},
		{"", false},
		{"99999999999999999999999", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPositiveIntegerText(tt.in))
		})
	}
}

func TestIsMoneyText(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"19.99", true},
		{"19.9", true},
		{"19", true},
		{"0.01", true},
		{"0", false},
		{"0.00", false},
		{"19.999", false},
		{"-1.00", false},
		{".50", false},
		{"1,50", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMoneyText(tt.in))
		})
	}
}

func TestIsNonEmptyBoundedText(t *testing.T) {
	assert.False(t, IsNonEmptyBoundedText("", 10))
	assert.True(t, IsNonEmptyBoundedText("a", 1))
	assert.False(t, IsNonEmptyBoundedText("ab", 1))
	assert.True(t, IsNonEmptyBoundedText("éé", 2), "length counts characters, not bytes")
}

func TestProductPrice(t *testing.T) {
	assert.NoError(t, ProductPrice("price", "0"))
	assert.NoError(t, ProductPrice("price", "99999999.99"))
	assert.Error(t, ProductPrice("price", "100000000.00"))
	assert.Error(t, ProductPrice("price", "12.345"))
}

func TestEmailAndPhone(t *testing.T) {
	assert.NoError(t, Email("email", "jane.doe@example.com"))
	assert.Error(t, Email("email", "jane.doe@example"))
	assert.Error(t, Email("email", "@example.com"))

	assert.NoError(t, Phone("phone", "0612345678"))
	assert.Error(t, Phone("phone", "06 12 34"))
	assert.Error(t, Phone("phone", "123456789012345678901"))
}

func TestValidationErrorUnwrapsToInvalidArgument(t *testing.T) {
	err := CalendarDate("date", "2024-02-30")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInvalidArgument))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "date", verr.Field)
}

func TestParseID(t *testing.T) {
	id, err := ParseID("id", "12")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	for _, bad := range []string{"", "abc", "1a", "-1", "0"} {
		_, err := ParseID("id", bad)
		assert.ErrorIs(t, err, errs.ErrInvalidArgument, "input %q", bad)
	}
}

func TestParseMoney(t *testing.T) {
	d, err := ParseMoney("price", "19.99")
	require.NoError(t, err)
	assert.Equal(t, "19.99", d.StringFixed(2))

	_, err = ParseMoney("price", "0.00")
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestColumnRangeLimits(t *testing.T) {
	tests := []struct {
		name string
		err  error
		ok   bool
	}{
		{"quantity at int max", PositiveInt("quantity", "2147483647"), true},
		{"quantity above int max", PositiveInt("quantity", "2147483648"), false},
		{"quantity far above int max", PositiveInt("quantity", "3000000000"), false},
		{"stock zero", NonNegativeInt("stock", "0"), true},
		{"stock above int max", NonNegativeInt("stock", "2147483648"), false},
		{"stock beyond int64", NonNegativeInt("stock", "99999999999999999999"), false},
		{"money at column max", Money("amount", "99999999.99"), true},
		{"money above column max", Money("amount", "100000000"), false},
		{"money far above column max", Money("price", "123456789012.50"), false},
		{"money below custom limit", MoneyUpTo("amount", "10.00", decimal.NewFromInt(10)), true},
		{"money above custom limit", MoneyUpTo("amount", "10.01", decimal.NewFromInt(10)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.ok {
				assert.NoError(t, tt.err)
				return
			}
			assert.ErrorIs(t, tt.err, errs.ErrInvalidArgument)
		})
	}
}

func TestParseIDIsNotBoundByIntColumn(t *testing.T) {
	id, err := ParseID("id", "3000000000")
	require.NoError(t, err)
	assert.Equal(t, int64(3000000000), id)
}
