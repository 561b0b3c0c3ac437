package utils

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartOfDay(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)

	cases := []struct {
		name string
		at   time.Time
		loc  *time.Location
		want time.Time
	}{
		{"utc", time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC), time.UTC, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)},
		{"nil location", time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC), nil, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)},
		{"local day ahead of utc", time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC), rome, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := StartOfDay(tc.at, tc.loc)
			assert.True(t, tc.want.Equal(got), "want %s got %s", tc.want, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestNormalizeCurrency(t *testing.T) {
	got, err := NormalizeCurrency(" usd ", "EUR")
	require.NoError(t, err)
	assert.Equal(t, "USD", got)

	got, err = NormalizeCurrency("", "eur")
	require.NoError(t, err)
	assert.Equal(t, "EUR", got)

	var ve *ValidationError
	_, err = NormalizeCurrency("ZZZ", "EUR")
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "currency")

	_, err = NormalizeCurrency("", "")
	require.ErrorAs(t, err, &ve)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("")
	assert.Error(t, err)
	_, err = ParseDate("10/03/2026")
	assert.Error(t, err)
}

func TestPersist(t *testing.T) {
	assert.NoError(t, Persist("op", nil))

	// Domain errors pass through untouched.
	assert.Equal(t, ErrAccountNotFound, Persist("op", ErrAccountNotFound))
	wrapped := fmt.Errorf("resolve: %w", ErrInvalidTransfer)
	assert.Equal(t, wrapped, Persist("op", wrapped))

	cause := errors.New("disk full")
	err := Persist("insert valuation", cause)
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "insert valuation", pe.Op)
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsDomainError(err))

	// Already wrapped errors keep their first op.
	assert.Equal(t, err, Persist("other", err))
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"name": "required", "amount": "gt"}}
	assert.Equal(t, "validation failed: amount: gt, name: required", err.Error())
	assert.True(t, IsDomainError(err))
	assert.Equal(t, "validation failed", (&ValidationError{}).Error())
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, SplitAndTrim("  "))
	assert.Equal(t, []string{"a", "b"}, SplitAndTrim(" a, ,b "))
}
