package services

import (
	"context"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sixDigits = regexp.MustCompile(`^\d{6}$`)

func TestIssueFormatsSixDigits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.otp.draw = func() (int64, error) { return 42, nil }
	code, err := f.otp.Issue(ctx, "vecino@example.com")
	require.NoError(t, err)
	assert.Equal(t, "000042", code)

	f.otp.draw = randomCode
	for i := 0; i < 50; i++ {
		code, err := f.otp.Issue(ctx, "vecino@example.com")
		require.NoError(t, err)
		assert.Regexp(t, sixDigits, code)
	}
}

func TestIssueRejectsBadEmail(t *testing.T) {
	f := newFixture(t)
	_, err := f.otp.Issue(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.otp.Issue(context.Background(), "not-an-email")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRequestCodeRejectsDisplayNameForms(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, raw := range []string{
		"Bob <Bob@Example.com>",
		"<bob@example.com>",
		"bob@example.com, eve@example.com",
		`"Bob" bob@example.com`,
	} {
		err := f.otp.RequestCode(ctx, raw)
		assert.ErrorIs(t, err, ErrValidation, raw)
	}
	assert.Empty(t, f.notifier.otps)

	require.NoError(t, f.otp.RequestCode(ctx, " Bob@Example.com "))
	assert.Contains(t, f.notifier.otps, "bob@example.com")
	assert.Len(t, f.notifier.otps, 1)
}

func TestReissueReplacesPreviousCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	codes := []int64{111111, 222222}
	f.otp.draw = func() (int64, error) {
		c := codes[0]
		codes = codes[1:]
		return c, nil
	}

	_, err := f.otp.Issue(ctx, "a@b.com")
	require.NoError(t, err)
	_, err = f.otp.Issue(ctx, "a@b.com")
	require.NoError(t, err)

	assert.ErrorIs(t, f.otp.Validate(ctx, "a@b.com", "111111"), ErrCodeMismatch)
	assert.NoError(t, f.otp.Validate(ctx, "a@b.com", "222222"))
}

func TestValidateIsSingleUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	code, err := f.otp.Issue(ctx, "a@b.com")
	require.NoError(t, err)
	require.NoError(t, f.otp.Validate(ctx, "a@b.com", code))
	assert.ErrorIs(t, f.otp.Validate(ctx, "a@b.com", code), ErrCodeNotFound)
}

func TestValidateNormalizesEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	code, err := f.otp.Issue(ctx, "  Vecina@Example.COM ")
	require.NoError(t, err)
	assert.NoError(t, f.otp.Validate(ctx, "vecina@example.com", code))
}

func TestValidateExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	code, err := f.otp.Issue(ctx, "a@b.com")
	require.NoError(t, err)

	f.clock.Advance(3 * time.Minute)
	f.clock.Advance(time.Second)
	assert.ErrorIs(t, f.otp.Validate(ctx, "a@b.com", code), ErrCodeExpired)
	assert.ErrorIs(t, f.otp.Validate(ctx, "a@b.com", code), ErrExpired)
}

func TestValidateAtExactExpiryStillValid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	code, err := f.otp.Issue(ctx, "a@b.com")
	require.NoError(t, err)
	f.clock.Advance(3 * time.Minute)
	assert.NoError(t, f.otp.Validate(ctx, "a@b.com", code))
}

func TestValidateMismatchKeepsCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.otp.draw = func() (int64, error) { return 123456, nil }

	_, err := f.otp.Issue(ctx, "a@b.com")
	require.NoError(t, err)
	assert.ErrorIs(t, f.otp.Validate(ctx, "a@b.com", "654321"), ErrCodeMismatch)
	assert.NoError(t, f.otp.Validate(ctx, "a@b.com", "123456"))
}

func TestValidateUnknownEmail(t *testing.T) {
	f := newFixture(t)
	err := f.otp.Validate(context.Background(), "nobody@b.com", "000000")
	assert.ErrorIs(t, err, ErrCodeNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentValidateSucceedsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	code, err := f.otp.Issue(ctx, "a@b.com")
	require.NoError(t, err)

	var ok int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if f.otp.Validate(ctx, "a@b.com", code) == nil {
				atomic.AddInt32(&ok, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), ok)
}

func TestRequestCodeDelivers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.otp.RequestCode(ctx, "A@B.com"))
	code := f.notifier.otps["a@b.com"]
	require.NotEmpty(t, code)
	assert.NoError(t, f.otp.Validate(ctx, "a@b.com", code))
}

func TestRequestCodeDeliveryFailureKeepsCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.notifier.fail = errSMTPDown
	f.otp.draw = func() (int64, error) { return 7, nil }

	err := f.otp.RequestCode(ctx, "a@b.com")
	require.ErrorIs(t, err, ErrNotificationFailed)
	assert.NoError(t, f.otp.Validate(ctx, "a@b.com", "000007"))
}
