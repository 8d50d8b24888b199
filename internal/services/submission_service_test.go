package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitConsumesCodeAndCreates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	code, err := f.otp.Issue(ctx, "v@x.com")
	require.NoError(t, err)

	r, err := f.submission.Submit(ctx, code, CreateReportInput{
		Latitude: 19.4, Longitude: -99.1, Description: "Bache", CitizenEmail: "V@x.com",
	})
	require.NoError(t, err)
	require.NotNil(t, r.CitizenEmail)
	assert.Equal(t, "v@x.com", *r.CitizenEmail)

	_, err = f.submission.Submit(ctx, code, CreateReportInput{Description: "otro", CitizenEmail: "v@x.com"})
	assert.ErrorIs(t, err, ErrCodeNotFound)
}

func TestSubmitInvalidReportKeepsCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	code, err := f.otp.Issue(ctx, "v@x.com")
	require.NoError(t, err)

	_, err = f.submission.Submit(ctx, code, CreateReportInput{CitizenEmail: "v@x.com"})
	assert.ErrorIs(t, err, ErrValidation)
	assert.NoError(t, f.otp.Validate(ctx, "v@x.com", code))
}

func TestSubmitWrongCodeCreatesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.otp.draw = func() (int64, error) { return 1, nil }
	_, err := f.otp.Issue(ctx, "v@x.com")
	require.NoError(t, err)

	_, err = f.submission.Submit(ctx, "999999", CreateReportInput{Description: "x", CitizenEmail: "v@x.com"})
	assert.ErrorIs(t, err, ErrCodeMismatch)

	all, err := f.reports.List(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSubmitRequiresEmail(t *testing.T) {
	f := newFixture(t)
	_, err := f.submission.Submit(context.Background(), "000000", CreateReportInput{Description: "x"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSubmitStoresBareEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	code, err := f.otp.Issue(ctx, "vecina@example.com")
	require.NoError(t, err)

	_, err = f.submission.Submit(ctx, code, CreateReportInput{
		Description: "x", CitizenEmail: "Vecina <vecina@example.com>",
	})
	assert.ErrorIs(t, err, ErrValidation)

	report, err := f.submission.Submit(ctx, code, CreateReportInput{
		Description: "x", CitizenEmail: " Vecina@Example.com",
	})
	require.NoError(t, err)
	require.NotNil(t, report.CitizenEmail)
	assert.Equal(t, "vecina@example.com", *report.CitizenEmail)
}
