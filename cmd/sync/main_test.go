package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"ims-storefront-bridge/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSyncer struct {
	sellers []string
	report  *domain.SyncReport
	err     error
}

func (s *stubSyncer) Sync(_ context.Context, sellerNumber string) (*domain.SyncReport, error) {
	s.sellers = append(s.sellers, sellerNumber)
	if s.err != nil {
		return nil, s.err
	}
	report := *s.report
	report.SellerNumber = sellerNumber
	return &report, nil
}

func stubConnect(s *stubSyncer, defaultSeller string, closed *bool) connectFunc {
	return func(context.Context) (*environment, error) {
		return &environment{
			syncer:        s,
			defaultSeller: defaultSeller,
			close:         func() { *closed = true },
		}, nil
	}
}

func TestSyncCommand(t *testing.T) {
	t.Setenv("SELLER_NUMBER", "")

	t.Run("prints the report", func(t *testing.T) {
		s := &stubSyncer{report: &domain.SyncReport{Shop: "acme.myshopify.com", Created: 2}}
		var closed bool
		var out bytes.Buffer

		err := newCommand(stubConnect(s, "", &closed), &out).Run(context.Background(), []string{"sync", "--seller", "12345"})
		require.NoError(t, err)

		var report domain.SyncReport
		require.NoError(t, json.Unmarshal(out.Bytes(), &report))
		assert.Equal(t, "12345", report.SellerNumber)
		assert.Equal(t, 2, report.Created)
		assert.Equal(t, []string{"12345"}, s.sellers)
		assert.True(t, closed)
	})

	t.Run("falls back to the configured seller", func(t *testing.T) {
		s := &stubSyncer{report: &domain.SyncReport{}}
		var closed bool

		err := newCommand(stubConnect(s, "777", &closed), &bytes.Buffer{}).Run(context.Background(), []string{"sync"})
		require.NoError(t, err)
		assert.Equal(t, []string{"777"}, s.sellers)
	})

	t.Run("reads SELLER_NUMBER", func(t *testing.T) {
		t.Setenv("SELLER_NUMBER", "555")
		s := &stubSyncer{report: &domain.SyncReport{}}
		var closed bool

		err := newCommand(stubConnect(s, "777", &closed), &bytes.Buffer{}).Run(context.Background(), []string{"sync"})
		require.NoError(t, err)
		assert.Equal(t, []string{"555"}, s.sellers)
	})

	t.Run("requires a seller", func(t *testing.T) {
		s := &stubSyncer{report: &domain.SyncReport{}}
		var closed bool

		err := newCommand(stubConnect(s, "", &closed), &bytes.Buffer{}).Run(context.Background(), []string{"sync"})
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
		assert.Empty(t, s.sellers)
	})

	t.Run("fails when a product failed", func(t *testing.T) {
		s := &stubSyncer{report: &domain.SyncReport{
			Created:  1,
			Failed:   1,
			Outcomes: []domain.ProductOutcome{{Status: domain.SyncStatusCreated}, {Status: domain.SyncStatusFailed}},
		}}
		var closed bool
		var out bytes.Buffer

		err := newCommand(stubConnect(s, "", &closed), &out).Run(context.Background(), []string{"sync", "--seller", "1"})
		assert.ErrorIs(t, err, errProductsFailed)
		assert.NotEmpty(t, out.String())
	})

	t.Run("returns run errors", func(t *testing.T) {
		s := &stubSyncer{err: domain.ErrConfigNotFound}
		var closed bool

		err := newCommand(stubConnect(s, "", &closed), &bytes.Buffer{}).Run(context.Background(), []string{"sync", "--seller", "1"})
		assert.ErrorIs(t, err, domain.ErrConfigNotFound)
	})

	t.Run("returns connect errors", func(t *testing.T) {
		boom := errors.New("mongo down")
		connect := func(context.Context) (*environment, error) { return nil, boom }

		err := newCommand(connect, &bytes.Buffer{}).Run(context.Background(), []string{"sync", "--seller", "1"})
		assert.ErrorIs(t, err, boom)
	})
}
