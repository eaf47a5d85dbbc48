package fetch

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arcticshore/pickups/internal/domain"
	"github.com/arcticshore/pickups/internal/normalize"
	"github.com/arcticshore/pickups/internal/upstream"
)

type SearchClient interface {
	SearchByTourDate(ctx context.Context, from, to time.Time) ([]upstream.Reservation, error)
	SearchByCreationDate(ctx context.Context, from, to time.Time) ([]upstream.Reservation, error)
}

type Cache interface {
	GetBookings(ctx context.Context, dateKey string) ([]domain.Booking, error)
	SetBookings(ctx context.Context, dateKey string, bookings []domain.Booking) error
}

type dateClass int

const (
	dateTooOld dateClass = iota
	datePastRecent
	dateCurrentOrFuture
)

// Fetcher retrieves bookings for a target date. Current and future dates are
// a single direct search whose failure propagates. Past dates get a fallback
// chain, because the upstream API rejects search windows fully in the past;
// dates beyond the retention horizon skip the network entirely.
type Fetcher struct {
	client               SearchClient
	cache                Cache
	normalizer           *normalize.Normalizer
	retentionDays        int
	creationLookbackDays int
	now                  func() time.Time
}

func NewFetcher(client SearchClient, cache Cache, normalizer *normalize.Normalizer, retentionDays, creationLookbackDays int) *Fetcher {
	return &Fetcher{
		client:               client,
		cache:                cache,
		normalizer:           normalizer,
		retentionDays:        retentionDays,
		creationLookbackDays: creationLookbackDays,
		now:                  time.Now,
	}
}

// BookingsForDate returns the normalized bookings for the target date. For
// past dates total strategy exhaustion yields an empty list, not an error.
func (f *Fetcher) BookingsForDate(ctx context.Context, date time.Time) ([]domain.Booking, error) {
	dateKey := domain.DateKey(date)

	switch f.classify(date) {
	case dateTooOld:
		return f.cachedOnly(ctx, dateKey)
	case dateCurrentOrFuture:
		return f.direct(ctx, date, dateKey)
	default:
		return runStrategies(ctx, f.strategiesForPastDate(date, dateKey)), nil
	}
}

func (f *Fetcher) classify(date time.Time) dateClass {
	now := f.now()
	today := startOfDay(now)
	target := startOfDay(date)

	if !target.Before(today) {
		return dateCurrentOrFuture
	}
	horizon := today.AddDate(0, 0, -f.retentionDays)
	if target.Before(horizon) {
		return dateTooOld
	}
	return datePastRecent
}

func (f *Fetcher) cachedOnly(ctx context.Context, dateKey string) ([]domain.Booking, error) {
	cached, err := f.cache.GetBookings(ctx, dateKey)
	if err != nil {
		logrus.WithError(err).WithField("date_key", dateKey).Warn("booking cache read failed for retired date")
		return []domain.Booking{}, nil
	}
	if cached == nil {
		return []domain.Booking{}, nil
	}
	return cached, nil
}

func (f *Fetcher) direct(ctx context.Context, date time.Time, dateKey string) ([]domain.Booking, error) {
	records, err := f.client.SearchByTourDate(ctx, startOfDay(date), endOfDay(date))
	if err != nil {
		return nil, err
	}
	bookings := filterByDateKey(f.normalizer.Reservations(records), dateKey)
	if err := f.cache.SetBookings(ctx, dateKey, bookings); err != nil {
		logrus.WithError(err).WithField("date_key", dateKey).Warn("failed to cache bookings")
	}
	return bookings, nil
}

func filterByDateKey(bookings []domain.Booking, dateKey string) []domain.Booking {
	filtered := make([]domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if domain.DateKey(b.PickupTime) == dateKey {
			filtered = append(filtered, b)
		}
	}
	return filtered
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.UTC)
}
