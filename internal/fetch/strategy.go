package fetch

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arcticshore/pickups/internal/domain"
)

// strategy is one fallback retrieval attempt for a past date. ok reports
// whether the attempt yielded results; err never aborts the chain.
type strategy struct {
	name    string
	attempt func(ctx context.Context) (bookings []domain.Booking, ok bool, err error)
}

// runStrategies evaluates strategies in order and returns the first success.
// Each strategy carries its own error boundary; exhaustion returns an empty,
// non-error list.
func runStrategies(ctx context.Context, strategies []strategy) []domain.Booking {
	for _, s := range strategies {
		bookings, ok, err := s.attempt(ctx)
		if err != nil {
			logrus.WithError(err).WithField("strategy", s.name).Warn("fallback fetch strategy failed")
			continue
		}
		if ok {
			return bookings
		}
	}
	return []domain.Booking{}
}

func (f *Fetcher) strategiesForPastDate(date time.Time, dateKey string) []strategy {
	return []strategy{
		{name: "wide-window", attempt: func(ctx context.Context) ([]domain.Booking, bool, error) {
			return f.wideWindow(ctx, date, dateKey)
		}},
		{name: "creation-date", attempt: func(ctx context.Context) ([]domain.Booking, bool, error) {
			return f.creationDate(ctx, dateKey)
		}},
		{name: "cache", attempt: func(ctx context.Context) ([]domain.Booking, bool, error) {
			return f.cacheFallback(ctx, dateKey)
		}},
	}
}

// wideWindow queries [startOfDay(target), endOfDay(now)], a window that
// legitimately ends now and is accepted upstream, then filters down to the
// target date client-side.
func (f *Fetcher) wideWindow(ctx context.Context, date time.Time, dateKey string) ([]domain.Booking, bool, error) {
	records, err := f.client.SearchByTourDate(ctx, startOfDay(date), endOfDay(f.now()))
	if err != nil {
		return nil, false, err
	}
	bookings := filterByDateKey(f.normalizer.Reservations(records), dateKey)
	if len(bookings) == 0 {
		return nil, false, nil
	}
	f.cacheResults(ctx, dateKey, bookings)
	return bookings, true, nil
}

// creationDate queries by the bookings' creation timestamps over the recent
// lookback horizon instead of by tour date, then filters by tour date.
func (f *Fetcher) creationDate(ctx context.Context, dateKey string) ([]domain.Booking, bool, error) {
	now := f.now()
	records, err := f.client.SearchByCreationDate(ctx, now.AddDate(0, 0, -f.creationLookbackDays), now)
	if err != nil {
		return nil, false, err
	}
	bookings := filterByDateKey(f.normalizer.Reservations(records), dateKey)
	if len(bookings) == 0 {
		return nil, false, nil
	}
	f.cacheResults(ctx, dateKey, bookings)
	return bookings, true, nil
}

// cacheFallback is terminal: whatever was cached for the date key, or empty.
func (f *Fetcher) cacheFallback(ctx context.Context, dateKey string) ([]domain.Booking, bool, error) {
	cached, err := f.cache.GetBookings(ctx, dateKey)
	if err != nil {
		return nil, false, err
	}
	if cached == nil {
		cached = []domain.Booking{}
	}
	return cached, true, nil
}

func (f *Fetcher) cacheResults(ctx context.Context, dateKey string, bookings []domain.Booking) {
	if err := f.cache.SetBookings(ctx, dateKey, bookings); err != nil {
		logrus.WithError(err).WithField("date_key", dateKey).Warn("failed to cache bookings")
	}
}
