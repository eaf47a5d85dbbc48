package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arcticshore/pickups/internal/domain"
)

// OverrideStore is the persistence façade over the four independent override
// collections. The reconciler composes them; it never inlines per-kind reads.
type OverrideStore interface {
	BookingStatuses(ctx context.Context, dateKey string) (map[string]domain.StatusOverride, error)
	SaveBookingStatus(ctx context.Context, o domain.StatusOverride) error

	PickupAssignments(ctx context.Context, dateKey string) (map[string]domain.AssignmentOverride, error)
	SavePickupAssignment(ctx context.Context, o domain.AssignmentOverride) error
	RemovePickupAssignment(ctx context.Context, bookingID, dateKey string) error

	UpdatedPickupPlaces(ctx context.Context, dateKey string) (map[string]domain.PickupPlaceOverride, error)
	SaveUpdatedPickupPlace(ctx context.Context, o domain.PickupPlaceOverride) error

	ReorderedBookings(ctx context.Context, guideID, dateKey string) ([]string, error)
	SaveReorderedBookings(ctx context.Context, guideID, dateKey string, bookingIDs []string) error
	RemoveReorderedBookings(ctx context.Context, guideID, dateKey string) error
}

type PGOverrideStore struct {
	db *pgxpool.Pool
}

func NewOverrideStore(db *pgxpool.Pool) OverrideStore {
	return &PGOverrideStore{db: db}
}

func (r *PGOverrideStore) BookingStatuses(ctx context.Context, dateKey string) (map[string]domain.StatusOverride, error) {
	rows, err := r.db.Query(ctx, `SELECT booking_id, date_key, is_arrived, is_no_show FROM booking_status_overrides WHERE date_key=$1`, dateKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statuses := make(map[string]domain.StatusOverride)
	for rows.Next() {
		var o domain.StatusOverride
		if err := rows.Scan(&o.BookingID, &o.DateKey, &o.Arrived, &o.NoShow); err != nil {
			return nil, err
		}
		statuses[o.BookingID] = o
	}
	return statuses, rows.Err()
}

func (r *PGOverrideStore) SaveBookingStatus(ctx context.Context, o domain.StatusOverride) error {
	_, err := r.db.Exec(ctx, `INSERT INTO booking_status_overrides (booking_id, date_key, is_arrived, is_no_show, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (booking_id, date_key) DO UPDATE SET is_arrived=$3, is_no_show=$4, updated_at=now()`,
		o.BookingID, o.DateKey, o.Arrived, o.NoShow)
	return err
}

func (r *PGOverrideStore) PickupAssignments(ctx context.Context, dateKey string) (map[string]domain.AssignmentOverride, error) {
	rows, err := r.db.Query(ctx, `SELECT booking_id, date_key, guide_id, guide_name FROM assignment_overrides WHERE date_key=$1`, dateKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assignments := make(map[string]domain.AssignmentOverride)
	for rows.Next() {
		var o domain.AssignmentOverride
		if err := rows.Scan(&o.BookingID, &o.DateKey, &o.GuideID, &o.GuideName); err != nil {
			return nil, err
		}
		assignments[o.BookingID] = o
	}
	return assignments, rows.Err()
}

func (r *PGOverrideStore) SavePickupAssignment(ctx context.Context, o domain.AssignmentOverride) error {
	_, err := r.db.Exec(ctx, `INSERT INTO assignment_overrides (booking_id, date_key, guide_id, guide_name, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (booking_id, date_key) DO UPDATE SET guide_id=$3, guide_name=$4, updated_at=now()`,
		o.BookingID, o.DateKey, o.GuideID, o.GuideName)
	return err
}

func (r *PGOverrideStore) RemovePickupAssignment(ctx context.Context, bookingID, dateKey string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM assignment_overrides WHERE booking_id=$1 AND date_key=$2`, bookingID, dateKey)
	return err
}

func (r *PGOverrideStore) UpdatedPickupPlaces(ctx context.Context, dateKey string) (map[string]domain.PickupPlaceOverride, error) {
	rows, err := r.db.Query(ctx, `SELECT booking_id, date_key, pickup_place_name FROM pickup_place_overrides WHERE date_key=$1`, dateKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	places := make(map[string]domain.PickupPlaceOverride)
	for rows.Next() {
		var o domain.PickupPlaceOverride
		if err := rows.Scan(&o.BookingID, &o.DateKey, &o.PickupPlaceName); err != nil {
			return nil, err
		}
		places[o.BookingID] = o
	}
	return places, rows.Err()
}

func (r *PGOverrideStore) SaveUpdatedPickupPlace(ctx context.Context, o domain.PickupPlaceOverride) error {
	_, err := r.db.Exec(ctx, `INSERT INTO pickup_place_overrides (booking_id, date_key, pickup_place_name, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (booking_id, date_key) DO UPDATE SET pickup_place_name=$3, updated_at=now()`,
		o.BookingID, o.DateKey, o.PickupPlaceName)
	return err
}

func (r *PGOverrideStore) ReorderedBookings(ctx context.Context, guideID, dateKey string) ([]string, error) {
	var bookingIDs []string
	err := r.db.QueryRow(ctx, `SELECT booking_ids FROM order_overrides WHERE guide_id=$1 AND date_key=$2`, guideID, dateKey).Scan(&bookingIDs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return bookingIDs, nil
}

func (r *PGOverrideStore) SaveReorderedBookings(ctx context.Context, guideID, dateKey string, bookingIDs []string) error {
	_, err := r.db.Exec(ctx, `INSERT INTO order_overrides (guide_id, date_key, booking_ids, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (guide_id, date_key) DO UPDATE SET booking_ids=$3, updated_at=now()`,
		guideID, dateKey, bookingIDs)
	return err
}

func (r *PGOverrideStore) RemoveReorderedBookings(ctx context.Context, guideID, dateKey string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM order_overrides WHERE guide_id=$1 AND date_key=$2`, guideID, dateKey)
	return err
}

var _ OverrideStore = (*PGOverrideStore)(nil)
