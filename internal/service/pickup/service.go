package pickup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/arcticshore/pickups/internal/domain"
	"github.com/arcticshore/pickups/internal/kafka"
	"github.com/arcticshore/pickups/internal/reconcile"
	"github.com/arcticshore/pickups/internal/repository"
)

// UseCase is the single entry point UI-facing code calls.
type UseCase interface {
	LoadBookingsForDate(ctx context.Context, date time.Time) error
	AssignBookingToGuide(ctx context.Context, bookingID, guideID, guideName string) error
	MarkAsArrived(ctx context.Context, bookingID string, arrived bool) error
	MarkAsNoShow(ctx context.Context, bookingID string, noShow bool) error
	MoveBookingBetweenGuides(ctx context.Context, bookingID, fromGuideID, toGuideID, toGuideName string) error
	UpdatePickupPlace(ctx context.Context, bookingID, newName string) error
	ReorderCurrentUserBookings(ctx context.Context, bookingIDs []string) error
	ResetToAlphabeticalOrder(ctx context.Context) error
	DistributeUnassigned(ctx context.Context) error
	Snapshot() Snapshot
	Subscribe(fn func(Snapshot)) func()
}

type Fetcher interface {
	BookingsForDate(ctx context.Context, date time.Time) ([]domain.Booking, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Service drives fetch → normalize → reconcile → distribute and owns all
// shared state. Mutation happens on one logical sequence of reconciliation
// steps under the mutex; every update replaces whole collections.
type Service struct {
	fetcher          Fetcher
	overrides        repository.OverrideStore
	producer         Producer
	topic            string
	guides           []domain.Guide
	currentGuideID   string
	maxPassengers    int
	secondaryTimeout time.Duration
	now              func() time.Time

	mu           sync.Mutex
	snap         Snapshot
	loadToken    uint64
	observers    map[int]func(Snapshot)
	nextObserver int
}

type Option func(*Service)

func WithProducer(p Producer, topic string) Option {
	return func(s *Service) {
		s.producer = p
		s.topic = topic
	}
}

func WithSecondaryLoadTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.secondaryTimeout = d
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(fetcher Fetcher, overrides repository.OverrideStore, guides []domain.Guide, currentGuideID string, maxPassengers int, opts ...Option) *Service {
	s := &Service{
		fetcher:          fetcher,
		overrides:        overrides,
		guides:           guides,
		currentGuideID:   currentGuideID,
		maxPassengers:    maxPassengers,
		secondaryTimeout: 5 * time.Second,
		now:              time.Now,
		snap:             Snapshot{State: StateIdle},
		observers:        make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Subscribe registers an observer for snapshot replacements and returns the
// matching unsubscribe func.
func (s *Service) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextObserver
	s.nextObserver++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *Service) notify(snap Snapshot) {
	s.mu.Lock()
	fns := make([]func(Snapshot), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// LoadBookingsForDate runs the full fetch → reconcile pipeline for one date.
// Overlapping loads are last-request-wins: each call takes a fresh token and
// results carrying a stale token are discarded, so a slow old request can
// never overwrite a newer one. The deferred finish guarantees the snapshot
// never stays in Loading.
func (s *Service) LoadBookingsForDate(ctx context.Context, date time.Time) error {
	token := s.beginLoad(date)
	var loadErr error
	defer s.finishLoad(token, &loadErr)

	dateKey := domain.DateKey(date)

	fetched, err := s.fetcher.BookingsForDate(ctx, date)
	if s.stale(token) {
		return nil
	}
	if err != nil {
		loadErr = err
		return err
	}

	overrides := s.loadOverrides(ctx, dateKey)
	savedOrder := s.loadSavedOrder(ctx, s.currentGuideID, dateKey)
	if s.stale(token) {
		return nil
	}

	reconciled := reconcile.Apply(fetched, overrides)

	s.mu.Lock()
	if token != s.loadToken {
		s.mu.Unlock()
		return nil
	}
	prev := s.snap
	if len(reconciled) == 0 && len(prev.Bookings) > 0 && prev.DateKey == dateKey {
		// An empty feed over non-empty held data for the same date is far
		// more likely a transient upstream anomaly than a mass cancellation.
		reconciled = prev.Bookings
	}
	s.snap = s.buildSnapshot(StateLoaded, date, dateKey, reconciled, savedOrder, nil)
	snap := s.snap
	s.mu.Unlock()

	s.notify(snap)
	return nil
}

func (s *Service) beginLoad(date time.Time) uint64 {
	s.mu.Lock()
	s.loadToken++
	token := s.loadToken
	s.snap.State = StateLoading
	s.snap.SelectedDate = date
	s.snap.Err = nil
	snap := s.snap
	s.mu.Unlock()

	s.notify(snap)
	return token
}

// finishLoad is the unconditional exit from Loading. If the load completed
// or was superseded it does nothing; otherwise it settles the snapshot into
// Loaded or Error.
func (s *Service) finishLoad(token uint64, loadErr *error) {
	s.mu.Lock()
	if token != s.loadToken || s.snap.State != StateLoading {
		s.mu.Unlock()
		return
	}
	if *loadErr != nil {
		s.snap.State = StateError
		s.snap.Err = *loadErr
		if len(s.snap.Bookings) == 0 {
			s.snap.CurrentUserBookings = nil
		}
	} else {
		s.snap.State = StateLoaded
	}
	snap := s.snap
	s.mu.Unlock()

	s.notify(snap)
}

func (s *Service) stale(token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return token != s.loadToken
}

// loadOverrides fetches the three per-booking override layers concurrently.
// Each load runs behind its own error boundary with the secondary timeout
// and falls back to an empty layer rather than failing the whole operation.
func (s *Service) loadOverrides(ctx context.Context, dateKey string) reconcile.Overrides {
	overrides := reconcile.Overrides{
		Statuses:     map[string]domain.StatusOverride{},
		Assignments:  map[string]domain.AssignmentOverride{},
		PickupPlaces: map[string]domain.PickupPlaceOverride{},
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		if statuses := loadLayer(ctx, s.secondaryTimeout, dateKey, "statuses", s.overrides.BookingStatuses); statuses != nil {
			overrides.Statuses = statuses
		}
	}()
	go func() {
		defer wg.Done()
		if assignments := loadLayer(ctx, s.secondaryTimeout, dateKey, "assignments", s.overrides.PickupAssignments); assignments != nil {
			overrides.Assignments = assignments
		}
	}()
	go func() {
		defer wg.Done()
		if places := loadLayer(ctx, s.secondaryTimeout, dateKey, "pickup_places", s.overrides.UpdatedPickupPlaces); places != nil {
			overrides.PickupPlaces = places
		}
	}()
	wg.Wait()
	return overrides
}

func loadLayer[T any](ctx context.Context, timeout time.Duration, dateKey, layer string, load func(context.Context, string) (map[string]T, error)) map[string]T {
	loadCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	values, err := load(loadCtx, dateKey)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"layer": layer, "date_key": dateKey}).Warn("override load failed, proceeding with defaults")
		return nil
	}
	return values
}

func (s *Service) loadSavedOrder(ctx context.Context, guideID, dateKey string) []string {
	loadCtx, cancel := context.WithTimeout(ctx, s.secondaryTimeout)
	defer cancel()

	saved, err := s.overrides.ReorderedBookings(loadCtx, guideID, dateKey)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"guide_id": guideID, "date_key": dateKey}).Warn("saved order load failed, using default order")
		return nil
	}
	return saved
}

// buildSnapshot recomputes every derived view from the reconciled booking
// set. It is the only place guide lists or the current-user view are built.
func (s *Service) buildSnapshot(state State, date time.Time, dateKey string, bookings []domain.Booking, savedOrder []string, err error) Snapshot {
	current := reconcile.ForGuide(bookings, s.currentGuideID)
	current = reconcile.ApplyOrder(current, savedOrder)
	return Snapshot{
		State:               state,
		SelectedDate:        date,
		DateKey:             dateKey,
		Bookings:            bookings,
		CurrentUserBookings: current,
		GuideLists:          reconcile.BuildGuideLists(bookings, s.guides, dateKey),
		Err:                 err,
		currentUserOrder:    savedOrder,
	}
}

func (s *Service) AssignBookingToGuide(ctx context.Context, bookingID, guideID, guideName string) error {
	snap := s.Snapshot()
	booking, ok := findBooking(snap.Bookings, bookingID)
	if !ok {
		return domain.ErrBookingNotFound
	}
	if !s.onRoster(guideID) {
		return domain.ErrGuideNotFound
	}
	if err := checkCapacity(snap.GuideLists, guideID, booking, s.maxPassengers); err != nil {
		return err
	}

	override := domain.AssignmentOverride{BookingID: bookingID, DateKey: snap.DateKey, GuideID: guideID, GuideName: guideName}
	if err := s.overrides.SavePickupAssignment(ctx, override); err != nil {
		return fmt.Errorf("save assignment override: %w", err)
	}

	s.replaceBookings(func(b *domain.Booking) {
		if b.ID == bookingID {
			b.GuideID = guideID
			b.GuideName = guideName
		}
	})
	s.publish(ctx, kafka.PickupEvent{
		Type:      kafka.EventAssignmentChanged,
		BookingID: bookingID,
		DateKey:   snap.DateKey,
		GuideID:   guideID,
		GuideName: guideName,
	})
	return nil
}

func (s *Service) MarkAsArrived(ctx context.Context, bookingID string, arrived bool) error {
	return s.setStatus(ctx, bookingID, func(b *domain.Booking) { b.Arrived = arrived })
}

func (s *Service) MarkAsNoShow(ctx context.Context, bookingID string, noShow bool) error {
	return s.setStatus(ctx, bookingID, func(b *domain.Booking) { b.NoShow = noShow })
}

func (s *Service) setStatus(ctx context.Context, bookingID string, apply func(*domain.Booking)) error {
	snap := s.Snapshot()
	booking, ok := findBooking(snap.Bookings, bookingID)
	if !ok {
		return domain.ErrBookingNotFound
	}
	apply(&booking)

	override := domain.StatusOverride{BookingID: bookingID, DateKey: snap.DateKey, Arrived: booking.Arrived, NoShow: booking.NoShow}
	if err := s.overrides.SaveBookingStatus(ctx, override); err != nil {
		return fmt.Errorf("save status override: %w", err)
	}

	s.replaceBookings(func(b *domain.Booking) {
		if b.ID == bookingID {
			b.Arrived = booking.Arrived
			b.NoShow = booking.NoShow
		}
	})
	s.publish(ctx, kafka.PickupEvent{
		Type:      kafka.EventStatusChanged,
		BookingID: bookingID,
		DateKey:   snap.DateKey,
		GuideID:   booking.GuideID,
		Arrived:   booking.Arrived,
		NoShow:    booking.NoShow,
	})
	return nil
}

// MoveBookingBetweenGuides re-homes one booking. The capacity check on the
// receiving guide happens before anything is persisted, so a rejected move
// leaves both lists untouched.
func (s *Service) MoveBookingBetweenGuides(ctx context.Context, bookingID, fromGuideID, toGuideID, toGuideName string) error {
	snap := s.Snapshot()
	booking, ok := findBooking(snap.Bookings, bookingID)
	if !ok || booking.GuideID != fromGuideID {
		return domain.ErrBookingNotFound
	}
	if !s.onRoster(toGuideID) {
		return domain.ErrGuideNotFound
	}
	if err := checkCapacity(snap.GuideLists, toGuideID, booking, s.maxPassengers); err != nil {
		return err
	}

	override := domain.AssignmentOverride{BookingID: bookingID, DateKey: snap.DateKey, GuideID: toGuideID, GuideName: toGuideName}
	if err := s.overrides.SavePickupAssignment(ctx, override); err != nil {
		return fmt.Errorf("save assignment override: %w", err)
	}

	s.replaceBookings(func(b *domain.Booking) {
		if b.ID == bookingID {
			b.GuideID = toGuideID
			b.GuideName = toGuideName
		}
	})
	s.publish(ctx, kafka.PickupEvent{
		Type:      kafka.EventAssignmentChanged,
		BookingID: bookingID,
		DateKey:   snap.DateKey,
		GuideID:   toGuideID,
		GuideName: toGuideName,
	})
	return nil
}

func (s *Service) UpdatePickupPlace(ctx context.Context, bookingID, newName string) error {
	snap := s.Snapshot()
	if _, ok := findBooking(snap.Bookings, bookingID); !ok {
		return domain.ErrBookingNotFound
	}

	override := domain.PickupPlaceOverride{BookingID: bookingID, DateKey: snap.DateKey, PickupPlaceName: newName}
	if err := s.overrides.SaveUpdatedPickupPlace(ctx, override); err != nil {
		return fmt.Errorf("save pickup place override: %w", err)
	}

	s.replaceBookings(func(b *domain.Booking) {
		if b.ID == bookingID {
			b.PickupPlaceName = newName
		}
	})
	s.publish(ctx, kafka.PickupEvent{
		Type:        kafka.EventPickupPlaceUpdated,
		BookingID:   bookingID,
		DateKey:     snap.DateKey,
		PickupPlace: newName,
	})
	return nil
}

func (s *Service) ReorderCurrentUserBookings(ctx context.Context, bookingIDs []string) error {
	snap := s.Snapshot()
	if err := s.overrides.SaveReorderedBookings(ctx, s.currentGuideID, snap.DateKey, bookingIDs); err != nil {
		return fmt.Errorf("save reordered bookings: %w", err)
	}

	s.replaceOrder(bookingIDs)
	s.publish(ctx, kafka.PickupEvent{
		Type:    kafka.EventOrderSaved,
		DateKey: snap.DateKey,
		GuideID: s.currentGuideID,
	})
	return nil
}

func (s *Service) ResetToAlphabeticalOrder(ctx context.Context) error {
	snap := s.Snapshot()
	if err := s.overrides.RemoveReorderedBookings(ctx, s.currentGuideID, snap.DateKey); err != nil {
		return fmt.Errorf("remove reordered bookings: %w", err)
	}

	s.replaceOrder(nil)
	s.publish(ctx, kafka.PickupEvent{
		Type:    kafka.EventOrderReset,
		DateKey: snap.DateKey,
		GuideID: s.currentGuideID,
	})
	return nil
}

// DistributeUnassigned spreads the currently-unassigned bookings across the
// guide roster. Idempotent: already-assigned bookings are untouched, and a
// failed override write skips that one placement without aborting the rest.
func (s *Service) DistributeUnassigned(ctx context.Context) error {
	snap := s.Snapshot()

	totals := make(map[string]int, len(snap.GuideLists))
	for _, list := range snap.GuideLists {
		totals[list.GuideID] = list.Passengers
	}

	placements := Distribute(reconcile.Unassigned(snap.Bookings), s.guides, totals, s.maxPassengers)
	applied := make(map[string]domain.Guide, len(placements))
	for _, p := range placements {
		override := domain.AssignmentOverride{BookingID: p.Booking.ID, DateKey: snap.DateKey, GuideID: p.Guide.ID, GuideName: p.Guide.Name}
		if err := s.overrides.SavePickupAssignment(ctx, override); err != nil {
			logrus.WithError(err).WithField("booking_id", p.Booking.ID).Warn("failed to persist distributed assignment")
			continue
		}
		applied[p.Booking.ID] = p.Guide
	}

	if len(applied) == 0 {
		return nil
	}

	s.replaceBookings(func(b *domain.Booking) {
		if g, ok := applied[b.ID]; ok {
			b.GuideID = g.ID
			b.GuideName = g.Name
		}
	})
	s.publish(ctx, kafka.PickupEvent{
		Type:    kafka.EventAssignmentChanged,
		DateKey: snap.DateKey,
	})
	return nil
}

// replaceBookings applies a per-booking mutation to a copy of the current
// set and swaps in a fully rebuilt snapshot.
func (s *Service) replaceBookings(apply func(*domain.Booking)) {
	s.mu.Lock()
	bookings := make([]domain.Booking, len(s.snap.Bookings))
	copy(bookings, s.snap.Bookings)
	for i := range bookings {
		apply(&bookings[i])
	}
	reconcile.SortAlphabetical(bookings)
	s.snap = s.buildSnapshot(s.snap.State, s.snap.SelectedDate, s.snap.DateKey, bookings, s.snap.currentUserOrder, s.snap.Err)
	snap := s.snap
	s.mu.Unlock()

	s.notify(snap)
}

func (s *Service) replaceOrder(savedOrder []string) {
	s.mu.Lock()
	s.snap = s.buildSnapshot(s.snap.State, s.snap.SelectedDate, s.snap.DateKey, s.snap.Bookings, savedOrder, s.snap.Err)
	snap := s.snap
	s.mu.Unlock()

	s.notify(snap)
}

func (s *Service) publish(ctx context.Context, event kafka.PickupEvent) {
	if s.producer == nil || s.topic == "" {
		return
	}
	event.ID = uuid.NewString()
	event.OccurredAt = s.now()
	if err := s.producer.Publish(ctx, s.topic, event.BookingID, event); err != nil {
		logrus.WithError(err).WithField("type", event.Type).Warn("failed to publish pickup event")
	}
}

// onRoster reports whether a guide id belongs to the configured roster.
// Assignment targets must be real guides; off-roster guide lists still appear
// in snapshots when persisted overrides reference guides since removed from
// the roster.
func (s *Service) onRoster(guideID string) bool {
	for _, g := range s.guides {
		if g.ID == guideID {
			return true
		}
	}
	return false
}

func findBooking(bookings []domain.Booking, bookingID string) (domain.Booking, bool) {
	for _, b := range bookings {
		if b.ID == bookingID {
			return b, true
		}
	}
	return domain.Booking{}, false
}

// checkCapacity rejects additions that would push a guide past the vehicle
// limit. A booking already riding with the guide does not count twice.
func checkCapacity(lists []domain.GuideAssignmentList, guideID string, booking domain.Booking, maxPassengers int) error {
	current := 0
	for _, list := range lists {
		if list.GuideID != guideID {
			continue
		}
		current = list.Passengers
		for _, b := range list.Bookings {
			if b.ID == booking.ID {
				current -= b.GuestCount
			}
		}
	}
	if current+booking.GuestCount > maxPassengers {
		return &domain.CapacityError{GuideID: guideID, Current: current, Adding: booking.GuestCount, Max: maxPassengers}
	}
	return nil
}

var _ UseCase = (*Service)(nil)
