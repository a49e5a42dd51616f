package api

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pedalpoint/bikerental-backend/bike"
	"github.com/pedalpoint/bikerental-backend/booking"
	"github.com/pedalpoint/bikerental-backend/user"
)

// In-memory store fakes backing the handler tests. They mirror the SQL
// repositories' error contracts, including the ownership-scoped writes that
// report ErrNotFound instead of leaking existence.

type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]user.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]user.User)}
}

func (s *fakeUserStore) Create(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return user.ErrDuplicateEmail
		}
	}
	u.Active = true
	u.CreatedAt = time.Now()
	s.users[u.ID] = *u
	return nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	parsed, err := uuid.Parse(id)
	if err != nil {
		return user.User{}, user.ErrNotFound
	}
	u, ok := s.users[parsed]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (s *fakeUserStore) CountNonAdmin(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, u := range s.users {
		if u.Role != user.RoleAdmin {
			n++
		}
	}
	return n, nil
}

type fakeBikeStore struct {
	mu    sync.Mutex
	bikes map[uuid.UUID]bike.Bike
}

func newFakeBikeStore() *fakeBikeStore {
	return &fakeBikeStore{bikes: make(map[uuid.UUID]bike.Bike)}
}

func (s *fakeBikeStore) GetBikes(_ context.Context) ([]bike.Bike, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]bike.Bike, 0, len(s.bikes))
	for _, b := range s.bikes {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeBikeStore) GetBike(_ context.Context, id uuid.UUID) (bike.Bike, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bikes[id]
	if !ok {
		return bike.Bike{}, bike.ErrNotFound
	}
	return b, nil
}

func (s *fakeBikeStore) GetBikeForOwner(_ context.Context, id, ownerID uuid.UUID) (bike.Bike, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bikes[id]
	if !ok || b.OwnerID != ownerID {
		return bike.Bike{}, bike.ErrNotFound
	}
	return b, nil
}

func (s *fakeBikeStore) GetBikesByOwner(_ context.Context, ownerID uuid.UUID) ([]bike.Bike, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []bike.Bike
	for _, b := range s.bikes {
		if b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeBikeStore) Create(_ context.Context, b *bike.Bike) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.CreatedAt = time.Now()
	s.bikes[b.ID] = *b
	return nil
}

func (s *fakeBikeStore) Update(_ context.Context, b *bike.Bike) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.bikes[b.ID]
	if !ok || existing.OwnerID != b.OwnerID {
		return bike.ErrNotFound
	}
	b.CreatedAt = existing.CreatedAt
	s.bikes[b.ID] = *b
	return nil
}

func (s *fakeBikeStore) Delete(_ context.Context, id, ownerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bikes[id]
	if !ok || b.OwnerID != ownerID {
		return bike.ErrNotFound
	}
	delete(s.bikes, id)
	return nil
}

func (s *fakeBikeStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bikes), nil
}

type fakeBookingStore struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]booking.Booking
	bikes    *fakeBikeStore
}

func newFakeBookingStore(bikes *fakeBikeStore) *fakeBookingStore {
	return &fakeBookingStore{bookings: make(map[uuid.UUID]booking.Booking), bikes: bikes}
}

func (s *fakeBookingStore) Create(_ context.Context, b *booking.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.Status = booking.StatusPending
	b.PaymentStatus = booking.PaymentUnpaid
	b.CreatedAt = time.Now()
	s.bookings[b.ID] = *b
	return nil
}

func (s *fakeBookingStore) GetByID(_ context.Context, id uuid.UUID) (booking.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return booking.Booking{}, booking.ErrNotFound
	}
	return b, nil
}

func (s *fakeBookingStore) GetByUserID(_ context.Context, userID uuid.UUID) ([]booking.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []booking.Booking
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeBookingStore) GetAll(_ context.Context) ([]booking.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]booking.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeBookingStore) Pay(_ context.Context, id, userID uuid.UUID, paymentID string, amount float64) (booking.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return booking.Booking{}, booking.ErrNotFound
	}
	if b.UserID != userID {
		return booking.Booking{}, booking.ErrNotAuthorized
	}
	if b.Status != booking.StatusPending {
		return booking.Booking{}, booking.ErrAlreadyPaid
	}
	b.Status = booking.StatusConfirmed
	b.PaymentStatus = booking.PaymentPaid
	b.PaymentID = sql.NullString{String: paymentID, Valid: true}
	b.PaymentAmount = sql.NullFloat64{Float64: amount, Valid: true}
	b.PaymentDate = sql.NullTime{Time: time.Now(), Valid: true}
	s.bookings[id] = b
	return b, nil
}

func (s *fakeBookingStore) OverrideStatus(_ context.Context, id uuid.UUID, status booking.Status) (booking.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return booking.Booking{}, booking.ErrNotFound
	}
	b.Status = status
	s.bookings[id] = b
	return b, nil
}

func (s *fakeBookingStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return booking.ErrNotFound
	}
	delete(s.bookings, id)
	return nil
}

func (s *fakeBookingStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings), nil
}

func (s *fakeBookingStore) CountByStatus(_ context.Context, status booking.Status) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.bookings {
		if b.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *fakeBookingStore) TotalRevenue(_ context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0.0
	for _, b := range s.bookings {
		if booking.IsPaidMarker(string(b.PaymentStatus)) {
			total += b.TotalPrice
		}
	}
	return total, nil
}

func (s *fakeBookingStore) Recent(ctx context.Context, limit int) ([]booking.RecentDetail, error) {
	all, _ := s.GetAll(ctx)
	if len(all) > limit {
		all = all[:limit]
	}
	out := make([]booking.RecentDetail, 0, len(all))
	for _, b := range all {
		out = append(out, booking.RecentDetail{Booking: b})
	}
	return out, nil
}

func (s *fakeBookingStore) RevenueByMonth(_ context.Context, months int) ([]booking.MonthRevenue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	buckets := make(map[time.Time]float64)
	for _, b := range s.bookings {
		if !booking.IsPaidMarker(string(b.PaymentStatus)) {
			continue
		}
		month := time.Date(b.CreatedAt.Year(), b.CreatedAt.Month(), 1, 0, 0, 0, 0, time.UTC)
		buckets[month] += b.TotalPrice
	}
	out := make([]booking.MonthRevenue, 0, len(buckets))
	for month, revenue := range buckets {
		out = append(out, booking.MonthRevenue{Month: month, Revenue: revenue})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	if len(out) > months {
		out = out[len(out)-months:]
	}
	return out, nil
}

func (s *fakeBookingStore) TopBikes(_ context.Context, limit int) ([]booking.BikeUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byBike := make(map[uuid.UUID]*booking.BikeUsage)
	for _, b := range s.bookings {
		usage, ok := byBike[b.BikeID]
		if !ok {
			usage = &booking.BikeUsage{BikeID: b.BikeID}
			byBike[b.BikeID] = usage
		}
		usage.Bookings++
		if booking.IsPaidMarker(string(b.PaymentStatus)) {
			usage.Revenue += b.TotalPrice
		}
	}
	out := make([]booking.BikeUsage, 0, len(byBike))
	for _, usage := range byBike {
		out = append(out, *usage)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bookings > out[j].Bookings })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeBookingStore) OwnerEarnings(_ context.Context, ownerID uuid.UUID) (booking.Earnings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var e booking.Earnings
	for _, b := range s.bookings {
		owned, err := s.bikes.GetBikeForOwner(context.Background(), b.BikeID, ownerID)
		if err != nil {
			continue
		}
		if owned.OwnerID == ownerID && booking.IsPaidMarker(string(b.PaymentStatus)) {
			e.TotalEarnings += b.TotalPrice
			e.TotalRentals++
		}
	}
	return e, nil
}

func (s *fakeBookingStore) SummaryByStatus(_ context.Context) ([]booking.StatusAggregate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byStatus := make(map[booking.Status]*booking.StatusAggregate)
	for _, b := range s.bookings {
		agg, ok := byStatus[b.Status]
		if !ok {
			agg = &booking.StatusAggregate{Status: b.Status}
			byStatus[b.Status] = agg
		}
		agg.Count++
		agg.Revenue += b.TotalPrice
	}
	out := make([]booking.StatusAggregate, 0, len(byStatus))
	for _, agg := range byStatus {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out, nil
}
