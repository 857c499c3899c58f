package app

import (
	"context"
	"fmt"
	"time"

	"tarasamar/internal/adapters/observability"
	"tarasamar/internal/catalog"
	"tarasamar/internal/domain"
)

// PackageLookup resolves a package selection on the booking form.
type PackageLookup interface {
	Package(id int) (catalog.Package, bool)
	PackageByName(name string) (catalog.Package, bool)
}

type SubmitResult struct {
	Booking domain.BookingRequest
	Outcome
}

type ConfirmResult struct {
	Booking domain.BookingRequest
	Outcome
}

type BookingService struct {
	base
	bookings domain.BookingRepository
	logs     domain.ActivityLogRepository
	notes    domain.NotificationRepository
	packages PackageLookup
	authz    domain.Authorizer
}

func NewBookingService(
	bookings domain.BookingRepository,
	logs domain.ActivityLogRepository,
	notes domain.NotificationRepository,
	packages PackageLookup,
	authz domain.Authorizer,
	cache domain.Cache,
	cacheTTL time.Duration,
	opts ...Option,
) *BookingService {
	return &BookingService{
		base:     newBase(cache, cacheTTL, opts),
		bookings: bookings,
		logs:     logs,
		notes:    notes,
		packages: packages,
		authz:    authz,
	}
}

// Submit stores a pending booking request and then logs it. A failed log
// write is reported in the result and does not undo the booking.
func (s *BookingService) Submit(ctx context.Context, form domain.BookingForm) (SubmitResult, error) {
	form = normalizeForm(form)
	if err := validateStruct(form); err != nil {
		return SubmitResult{}, err
	}

	var pkg *catalog.Package
	switch {
	case form.PackageID != nil:
		p, ok := s.packages.Package(*form.PackageID)
		if !ok {
			return SubmitResult{}, fmt.Errorf("%w: unknown package %d", domain.ErrValidation, *form.PackageID)
		}
		pkg = &p
	case form.PackageName != nil:
		// names outside the catalog (resort pages) are stored as given
		if p, ok := s.packages.PackageByName(*form.PackageName); ok {
			pkg = &p
		}
	}

	now := s.now()
	b := newBookingRequest(s.newID(), form, pkg, now)
	if err := s.bookings.InsertBooking(ctx, b); err != nil {
		observability.ObserveBooking("submit_failed")
		return SubmitResult{}, fmt.Errorf("insert booking: %w", err)
	}
	observability.ObserveBooking("submitted")
	s.invalidate(ctx, statusKey(b.Email))

	res := SubmitResult{Booking: b}
	if err := s.logs.InsertActivity(ctx, bookingRequestEntry(s.newID(), b, now)); err != nil {
		res.record(EffectActivityLog, err, b.ID)
	}
	return res, nil
}

// Confirm moves a booking to confirmed, then logs the confirmation and
// notifies the guest. Only the status update can fail the call.
func (s *BookingService) Confirm(ctx context.Context, caller domain.User, id string) (ConfirmResult, error) {
	if s.authz == nil || !s.authz.CanAdminister(caller) {
		return ConfirmResult{}, domain.ErrForbidden
	}

	b, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return ConfirmResult{}, fmt.Errorf("get booking %s: %w", id, err)
	}

	now := s.now()
	if err := s.bookings.UpdateBookingStatus(ctx, id, domain.StatusConfirmed, now); err != nil {
		observability.ObserveBooking("confirm_failed")
		return ConfirmResult{}, fmt.Errorf("confirm booking %s: %w", id, err)
	}
	observability.ObserveBooking("confirmed")
	b.Status = domain.StatusConfirmed
	b.UpdatedAt = now
	s.invalidate(ctx, statusKey(b.Email))

	res := ConfirmResult{Booking: b}
	if err := s.logs.InsertActivity(ctx, bookingConfirmedEntry(s.newID(), b, now)); err != nil {
		res.record(EffectActivityLog, err, b.ID)
	}
	// invalidate only once the insert has landed
	err = s.notes.InsertNotification(ctx, bookingConfirmedNotification(s.newID(), b, now))
	s.invalidate(ctx, notificationsKey(b.Email))
	if err != nil {
		res.record(EffectNotification, err, b.ID)
	}
	return res, nil
}
