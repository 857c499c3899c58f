package app

import (
	"fmt"
	"strings"
	"time"

	"tarasamar/internal/catalog"
	"tarasamar/internal/domain"
)

/********** tiny helpers **********/

func ptrStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	return ptrStr(strings.TrimSpace(*p))
}

// anyOrNil keeps JSON metadata explicit about absent values.
func anyOrNil[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

/********** form -> booking **********/

func normalizeForm(f domain.BookingForm) domain.BookingForm {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Message = strings.TrimSpace(f.Message)
	f.SelectedDate = trimPtr(f.SelectedDate)
	f.PackageName = trimPtr(f.PackageName)
	return f
}

func newBookingRequest(id string, f domain.BookingForm, pkg *catalog.Package, now time.Time) domain.BookingRequest {
	b := domain.BookingRequest{
		ID:           id,
		Email:        f.Email,
		FullName:     f.FullName,
		Phone:        f.Phone,
		Message:      ptrStr(f.Message),
		Guests:       f.Guests,
		SelectedDate: f.SelectedDate,
		Status:       domain.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	switch {
	case pkg != nil:
		pid, name := pkg.ID, pkg.Name
		b.PackageID = &pid
		b.PackageName = &name
	case f.PackageName != nil:
		b.PackageName = f.PackageName
	}
	return b
}

/********** booking -> activity / notification **********/

func bookingRequestEntry(id string, b domain.BookingRequest, now time.Time) domain.ActivityLogEntry {
	email := b.Email
	desc := fmt.Sprintf("Booking request submitted for %s.", b.PackageLabel())
	return domain.ActivityLogEntry{
		ID:          id,
		Email:       &email,
		EventType:   domain.EventBookingRequest,
		Description: &desc,
		Metadata: map[string]any{
			"guests":        anyOrNil(b.Guests),
			"selected_date": anyOrNil(b.SelectedDate),
			"package_id":    anyOrNil(b.PackageID),
			"package_name":  anyOrNil(b.PackageName),
		},
		CreatedAt: now,
	}
}

func confirmationData(b domain.BookingRequest) map[string]any {
	return map[string]any{
		"booking_id":    b.ID,
		"package_name":  anyOrNil(b.PackageName),
		"guests":        anyOrNil(b.Guests),
		"selected_date": anyOrNil(b.SelectedDate),
	}
}

func bookingConfirmedEntry(id string, b domain.BookingRequest, now time.Time) domain.ActivityLogEntry {
	email := b.Email
	desc := fmt.Sprintf("Admin confirmed booking for %s.", b.PackageLabel())
	return domain.ActivityLogEntry{
		ID:          id,
		Email:       &email,
		EventType:   domain.EventBookingConfirmed,
		Description: &desc,
		Metadata:    confirmationData(b),
		CreatedAt:   now,
	}
}

func bookingConfirmedNotification(id string, b domain.BookingRequest, now time.Time) domain.Notification {
	return domain.Notification{
		ID:    id,
		Email: b.Email,
		Type:  domain.NotificationBookingConfirmed,
		Title: "Your booking has been confirmed",
		Message: fmt.Sprintf("Your booking request for %s has been confirmed. ", b.PackageLabel()) +
			"The resort will contact you soon to finalize the details.",
		Data:      confirmationData(b),
		CreatedAt: now,
	}
}

func authEntry(id string, typ domain.EventType, userID *string, email, page string, now time.Time) domain.ActivityLogEntry {
	desc := "User signed in."
	if typ == domain.EventSignUp {
		desc = "User created an account."
	}
	return domain.ActivityLogEntry{
		ID:          id,
		UserID:      userID,
		Email:       ptrStr(email),
		EventType:   typ,
		Description: &desc,
		Metadata:    map[string]any{"source": "api", "page": page},
		CreatedAt:   now,
	}
}

/********** cache keys **********/

func statusKey(email string) string        { return "status:" + email }
func notificationsKey(email string) string { return "notifications:" + email }
