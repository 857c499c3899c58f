package domain

import "time"

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
)

type BookingRequest struct {
	ID           string        `json:"id"`
	Email        string        `json:"email"`
	FullName     string        `json:"full_name"`
	Phone        string        `json:"phone"`
	Message      *string       `json:"message"`
	PackageID    *int          `json:"package_id"`
	PackageName  *string       `json:"package_name"`
	Guests       *int          `json:"guests"`
	SelectedDate *string       `json:"selected_date"` // YYYY-MM-DD
	Status       BookingStatus `json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// BookingForm is what a guest submits. Only presence is checked here;
// email and phone formats are left to the caller. PackageID wins over
// PackageName when both are set.
type BookingForm struct {
	FullName     string  `json:"full_name" validate:"required"`
	Email        string  `json:"email" validate:"required"`
	Phone        string  `json:"phone" validate:"required"`
	Message      string  `json:"message"`
	Guests       *int    `json:"guests"`
	SelectedDate *string `json:"selected_date"`
	PackageID    *int    `json:"package_id"`
	PackageName  *string `json:"package_name"`
}

// PackageLabel is the name used in log and notification copy.
func (b BookingRequest) PackageLabel() string {
	if b.PackageName == nil || *b.PackageName == "" {
		return "a package"
	}
	return *b.PackageName
}
