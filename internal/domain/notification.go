package domain

import "time"

const NotificationBookingConfirmed = "booking_confirmed"

type Notification struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
	ReadAt    *time.Time     `json:"read_at"`
}

func (n Notification) Unread() bool { return n.ReadAt == nil }

// UnreadCount is derived from the list, never stored.
func UnreadCount(ns []Notification) int {
	c := 0
	for _, n := range ns {
		if n.Unread() {
			c++
		}
	}
	return c
}
