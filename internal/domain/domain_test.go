package domain

import (
	"testing"
	"time"
)

func TestParseEventFilter(t *testing.T) {
	for in, want := range map[string]EventType{
		"":                  "",
		"all":               "",
		"signin":            EventSignIn,
		"booking_confirmed": EventBookingConfirmed,
	} {
		got, ok := ParseEventFilter(in)
		if !ok || got != want {
			t.Fatalf("%q: got %q %v", in, got, ok)
		}
	}
	if _, ok := ParseEventFilter("ALL"); ok {
		t.Fatal("filter values are case-sensitive")
	}
}

func TestUnreadCountAndLabel(t *testing.T) {
	now := time.Now()
	ns := []Notification{{ID: "1"}, {ID: "2", ReadAt: &now}, {ID: "3"}}
	if c := UnreadCount(ns); c != 2 {
		t.Fatalf("unread=%d", c)
	}
	if l := (BookingRequest{}).PackageLabel(); l != "a package" {
		t.Fatalf("label=%q", l)
	}
	name := "Bangon Falls Trek"
	if l := (BookingRequest{PackageName: &name}).PackageLabel(); l != name {
		t.Fatalf("label=%q", l)
	}
}
