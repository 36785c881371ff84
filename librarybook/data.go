package librarybook

import (
	"fmt"
	"time"
)

// Library is an entry in the building select
type Library struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Room is a bookable room and its free time for one day
type Room struct {
	Library     string        `json:"library"`
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Seats       int           `json:"seats"`
	Available   *Availability `json:"-"`
}

// BookingRequest is a room wanted at Start for Duration
type BookingRequest struct {
	Library  string
	Room     string
	Start    time.Time
	Duration time.Duration
}

// Booking is a booking listed on the my bookings page
type Booking struct {
	ID       int           `json:"id"`
	Library  string        `json:"library"`
	Room     string        `json:"room"`
	Start    time.Time     `json:"start"`
	Duration time.Duration `json:"duration"`
}

// MaxDuration is the longest booking the portal accepts
const MaxDuration = 120 * time.Minute

// DurationStep is the booking period granularity
const DurationStep = 15 * time.Minute

// Validate checks the duration of the request
func (r BookingRequest) Validate() error {
	if r.Duration <= 0 || r.Duration > MaxDuration || r.Duration%DurationStep != 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidDuration, r.Duration)
	}
	return nil
}

// Window returns the request as fractional hours [start, end)
func (r BookingRequest) Window() (float64, float64) {
	start := hourFraction(r.Start.Hour(), r.Start.Minute())
	return start, start + r.Duration.Hours()
}

// End returns when the booking finishes
func (b Booking) End() time.Time {
	return b.Start.Add(b.Duration)
}
