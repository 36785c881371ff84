package librarybook

import (
	"errors"
	"fmt"
)

// ErrInvalidRange is returned for interval bounds where lower >= upper
var ErrInvalidRange = errors.New("invalid range")

// ErrInvalidDuration is returned for booking durations that aren't a
// positive multiple of 15 minutes up to 120 minutes
var ErrInvalidDuration = errors.New("duration must be a multiple of 15 minutes between 15 and 120")

// ErrMissingBookingsTable is returned when the bookings page lacks the
// bookings table, usually because the session isn't logged in
var ErrMissingBookingsTable = errors.New("can't find bookings table on page")

// ErrMissingBookingForm is returned when an availability page has no hour
// and minute selects, eg after the session expired
var ErrMissingBookingForm = errors.New("can't find booking form on page")

// ErrLoginFailed is returned when the logout button is missing after login
var ErrLoginFailed = errors.New("can't find logout button on page")

// ErrUnknownLibrary is returned for a library id not in the building select
var ErrUnknownLibrary = errors.New("unknown library")

// ErrDateNotBookable is returned for a date not in the booking day select
var ErrDateNotBookable = errors.New("date can't be booked")

// BookingRejectedError holds the message the portal showed when it refused
// a booking
type BookingRejectedError struct {
	Message string
}

func (e *BookingRejectedError) Error() string {
	return "booking rejected: " + e.Message
}

// UnexpectedResponseError is returned when a booking response has neither
// a confirmation table nor an error message. Body is the raw page and
// DumpFile where it was saved, if anywhere.
type UnexpectedResponseError struct {
	Body     string
	DumpFile string
}

func (e *UnexpectedResponseError) Error() string {
	if e.DumpFile != "" {
		return fmt.Sprintf("unexpected booking response (saved to %s)", e.DumpFile)
	}
	return fmt.Sprintf("unexpected booking response (%d bytes)", len(e.Body))
}
