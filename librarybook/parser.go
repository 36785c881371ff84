package librarybook

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var (
	unavailableRex = regexp.MustCompile(`Not available: (\d{1,2}):(\d\d) - (\d{1,2}):(\d\d)`)
	seatsRex       = regexp.MustCompile(`Seats (\d+)`)
)

const (
	dayLayout        = "2006-01-02"
	bookingDayLayout = "Monday, 2 January 2006"
	clockLayout      = "15:04"
)

func parseLibraries(doc *goquery.Document) []Library {
	var libraries []Library
	doc.Find("select[name='building'] option").Each(func(i int, s *goquery.Selection) {
		id := s.AttrOr("value", "")
		if id == "" {
			return
		}
		libraries = append(libraries, Library{ID: id, Name: strings.TrimSpace(s.Text())})
	})

	return libraries
}

func parseDates(doc *goquery.Document) ([]time.Time, error) {
	var dates []time.Time
	var err error
	doc.Find("select[name='bday'] option").EachWithBreak(func(i int, s *goquery.Selection) bool {
		var d time.Time
		d, err = time.ParseInLocation(dayLayout, s.AttrOr("value", ""), time.Local)
		if err != nil {
			return false
		}
		dates = append(dates, d)
		return true
	})
	if err != nil {
		return nil, err
	}

	return dates, nil
}

func optionValue(s *goquery.Selection) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s.AttrOr("value", "")))
}

// parseOpening returns the opening hours from the hour and minute selects.
// open is false when the selects are there but have nothing to select, ie
// the library is closed.
func parseOpening(doc *goquery.Document) (lower float64, upper float64, open bool, err error) {
	if doc.Find("select#bhour").Length() == 0 || doc.Find("select#bminute").Length() == 0 {
		return 0, 0, false, ErrMissingBookingForm
	}
	hours := doc.Find("select#bhour option")
	minutes := doc.Find("select#bminute option")
	if hours.Length() == 0 || minutes.Length() == 0 {
		return 0, 0, false, nil
	}
	var v [4]int
	for i, s := range []*goquery.Selection{hours.First(), minutes.First(), hours.Last(), minutes.Last()} {
		v[i], err = optionValue(s)
		if err != nil {
			return 0, 0, false, err
		}
	}

	return hourFraction(v[0], v[1]), hourFraction(v[2], v[3]), true, nil
}

// parseUnavailable matches "Not available: HH:MM - HH:MM"
func parseUnavailable(str string) (start float64, end float64, ok bool) {
	m := unavailableRex.FindStringSubmatch(str)
	if m == nil {
		return 0, 0, false
	}
	var v [4]int
	for i := range v {
		v[i], _ = strconv.Atoi(m[i+1])
	}

	return hourFraction(v[0], v[1]), hourFraction(v[2], v[3]), true
}

// parseSeats returns N from "Seats N" or -1
func parseSeats(str string) int {
	m := seatsRex.FindStringSubmatch(str)
	if m == nil {
		return -1
	}
	seats, err := strconv.Atoi(m[1])
	if err != nil {
		return -1
	}
	return seats
}

// parseRoomTimes parses an availability page. Every room_no input is
// followed by an element holding name and description and then an element
// holding the unavailable times.
func parseRoomTimes(library string, doc *goquery.Document) ([]Room, error) {
	lower, upper, open, err := parseOpening(doc)
	if err != nil || !open {
		return nil, err
	}
	var rooms []Room
	doc.Find("input[name='room_no']").EachWithBreak(func(i int, s *goquery.Selection) bool {
		room := Room{}
		room.Library = library
		room.ID = s.AttrOr("value", "")
		info := s.Next()
		room.Name = strings.TrimSpace(info.Children().Eq(0).Text())
		room.Description = strings.TrimSpace(info.Children().Eq(2).Text())
		room.Seats = parseSeats(room.Description)
		room.Available, err = NewAvailability(lower, upper)
		if err != nil {
			return false
		}
		info.Next().Children().Each(func(j int, u *goquery.Selection) {
			if start, end, ok := parseUnavailable(u.Text()); ok {
				room.Available.Chop(start, end)
			}
		})
		rooms = append(rooms, room)
		return true
	})
	if err != nil {
		return nil, err
	}

	return rooms, nil
}

// parseBookingResponse returns the booking id from the confirmation table
func parseBookingResponse(body []byte) (int, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	if e := doc.Find("div.error"); e.Length() > 0 {
		return 0, &BookingRejectedError{Message: strings.TrimSpace(e.First().Text())}
	}
	cells := doc.Find("table td")
	if cells.Length() < 5 {
		return 0, &UnexpectedResponseError{Body: string(body)}
	}
	id, err := strconv.Atoi(strings.TrimSpace(cells.Eq(4).Text()))
	if err != nil {
		return 0, &UnexpectedResponseError{Body: string(body)}
	}

	return id, nil
}

// parseDateTimeRange parses "Wednesday, 27 July 2016: 23:00 - 23:15" into
// a start time and a duration
func parseDateTimeRange(str string) (time.Time, time.Duration, error) {
	idx := strings.Index(str, ":")
	if idx < 0 {
		return time.Time{}, 0, &time.ParseError{Layout: bookingDayLayout + ": 15:04 - 15:04", Value: str}
	}
	day, err := time.ParseInLocation(bookingDayLayout, strings.TrimSpace(str[:idx]), time.Local)
	if err != nil {
		return time.Time{}, 0, err
	}
	clocks := strings.SplitN(str[idx+1:], "-", 2)
	if len(clocks) != 2 {
		return time.Time{}, 0, &time.ParseError{Layout: "15:04 - 15:04", Value: str[idx+1:]}
	}
	start, err := time.Parse(clockLayout, strings.TrimSpace(clocks[0]))
	if err != nil {
		return time.Time{}, 0, err
	}
	finish, err := time.Parse(clockLayout, strings.TrimSpace(clocks[1]))
	if err != nil {
		return time.Time{}, 0, err
	}
	duration := finish.Sub(start)
	if duration < 0 {
		// ends after midnight
		duration += 24 * time.Hour
	}
	ret := time.Date(day.Year(), day.Month(), day.Day(), start.Hour(), start.Minute(), 0, 0, time.Local)

	return ret, duration, nil
}

func parseBookings(doc *goquery.Document) ([]Booking, error) {
	table := doc.Find("table#mybookings")
	if table.Length() == 0 {
		return nil, ErrMissingBookingsTable
	}
	var bookings []Booking
	var err error
	table.Find("tr").EachWithBreak(func(i int, s *goquery.Selection) bool {
		cells := s.Find("td")
		if cells.Length() < 4 {
			// header
			return true
		}
		booking := Booking{}
		booking.ID, err = strconv.Atoi(strings.TrimSpace(cells.Eq(0).Text()))
		if err != nil {
			return false
		}
		booking.Library = strings.TrimSpace(cells.Eq(1).Text())
		booking.Room = strings.TrimSpace(cells.Eq(2).Text())
		booking.Start, booking.Duration, err = parseDateTimeRange(strings.TrimSpace(cells.Eq(3).Text()))
		if err != nil {
			return false
		}
		bookings = append(bookings, booking)
		return true
	})
	if err != nil {
		return nil, err
	}

	return bookings, nil
}
