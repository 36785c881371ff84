/*
librarybook lists and books group study rooms at the ANU libraries

	librarybook --libraries
	librarybook --rooms -L 1 -D 2016-07-26
	librarybook --free -L 1 -L 2 -D 2016-07-26:14:00 -T 60
	librarybook --book -L 1 -D 2016-07-26:14:00 -T 60 --watch 30s
	librarybook --bookings
*/
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/andersbetner/anuautomation/librarybook"
	"github.com/andersbetner/anuautomation/util"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

// stringsFlag is a flag that can be given more than once
type stringsFlag []string

func (s *stringsFlag) String() string {
	return strings.Join(*s, ",")
}

func (s *stringsFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

var (
	listLibraries     bool
	listDates         bool
	listRooms         bool
	listFree          bool
	listBookings      bool
	book              bool
	verbose           bool
	username          string
	roomID            string
	libraries         stringsFlag
	datetimes         stringsFlag
	duration          int
	watch             time.Duration
	dateLayouts       = []string{"2006-01-02:15:04", "2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"}
	promUpdateCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ab_sensor_updates_total",
			Help: "How many times this item has been updated.",
		},
		[]string{"status", "type", "topic"},
	)
	promFreeRooms = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ab_librarybook_free_rooms",
			Help: "Rooms free for the requested time.",
		}, []string{"topic"},
	)
)

const (
	displayFrom = 7.0
	displayTo   = 22.0
)

func parseDateTime(str string) (time.Time, error) {
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, str, time.Local)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("can't parse date %q, eg 2016-07-26:14:00", str)
}

func init() {
	prometheus.MustRegister(promUpdateCounter)
	prometheus.MustRegister(promFreeRooms)

	flag.BoolVar(&listLibraries, "libraries", false, "list libraries available")
	flag.BoolVar(&listDates, "dates", false, "list dates that can be booked on")
	flag.BoolVar(&listRooms, "rooms", false, "list rooms of the libraries, defaults to today")
	flag.BoolVar(&listFree, "free", false, "only list rooms that are free for the whole duration")
	flag.BoolVar(&listBookings, "bookings", false, "list my bookings")
	flag.BoolVar(&book, "book", false, "book a room, --room or the first free one")
	flag.BoolVar(&verbose, "verbose", false, "debug output")
	flag.StringVar(&username, "username", "", "Wattle username to log in with, default from config")
	flag.StringVar(&roomID, "room", "", "room number to book")
	flag.Var(&libraries, "L", "id of the library the room is in, may be repeated")
	flag.Var(&libraries, "library", "same as -L")
	flag.Var(&datetimes, "D", "date and time of the booking eg -D 2016-07-26:14:00, may be repeated")
	flag.Var(&datetimes, "datetime", "same as -D")
	flag.IntVar(&duration, "T", 60, "duration in minutes, multiple of 15 up to 120")
	flag.IntVar(&duration, "duration", 60, "same as -T")
	flag.DurationVar(&watch, "watch", 0, "with --book, retry at this interval until a room is booked eg 30s")
	flag.Parse()

	log.SetLevel(log.InfoLevel)
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
	exit := false
	if (listRooms || listFree || book) && len(libraries) == 0 {
		os.Stderr.WriteString("-L missing, need a library eg -L 1 (see --libraries)\n")
		exit = true
	}
	if (listFree || book) && len(datetimes) == 0 {
		os.Stderr.WriteString("-D missing eg -D 2016-07-26:14:00\n")
		exit = true
	}
	if watch < 0 {
		os.Stderr.WriteString("--watch must be > 0\n")
		exit = true
	}
	if exit {
		os.Exit(1)
	}
}

func requests() ([]librarybook.BookingRequest, error) {
	var ret []librarybook.BookingRequest
	if len(datetimes) == 0 {
		datetimes = append(datetimes, time.Now().Format("2006-01-02"))
	}
	for _, d := range datetimes {
		start, err := parseDateTime(d)
		if err != nil {
			return nil, err
		}
		req := librarybook.BookingRequest{}
		req.Start = start
		req.Duration = time.Duration(duration) * time.Minute
		if len(libraries) > 0 {
			req.Library = libraries[0]
		}
		req.Room = roomID
		ret = append(ret, req)
	}

	return ret, nil
}

func render(a *librarybook.Availability) string {
	var b strings.Builder
	for _, free := range a.Render(15, displayFrom, displayTo) {
		if free {
			b.WriteByte('.')
		} else {
			b.WriteByte('#')
		}
	}
	return b.String()
}

func printRooms(rooms []librarybook.Room) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Library", "Room", "Name", "Seats", "Free", "07-22"})
	for _, r := range rooms {
		seats := ""
		if r.Seats >= 0 {
			seats = strconv.Itoa(r.Seats)
		}
		table.Append([]string{r.Library, r.ID, r.Name, seats, r.Available.String(), render(r.Available)})
	}
	table.Render()
}

func printLibraries(c *librarybook.Client) error {
	libs, err := c.Libraries()
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"id", "Library Name"})
	for _, l := range libs {
		table.Append([]string{l.ID, l.Name})
	}
	table.Render()

	return nil
}

func printDates(c *librarybook.Client) error {
	dates, err := c.AvailableDates()
	if err != nil {
		return err
	}
	fmt.Println("Dates that can be booked:")
	for _, d := range dates {
		fmt.Println(" * ", d.Format("2006-01-02 Monday"))
	}

	return nil
}

func printBookings(c *librarybook.Client) error {
	bookings, err := c.MyBookings()
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"id", "Library", "Room", "Start", "Minutes"})
	for _, b := range bookings {
		table.Append([]string{strconv.Itoa(b.ID), b.Library, b.Room,
			b.Start.Format("2006-01-02 15:04"), strconv.Itoa(int(b.Duration / time.Minute))})
	}
	table.Render()

	return nil
}

// bookFirstFree books the first free room, moving on to the next room when
// the site turns a booking down
func bookFirstFree(c *librarybook.Client, req librarybook.BookingRequest) (int, error) {
	if req.Room != "" {
		return c.SubmitBooking(req)
	}
	rooms, err := c.FreeRooms(libraries, req)
	if err != nil {
		return 0, err
	}
	promFreeRooms.WithLabelValues(req.Start.Format("2006-01-02T15:04")).Set(float64(len(rooms)))
	var rejected *librarybook.BookingRejectedError
	for _, r := range rooms {
		req.Library = r.Library
		req.Room = r.ID
		id, err := c.SubmitBooking(req)
		if errors.As(err, &rejected) {
			log.WithFields(log.Fields{"library": r.Library,
				"room":  r.ID,
				"error": rejected.Message}).Warn("Booking rejected")
			continue
		}
		return id, err
	}

	return 0, errors.New("no free room")
}

func bookAll(c *librarybook.Client, notifier *util.Notifier, reqs []librarybook.BookingRequest) error {
	for _, req := range reqs {
		if err := req.Validate(); err != nil {
			return err
		}
		if err := c.CheckDate(req.Start); err != nil {
			return err
		}
		topic := req.Start.Format("2006-01-02T15:04")
		for {
			id, err := bookFirstFree(c, req)
			if err == nil {
				promUpdateCounter.WithLabelValues("200", "librarybook", "book").Inc()
				notifier.Notify("librarybook/booked",
					fmt.Sprintf("Booked %s for %d minutes, booking id %d", topic, duration, id))
				break
			}
			promUpdateCounter.WithLabelValues("500", "librarybook", "book").Inc()
			var unexpected *librarybook.UnexpectedResponseError
			if errors.As(err, &unexpected) || errors.Is(err, librarybook.ErrMissingBookingForm) || watch == 0 {
				return err
			}
			log.WithFields(log.Fields{"error": err,
				"type":  "librarybook",
				"topic": topic}).Info("No booking yet, waiting")
			time.Sleep(watch)
		}
	}

	return nil
}

func fail(err error, msg string) {
	log.WithFields(log.Fields{"error": err,
		"type": "librarybook"}).Error(msg)
	os.Exit(1)
}

func main() {
	cfg, err := util.LoadConfig()
	if err != nil {
		fail(err, "Can't read config")
	}
	if username != "" {
		cfg.Username = username
	}
	password, err := cfg.ResolvePassword()
	if err != nil {
		fail(err, "Can't find password")
	}
	if cfg.MetricsAddr != "" {
		go util.Webserver("prometheus", cfg.MetricsAddr, util.MetricsMux())
	}
	host, err := os.Hostname()
	if err != nil {
		host = "librarybook"
	}
	notifier := util.NewNotifier(cfg.MqttHost, "librarybook-"+host)
	if err = notifier.Connect(); err != nil {
		log.WithField("error", err).Error("Can't connect to mqtt server")
	}
	defer notifier.Disconnect()
	util.ExitOnInterrupt("librarybook", notifier.Disconnect)

	c, err := librarybook.NewClient(cfg.Username, password)
	if err != nil {
		fail(err, "Error create client")
	}
	c.DumpDir = cfg.DumpDir
	if err = c.Login(); err != nil {
		fail(err, "Error login")
	}
	for _, l := range libraries {
		if _, err = c.LibraryName(l); err != nil {
			fail(err, "Error library")
		}
	}

	if listLibraries {
		if err = printLibraries(c); err != nil {
			fail(err, "Error listing libraries")
		}
	}
	if listDates {
		if err = printDates(c); err != nil {
			fail(err, "Error listing dates")
		}
	}

	reqs, err := requests()
	if err != nil {
		fail(err, "Error date")
	}
	if listRooms && !listFree {
		for _, req := range reqs {
			var rooms []librarybook.Room
			for _, l := range libraries {
				r, err := c.RoomTimes(l, req.Start)
				if err != nil {
					fail(err, "Error getting rooms")
				}
				if len(r) == 0 {
					log.WithFields(log.Fields{"library": l, "date": req.Start.Format("2006-01-02")}).Info("Library closed")
				}
				rooms = append(rooms, r...)
			}
			printRooms(rooms)
		}
	}
	if listFree {
		for _, req := range reqs {
			if err = req.Validate(); err != nil {
				fail(err, "Error duration")
			}
			rooms, err := c.FreeRooms(libraries, req)
			if err != nil {
				fail(err, "Error getting rooms")
			}
			printRooms(rooms)
		}
	}
	if book {
		if err = bookAll(c, notifier, reqs); err != nil {
			var rejected *librarybook.BookingRejectedError
			if errors.As(err, &rejected) {
				fail(err, rejected.Message)
			}
			fail(err, "Error booking")
		}
	}
	if listBookings {
		if err = printBookings(c); err != nil {
			fail(err, "Error listing bookings")
		}
	}
}
