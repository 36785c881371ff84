package librarybook

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andersbetner/anuautomation/util"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/publicsuffix"
)

// Client holds a session with the library room booking site
type Client struct {
	user     string
	password string
	client   *http.Client
	baseURL  string
	homepage []byte
	// DumpDir is where unexpected booking responses are saved, empty
	// disables saving
	DumpDir string
}

// NewClient creates a new Client
func NewClient(user string, password string) (*Client, error) {
	c := &Client{}
	c.baseURL = "https://library-admin.anu.edu.au/book-a-library-group-study-room/"
	c.user = user
	c.password = password

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return c, err
	}

	c.client = &http.Client{
		Jar: jar,
	}

	return c, nil
}

func (c *Client) action() string {
	return c.baseURL + "index.html"
}

func (c *Client) post(form url.Values) ([]byte, error) {
	resp, err := c.client.PostForm(c.action(), form)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %s", c.action(), resp.Status)
	}

	return io.ReadAll(resp.Body)
}

func (c *Client) document(form url.Values) (*goquery.Document, error) {
	body, err := c.post(form)
	if err != nil {
		return nil, err
	}

	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

func (c *Client) homeDocument() (*goquery.Document, error) {
	if c.homepage == nil {
		return nil, ErrLoginFailed
	}

	return goquery.NewDocumentFromReader(bytes.NewReader(c.homepage))
}

// Login performs a login and keeps the landing page, it holds the library
// and date selects
func (c *Client) Login() error {
	log.WithField("user", c.user).Debug("Logging into library booking")
	post := url.Values{}
	post.Set("inp_uid", c.user)
	post.Set("inp_passwd", c.password)
	body, err := c.post(post)
	if err != nil {
		return err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return err
	}
	if doc.Find("input#logout").Length() == 0 {
		return ErrLoginFailed
	}
	c.homepage = body

	return nil
}

// Libraries returns the libraries that have rooms
func (c *Client) Libraries() ([]Library, error) {
	doc, err := c.homeDocument()
	if err != nil {
		return nil, err
	}

	return parseLibraries(doc), nil
}

// AvailableDates returns the dates that can be booked
func (c *Client) AvailableDates() ([]time.Time, error) {
	doc, err := c.homeDocument()
	if err != nil {
		return nil, err
	}

	return parseDates(doc)
}

// LibraryName returns the display name for a library id
func (c *Client) LibraryName(id string) (string, error) {
	libraries, err := c.Libraries()
	if err != nil {
		return "", err
	}
	for _, l := range libraries {
		if l.ID == id {
			return l.Name, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrUnknownLibrary, id)
}

// CheckDate returns ErrDateNotBookable unless the day of date is in the
// booking day select
func (c *Client) CheckDate(date time.Time) error {
	dates, err := c.AvailableDates()
	if err != nil {
		return err
	}
	day := date.Format(dayLayout)
	for _, d := range dates {
		if d.Format(dayLayout) == day {
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrDateNotBookable, day)
}

// RoomTimes returns the rooms of a library and their free time on date.
// A closed library gives no rooms.
func (c *Client) RoomTimes(library string, date time.Time) ([]Room, error) {
	log.WithFields(log.Fields{"library": library, "date": date.Format(dayLayout)}).Debug("Getting room times")
	post := url.Values{}
	post.Set("ajax", "1")
	post.Set("building", library)
	post.Set("bday", date.Format(dayLayout))
	post.Set("showBookingsForSelectedBuilding", "1")
	doc, err := c.document(post)
	if err != nil {
		return nil, err
	}

	return parseRoomTimes(library, doc)
}

// FreeRooms returns the rooms in libraries that are free for the whole
// request on the day of req.Start
func (c *Client) FreeRooms(libraries []string, req BookingRequest) ([]Room, error) {
	var ret []Room
	for _, library := range libraries {
		rooms, err := c.RoomTimes(library, req.Start)
		if err != nil {
			return ret, err
		}
		ret = append(ret, FreeRooms(rooms, req)...)
	}

	return ret, nil
}

// SubmitBooking books a room and returns the booking id. A refusal from the
// site is returned as a *BookingRejectedError. Submitting twice may book
// twice.
func (c *Client) SubmitBooking(req BookingRequest) (int, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}
	// the site wants the library name, not the id
	name, err := c.LibraryName(req.Library)
	if err != nil {
		return 0, err
	}
	post := url.Values{}
	post.Set("building", name)
	post.Set("room_no", req.Room)
	post.Set("bday", req.Start.Format(dayLayout))
	post.Set("bhour", strconv.Itoa(req.Start.Hour()))
	post.Set("bminute", fmt.Sprintf("%02d", req.Start.Minute()))
	post.Set("bperiod", strconv.Itoa(int(req.Duration/time.Minute)))
	log.WithFields(log.Fields{
		"library": name,
		"room":    req.Room,
		"start":   req.Start.Format(time.RFC3339),
		"minutes": int(req.Duration / time.Minute)}).Debug("Submitting booking")
	body, err := c.post(post)
	if err != nil {
		return 0, err
	}
	id, err := parseBookingResponse(body)
	if e, ok := err.(*UnexpectedResponseError); ok && c.DumpDir != "" {
		file, dumpErr := util.DumpFile(c.DumpDir, "booking", body)
		if dumpErr != nil {
			log.WithField("error", dumpErr).Error("Can't save booking response")
		}
		e.DumpFile = file
	}

	return id, err
}

// MyBookings returns the bookings of the logged in user
func (c *Client) MyBookings() ([]Booking, error) {
	post := url.Values{}
	post.Set("ajax", "1")
	post.Set("showMyBookings", "1")
	doc, err := c.document(post)
	if err != nil {
		return nil, err
	}

	return parseBookings(doc)
}
