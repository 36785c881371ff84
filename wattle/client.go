package wattle

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/publicsuffix"
)

// ErrLoginFailed is returned when the page after login has no logout link
var ErrLoginFailed = errors.New("can't find logout link on page")

// ErrNoEchoBlock is returned for a course page without an Echo360 block
var ErrNoEchoBlock = errors.New("can't find echo360 block on course page")

// Client holds a Wattle session. Create it, Login, use it and throw it away.
type Client struct {
	user     string
	password string
	client   *http.Client
	baseURL  string
	homepage []byte
}

// NewClient creates a new Client
func NewClient(user string, password string) (*Client, error) {
	c := &Client{}
	c.baseURL = "https://wattlecourses.anu.edu.au"
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

func read(resp *http.Response, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %s", resp.Request.URL, resp.Status)
	}

	return io.ReadAll(resp.Body)
}

func document(body []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

// GetBody fetches rawurl with the session
func (c *Client) GetBody(rawurl string) ([]byte, error) {
	return read(c.client.Get(rawurl))
}

// PostBody posts form to rawurl with the session
func (c *Client) PostBody(rawurl string, form url.Values) ([]byte, error) {
	return read(c.client.PostForm(rawurl, form))
}

func (c *Client) getDocument(rawurl string) (*goquery.Document, error) {
	body, err := c.GetBody(rawurl)
	if err != nil {
		return nil, err
	}

	return document(body)
}

// Cookie returns the session cookies for rawurl as a Cookie header value
func (c *Client) Cookie(rawurl string) string {
	u, err := url.Parse(rawurl)
	if err != nil {
		return ""
	}
	var parts []string
	for _, cookie := range c.client.Jar.Cookies(u) {
		parts = append(parts, cookie.Name+"="+cookie.Value)
	}

	return strings.Join(parts, "; ")
}

// Login performs a login and keeps the front page, it lists the courses
func (c *Client) Login() error {
	log.WithField("user", c.user).Info("Logging into Wattle")
	post := url.Values{}
	post.Set("username", c.user)
	post.Set("password", c.password)
	post.Set("rememberusername", "0")
	body, err := c.PostBody(c.baseURL+"/login/index.php", post)
	if err != nil {
		return err
	}
	doc, err := document(body)
	if err != nil {
		return err
	}
	if doc.Find("a[href*='logout.php']").Length() == 0 {
		return ErrLoginFailed
	}
	c.homepage = body

	return nil
}

// Courses returns the courses on the front page
func (c *Client) Courses() ([]Course, error) {
	if c.homepage == nil {
		return nil, ErrLoginFailed
	}
	doc, err := document(c.homepage)
	if err != nil {
		return nil, err
	}

	return parseCourses(doc)
}

func (c *Client) courseURL(courseID int) string {
	return fmt.Sprintf("%s/course/view.php?id=%d", c.baseURL, courseID)
}

func (c *Client) groupURL() string {
	return c.baseURL + "/mod/groupselect/view.php"
}

// CourseSignups returns the group sign ups of a course
func (c *Client) CourseSignups(courseID int) ([]Signup, error) {
	doc, err := c.getDocument(c.courseURL(courseID))
	if err != nil {
		return nil, err
	}

	return parseSignups(doc)
}

// GroupDetails returns the slots of a group sign up
func (c *Client) GroupDetails(signupID int) (*GroupDetails, error) {
	log.WithField("signup", signupID).Debug("Getting group sign up details")
	doc, err := c.getDocument(fmt.Sprintf("%s?id=%d", c.groupURL(), signupID))
	if err != nil {
		return nil, err
	}

	return parseGroupDetails(doc)
}

// SendSignup posts a slot form and then the confirmation form, if the site
// asks for one
func (c *Client) SendSignup(signupID int, form url.Values) error {
	log.WithField("signup", signupID).Info("Sending sign up")
	body, err := c.PostBody(c.groupURL(), form)
	if err != nil {
		return err
	}
	doc, err := document(body)
	if err != nil {
		return err
	}
	confirm := parseConfirmation(doc)
	if confirm == nil {
		return nil
	}
	log.WithField("signup", signupID).Info("Sending confirmation")
	_, err = c.PostBody(c.groupURL(), confirm)

	return err
}

// EchoSection follows the Echo360 block of a course through the login
// iframes and returns the lecture capture section id. A course without a
// section gives "".
func (c *Client) EchoSection(courseID int) (string, error) {
	log.WithField("course", courseID).Debug("Getting Echo360 landing page")
	doc, err := c.getDocument(c.courseURL(courseID))
	if err != nil {
		return "", err
	}
	blockURL, ok := doc.Find("div.block_echo360_echocenter a").First().Attr("href")
	if !ok {
		return "", ErrNoEchoBlock
	}
	doc, err = c.getDocument(blockURL)
	if err != nil {
		return "", err
	}
	echoURL := doc.Find("iframe").First().AttrOr("src", "")
	u, err := url.Parse(echoURL)
	if err != nil {
		return "", err
	}
	log.Debug("Sending Echo360 login")
	body, err := c.GetBody(echoURL)
	if err != nil {
		return "", err
	}
	if bytes.Contains(body, []byte("Missing course section")) {
		return "", nil
	}
	doc, err = document(body)
	if err != nil {
		return "", err
	}
	partial := doc.Find("iframe").First().AttrOr("src", "")
	log.Debug("Sending second Echo360 login")
	_, err = c.GetBody(u.Scheme + "://" + u.Host + partial)
	if err != nil {
		return "", err
	}

	return parseEchoSection(partial), nil
}
