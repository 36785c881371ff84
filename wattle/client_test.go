package wattle

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frontPage = `<html><body>
<div class="logininfo">You are logged in as Test User (<a href="https://wattlecourses.anu.edu.au/login/logout.php?sesskey=x">Log out</a>)</div>
<div id="course_list">
<div class="box coursebox" id="course-17641"><div class="course_title"><h3><a href="/course/view.php?id=17641"> MATH1013 Mathematics and Applications 1 </a></h3></div></div>
<div class="box coursebox" id="course-2"><div class="course_title"><h3><a href="/course/view.php?id=2">COMP1100 Programming as Problem Solving</a></h3></div></div>
</div>
</body></html>`

const loginPage = `<html><body><form action="/login/index.php"><input name="username"></form></body></html>`

const coursePage = `<html><body>
<ul>
<li class="activity groupselect modtype_groupselect" id="module-902521"><div><a href="#"><span class="instancename">Tutorial sign up</span></a></div></li>
<li class="activity forum modtype_forum" id="module-5"><div><span class="instancename">News forum</span></div></li>
</ul>
<div class="block_echo360_echocenter"><a href="%s/blocks/echo360?course=%s">ECHO360</a></div>
</body></html>`

const groupPage = `<html><body>
<section id="region-main"><div><div role="alert"><strong>Open from:</strong> Monday, 25 July 2016, 9:00 AM</div></div>
<table class="generaltable">
<thead><tr><th>Group</th><th>Description</th><th>Members</th><th></th></tr></thead>
<tbody>
<tr><td><a href="#">Tutorial 05</a></td><td><div><p><span>Tuesday 10am</span></p><p><span> Room 2.14 </span></p></div></td><td>3/10</td>
<td><div><form method="post"><div><input type="submit" value="%s"><input type="hidden" name="id" value="902521"><input type="hidden" name="%s" value="55"></div></form></div></td></tr>
<tr><td>Tutorial 06</td><td><div><p><span>Wednesday 2pm</span></p></div></td><td>10/10</td><td><div class="maxlimitreached">Maximum number reached</div></td></tr>
</tbody>
</table>
</section>
</body></html>`

const confirmPage = `<html><body>
<div class="singlebutton"><form method="post"><div>
<input type="hidden" name="id" value="902521"><input type="hidden" name="confirm" value="1"><input type="submit" value="Continue">
</div></form></div>
</body></html>`

const echoLanding = `<html><body><iframe src="%s/ess/portal/section?lti=%s"></iframe></body></html>`

const echoSection = `<html><body><iframe src="/ess/client/section/abc-123?apiUrl=https://capture"></iframe></body></html>`

// fakeWattle answers like Wattle and Echo360. joined is set once a
// confirmation has been posted.
type fakeWattle struct {
	srv    *httptest.Server
	posts  []url.Values
	joined bool
}

func newFakeWattle(t *testing.T) *fakeWattle {
	f := &fakeWattle{}
	mux := http.NewServeMux()
	mux.HandleFunc("/login/index.php", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("password") != "secret" {
			w.Write([]byte(loginPage))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "MoodleSession", Value: "abc", Path: "/"})
		w.Write([]byte(frontPage))
	})
	mux.HandleFunc("/course/view.php", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, coursePage, f.srv.URL, r.URL.Query().Get("id"))
	})
	mux.HandleFunc("/mod/groupselect/view.php", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			r.ParseForm()
			f.posts = append(f.posts, r.PostForm)
			if r.PostForm.Get("confirm") == "1" {
				f.joined = true
				return
			}
			w.Write([]byte(confirmPage))
			return
		}
		if f.joined {
			fmt.Fprintf(w, groupPage, "Leave group", "unselect")
			return
		}
		fmt.Fprintf(w, groupPage, "Join group", "select")
	})
	mux.HandleFunc("/blocks/echo360", func(w http.ResponseWriter, r *http.Request) {
		lti := "1"
		if r.URL.Query().Get("course") == "2" {
			lti = "missing"
		}
		fmt.Fprintf(w, echoLanding, f.srv.URL, lti)
	})
	mux.HandleFunc("/ess/portal/section", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("lti") == "missing" {
			w.Write([]byte("<html><body>Missing course section</body></html>"))
			return
		}
		w.Write([]byte(echoSection))
	})
	mux.HandleFunc("/ess/client/section/abc-123", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)

	return f
}

func loggedIn(t *testing.T, f *fakeWattle) *Client {
	c, err := NewClient("u1234567", "secret")
	require.NoError(t, err)
	c.baseURL = f.srv.URL
	require.NoError(t, c.Login())
	return c
}

func TestLogin_Failed(t *testing.T) {
	f := newFakeWattle(t)
	c, err := NewClient("u1234567", "wrong")
	require.NoError(t, err)
	c.baseURL = f.srv.URL
	assert.ErrorIs(t, c.Login(), ErrLoginFailed)
	_, err = c.Courses()
	assert.ErrorIs(t, err, ErrLoginFailed)
}

func TestCourses(t *testing.T) {
	c := loggedIn(t, newFakeWattle(t))
	courses, err := c.Courses()
	require.NoError(t, err)
	assert.Equal(t, []Course{
		{ID: 17641, Title: "MATH1013 Mathematics and Applications 1"},
		{ID: 2, Title: "COMP1100 Programming as Problem Solving"},
	}, courses)
}

func TestCookie(t *testing.T) {
	f := newFakeWattle(t)
	c := loggedIn(t, f)
	assert.Equal(t, "MoodleSession=abc", c.Cookie(f.srv.URL+"/ess/client"))
	assert.Equal(t, "", c.Cookie("https://example.com/"))
}

func TestCourseSignups(t *testing.T) {
	c := loggedIn(t, newFakeWattle(t))
	signups, err := c.CourseSignups(17641)
	require.NoError(t, err)
	assert.Equal(t, []Signup{{ID: 902521, Title: "Tutorial sign up"}}, signups)

	first, err := c.FirstSignup(17641)
	require.NoError(t, err)
	assert.Equal(t, 902521, first.ID)
}

func TestGroupDetails(t *testing.T) {
	c := loggedIn(t, newFakeWattle(t))
	details, err := c.GroupDetails(902521)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2016, 7, 25, 9, 0, 0, 0, time.Local), details.Opens)
	require.Len(t, details.Slots, 2)

	slot := details.Slots[0]
	assert.Equal(t, "Tutorial 05", slot.Ident)
	assert.Equal(t, []string{"Tuesday 10am", "Room 2.14"}, slot.Description)
	assert.Equal(t, 3, slot.Members)
	assert.Equal(t, 10, slot.Capacity)
	assert.Equal(t, "55", slot.Form.Get("select"))
	assert.False(t, slot.SignedUp)
	assert.True(t, slot.CanJoin())
	assert.False(t, slot.Full())

	slot = details.Slots[1]
	assert.Equal(t, "Tutorial 06", slot.Ident)
	assert.Nil(t, slot.Form)
	assert.True(t, slot.Full())
	assert.False(t, slot.CanJoin())
}

func TestParseGroupDetails_OddOpenTime(t *testing.T) {
	page := strings.Replace(groupPage, "Monday, 25 July 2016, 9:00 AM", "when the lecturer says so", 1)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)
	details, err := parseGroupDetails(doc)
	require.NoError(t, err)
	assert.True(t, details.Opens.IsZero())
	assert.Len(t, details.Slots, 2)
}

func TestSignupByIdent(t *testing.T) {
	f := newFakeWattle(t)
	c := loggedIn(t, f)

	done, err := c.SignupByIdent(902521, "Tutorial 05")
	require.NoError(t, err)
	assert.False(t, done)
	require.Len(t, f.posts, 2)
	assert.Equal(t, "55", f.posts[0].Get("select"))
	assert.Equal(t, "1", f.posts[1].Get("confirm"))

	done, err = c.SignupByIdent(902521, "Tutorial 05")
	require.NoError(t, err)
	assert.True(t, done)
	assert.Len(t, f.posts, 2)
}

func TestSignupByIdent_NoSuchSlot(t *testing.T) {
	f := newFakeWattle(t)
	c := loggedIn(t, f)
	done, err := c.SignupByIdent(902521, "Tutorial 99")
	require.NoError(t, err)
	assert.False(t, done)
	assert.Empty(t, f.posts)
}

func TestSignupByPattern(t *testing.T) {
	f := newFakeWattle(t)
	c := loggedIn(t, f)
	done, err := c.SignupByPattern(902521, regexp.MustCompile(`Room 2\.14`))
	require.NoError(t, err)
	assert.False(t, done)
	assert.Len(t, f.posts, 2)

	done, err = c.SignupByPattern(902521, regexp.MustCompile(`Tutorial (?:Group )?0?5`))
	require.NoError(t, err)
	assert.True(t, done)
}

func TestEchoSection(t *testing.T) {
	c := loggedIn(t, newFakeWattle(t))
	section, err := c.EchoSection(17641)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", section)

	section, err = c.EchoSection(2)
	require.NoError(t, err)
	assert.Equal(t, "", section)
}

func TestParseEchoSection(t *testing.T) {
	assert.Equal(t, "abc-123", parseEchoSection("/ess/client/section/abc-123?apiUrl=x"))
	assert.Equal(t, "", parseEchoSection("/ess/client/other"))
}

func TestParseOpens(t *testing.T) {
	opens, err := parseOpens(" Monday, 25 July 2016, 9:00 AM ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2016, 7, 25, 9, 0, 0, 0, time.Local), opens)

	opens, err = parseOpens("2016-07-25 14:30:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2016, 7, 25, 14, 30, 0, 0, time.Local), opens)

	_, err = parseOpens("whenever")
	assert.Error(t, err)
}
