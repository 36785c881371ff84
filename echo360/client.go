package echo360

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	log "github.com/sirupsen/logrus"
)

var (
	letterRex  = regexp.MustCompile(`Lecture (.)\]$`)
	callbacks  = []string{"EC.loadRecordsSuccess(", "EC.loadDetailsSuccess("}
	timeLayout = "2006-01-02 Mon 1504"
)

// Session is a logged in Wattle session, see wattle.Client
type Session interface {
	EchoSection(courseID int) (string, error)
	GetBody(rawurl string) ([]byte, error)
	Cookie(rawurl string) string
}

// Echo holds the lecture capture section of a course
type Echo struct {
	session    Session
	baseURL    string
	timezone   string
	SectionID  string
	CourseID   int
	CourseName string
	section    sectionData
}

// New finds the section of a course and reads its lecture list. A course
// without lecture capture gives an Echo with no lectures.
func New(session Session, courseID int) (*Echo, error) {
	e := &Echo{}
	e.session = session
	e.baseURL = "https://capture.anu.edu.au:8443/ess/client/api/sections"
	e.timezone = "Australia/Sydney"
	e.CourseID = courseID

	var err error
	e.SectionID, err = session.EchoSection(courseID)
	if err != nil || e.SectionID == "" {
		return e, err
	}
	err = e.loadSection(50)

	return e, err
}

func (e *Echo) loadSection(pageSize int) error {
	q := url.Values{}
	q.Set("timeZone", e.timezone)
	q.Set("pageIndex", "1")
	q.Set("pageSize", strconv.Itoa(pageSize))
	q.Set("sortOrder", "desc")
	q.Set("showUnavailable", "true")
	q.Set("callback", "EC.loadRecordsSuccess")
	err := e.getJSONP(fmt.Sprintf("%s/%s/section-data.json?%s", e.baseURL, e.SectionID, q.Encode()), &e.section)
	if err != nil {
		return err
	}
	e.CourseName = strings.Replace(e.section.Section.Course.Name, "/", "-", -1)

	return nil
}

// unwrapJSONP strips the callback call around the JSON
func unwrapJSONP(body []byte) []byte {
	body = bytes.TrimSpace(body)
	for _, cb := range callbacks {
		body = bytes.TrimPrefix(body, []byte(cb))
	}
	body = bytes.TrimSuffix(body, []byte(";"))
	body = bytes.TrimSuffix(body, []byte(")"))

	return body
}

func (e *Echo) getJSONP(rawurl string, v interface{}) error {
	body, err := e.session.GetBody(rawurl)
	if err != nil {
		return err
	}

	return json.Unmarshal(unwrapJSONP(body), v)
}

// Lectures returns the lectures of the section, newest first
func (e *Echo) Lectures() []Lecture {
	if e.SectionID == "" {
		return nil
	}
	return e.section.Section.Presentations.PageContents
}

// Details returns the details of a lecture
func (e *Echo) Details(uuid string) (*Presentation, error) {
	q := url.Values{}
	q.Set("timeZone", e.timezone)
	q.Set("isFaculty", "false")
	q.Set("callback", "EC.loadDetailsSuccess")
	details := detailsData{}
	err := e.getJSONP(fmt.Sprintf("%s/%s/presentations/%s/details.json?%s", e.baseURL, e.SectionID, uuid, q.Encode()), &details)
	if err != nil {
		return nil, err
	}

	return &details.Presentation, nil
}

// Filename names the video of a lecture eg "MATH1013 - Week 05 A.m4v".
// Weeks after the teaching break are counted without it.
func Filename(courseName string, p *Presentation) (string, error) {
	week, err := p.Week.Int64()
	if err != nil {
		return "", err
	}
	if week > 7 {
		week -= 2
	}
	if m := letterRex.FindStringSubmatch(p.Title); m != nil {
		return fmt.Sprintf("%s - Week %02d %s.m4v", courseName, week, m[1]), nil
	}
	start, err := dateparse.ParseLocal(p.StartTime)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s - Week %02d %s.m4v", courseName, week, start.Format(timeLayout)), nil
}

// MediaURL returns the downloadable url of a lecture
func MediaURL(p *Presentation) string {
	return strings.Replace(p.Vodcast, "media", "mediacontent", -1)
}

// DownloadLecture downloads a lecture into dir and returns the file name
func (e *Echo) DownloadLecture(uuid string, dir string, d Downloader) (string, error) {
	p, err := e.Details(uuid)
	if err != nil {
		return "", err
	}
	filename, err := Filename(e.CourseName, p)
	if err != nil {
		return "", err
	}
	job := Job{}
	job.UUID = uuid
	job.MediaURL = MediaURL(p)
	job.File = filepath.Join(dir, filename)
	job.Cookie = e.session.Cookie(job.MediaURL)
	log.WithFields(log.Fields{"title": p.Title, "file": filename}).Info("Downloading lecture")
	started := time.Now()
	err = d.Download(job)
	if err != nil {
		return filename, err
	}
	log.WithFields(log.Fields{"file": filename, "took": time.Since(started).Round(time.Second)}).Debug("Downloaded lecture")

	return filename, nil
}

// Result is the outcome of downloading one lecture
type Result struct {
	Lecture Lecture
	File    string
	Err     error
}

// DownloadNew downloads the lectures not in store. Downloaded lectures are
// added to store, and done is called after every attempt.
func (e *Echo) DownloadNew(store *Store, dir string, d Downloader, done func(Result)) {
	for _, lecture := range e.Lectures() {
		if store.Has(e.CourseID, lecture.UUID) {
			continue
		}
		res := Result{Lecture: lecture}
		res.File, res.Err = e.DownloadLecture(lecture.UUID, dir, d)
		if res.Err == nil {
			store.Add(e.CourseID, lecture.UUID)
		}
		done(res)
	}
}
