package wattle

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

var (
	capacityRex = regexp.MustCompile(`(\d+)\s*/\s*(\d+)`)
	sectionRex  = regexp.MustCompile(`/section/(.*?)\?api`)
	openLayouts = []string{
		"Monday, 2 January 2006, 3:04 PM",
		"Monday, 2 January 2006, 15:04",
		"2 January 2006, 3:04 PM",
	}
)

func parseCourses(doc *goquery.Document) ([]Course, error) {
	var courses []Course
	var err error
	doc.Find("div#course_list > div.coursebox").EachWithBreak(func(i int, s *goquery.Selection) bool {
		course := Course{}
		course.ID, err = strconv.Atoi(strings.TrimPrefix(s.AttrOr("id", ""), "course-"))
		if err != nil {
			return false
		}
		course.Title = strings.TrimSpace(s.Find("div.course_title h3 a").First().Text())
		courses = append(courses, course)
		return true
	})
	if err != nil {
		return nil, err
	}

	return courses, nil
}

func parseSignups(doc *goquery.Document) ([]Signup, error) {
	var signups []Signup
	var err error
	doc.Find("li.groupselect").EachWithBreak(func(i int, s *goquery.Selection) bool {
		signup := Signup{}
		signup.ID, err = strconv.Atoi(strings.TrimPrefix(s.AttrOr("id", ""), "module-"))
		if err != nil {
			return false
		}
		signup.Title = strings.TrimSpace(s.Find("span.instancename").First().Text())
		signups = append(signups, signup)
		return true
	})
	if err != nil {
		return nil, err
	}

	return signups, nil
}

// parseOpens parses the time sign up opens, eg "Monday, 25 July 2016, 9:00 AM"
func parseOpens(str string) (time.Time, error) {
	str = strings.TrimSpace(str)
	for _, layout := range openLayouts {
		t, err := time.ParseInLocation(layout, str, time.Local)
		if err == nil {
			return t, nil
		}
	}

	return dateparse.ParseLocal(str)
}

// tail returns the text following the first child element of s
func tail(s *goquery.Selection) string {
	first := s.Children().First()
	if first.Length() == 0 {
		return s.Text()
	}
	var b strings.Builder
	for n := first.Get(0).NextSibling; n != nil && n.Type == html.TextNode; n = n.NextSibling {
		b.WriteString(n.Data)
	}

	return b.String()
}

// firstText returns the first non blank text in s
func firstText(s *goquery.Selection) string {
	var ret string
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.TextNode && strings.TrimSpace(n.Data) != "" {
			ret = strings.TrimSpace(n.Data)
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	for _, n := range s.Nodes {
		if walk(n) {
			break
		}
	}

	return ret
}

// formValues returns the named inputs of s
func formValues(s *goquery.Selection) url.Values {
	var form url.Values
	s.Each(func(i int, input *goquery.Selection) {
		name, ok := input.Attr("name")
		if !ok {
			return
		}
		if form == nil {
			form = url.Values{}
		}
		form.Add(name, input.AttrOr("value", ""))
	})

	return form
}

func parseSlot(s *goquery.Selection) GroupSlot {
	slot := GroupSlot{}
	cells := s.ChildrenFiltered("td")
	slot.Ident = firstText(cells.Eq(0))
	cells.Eq(1).Find("div p span").Each(func(i int, d *goquery.Selection) {
		slot.Description = append(slot.Description, strings.TrimSpace(d.Text()))
	})
	if m := capacityRex.FindStringSubmatch(cells.Eq(2).Text()); m != nil {
		slot.Members, _ = strconv.Atoi(m[1])
		slot.Capacity, _ = strconv.Atoi(m[2])
	}
	inputs := cells.Last().Find("input")
	slot.Form = formValues(inputs)
	if slot.Form != nil && strings.Contains(inputs.First().AttrOr("value", ""), "Leave group") {
		slot.SignedUp = true
	}

	return slot
}

// parseGroupDetails reads the slots of a group select page. An open time
// that can't be parsed leaves Opens zero.
func parseGroupDetails(doc *goquery.Document) (*GroupDetails, error) {
	details := &GroupDetails{}
	alert := doc.Find("section#region-main > div > div[role='alert']").First()
	if alert.Length() > 0 {
		opens, err := parseOpens(tail(alert))
		if err != nil {
			log.WithFields(log.Fields{"error": err, "text": tail(alert)}).Warn("Can't parse open time")
		} else {
			details.Opens = opens
		}
	}
	doc.Find("table.generaltable > tbody > tr").Each(func(i int, s *goquery.Selection) {
		details.Slots = append(details.Slots, parseSlot(s))
	})

	return details, nil
}

// parseConfirmation returns the confirmation form shown after joining or
// leaving a group
func parseConfirmation(doc *goquery.Document) url.Values {
	if doc.Find("form.mform").Length() > 0 {
		return formValues(doc.Find("form.mform > div > input"))
	}

	return formValues(doc.Find("div.singlebutton form div input"))
}

func parseEchoSection(partial string) string {
	m := sectionRex.FindStringSubmatch(partial)
	if m == nil {
		return ""
	}
	return m[1]
}
