/*
tutorial signs up to Wattle tutorial groups as soon as sign up opens

	tutorial --courses
	tutorial --groupid 902521 --id "Tutorial 06"
	tutorial --courseid 17641 --pattern "Tutorial (?:Group )?0?5"
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/andersbetner/anuautomation/util"
	"github.com/andersbetner/anuautomation/wattle"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

var (
	groupID           int
	courseID          int
	ident             string
	pattern           string
	listCourses       bool
	verbose           bool
	username          string
	interval          time.Duration
	promUpdateCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ab_sensor_updates_total",
			Help: "How many times this item has been updated.",
		},
		[]string{"status", "type", "topic"},
	)
)

func init() {
	prometheus.MustRegister(promUpdateCounter)

	flag.IntVar(&groupID, "groupid", 0, "group sign up id to sign up for")
	flag.IntVar(&courseID, "courseid", 0, "course id, its first group sign up is used when --groupid is missing")
	flag.StringVar(&ident, "id", "", "the slot to sign up for, the identifier on the group select page")
	flag.StringVar(&pattern, "pattern", "", "regexp matched against slot identifiers and descriptions")
	flag.BoolVar(&listCourses, "courses", false, "list courses and their group sign ups")
	flag.BoolVar(&verbose, "verbose", false, "debug output")
	flag.StringVar(&username, "username", "", "Wattle username to log in with, default from config")
	flag.DurationVar(&interval, "interval", 30*time.Second, "time between attempts")
	flag.Parse()

	log.SetLevel(log.InfoLevel)
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
	if listCourses {
		return
	}
	exit := false
	if groupID == 0 && courseID == 0 {
		os.Stderr.WriteString("--groupid or --courseid missing\n")
		exit = true
	}
	if (ident == "") == (pattern == "") {
		os.Stderr.WriteString("give one of --id or --pattern\n")
		exit = true
	}
	if interval <= 0 {
		os.Stderr.WriteString("--interval must be > 0\n")
		exit = true
	}
	if exit {
		os.Exit(1)
	}
}

func printCourses(c *wattle.Client) error {
	courses, err := c.Courses()
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"course id", "Course", "sign up id", "Sign up"})
	for _, course := range courses {
		signups, err := c.CourseSignups(course.ID)
		if err != nil {
			return err
		}
		if len(signups) == 0 {
			table.Append([]string{strconv.Itoa(course.ID), course.Title, "", ""})
		}
		for _, s := range signups {
			table.Append([]string{strconv.Itoa(course.ID), course.Title, strconv.Itoa(s.ID), s.Title})
		}
	}
	table.Render()

	return nil
}

// waitForSignup polls the course until it has a group sign up
func waitForSignup(c *wattle.Client) int {
	for {
		s, err := c.FirstSignup(courseID)
		if err != nil {
			promUpdateCounter.WithLabelValues("500", "tutorial", "course").Inc()
			log.WithFields(log.Fields{"error": err,
				"type":  "tutorial",
				"topic": strconv.Itoa(courseID)}).Error("Error getting course sign ups")
		}
		if s != nil {
			log.WithFields(log.Fields{"signup": s.ID, "title": s.Title}).Info("Found group sign up")
			return s.ID
		}
		time.Sleep(interval)
	}
}

func main() {
	cfg, err := util.LoadConfig()
	if err != nil {
		log.WithField("error", err).Error("Can't read config")
		os.Exit(1)
	}
	if username != "" {
		cfg.Username = username
	}
	password, err := cfg.ResolvePassword()
	if err != nil {
		log.WithField("error", err).Error("Can't find password")
		os.Exit(1)
	}
	c, err := wattle.NewClient(cfg.Username, password)
	if err != nil {
		log.WithField("error", err).Error("Error create client")
		os.Exit(1)
	}
	if err = c.Login(); err != nil {
		log.WithField("error", err).Error("Error login")
		os.Exit(1)
	}
	if listCourses {
		if err = printCourses(c); err != nil {
			log.WithField("error", err).Error("Error listing courses")
			os.Exit(1)
		}
		return
	}

	var re *regexp.Regexp
	if pattern != "" {
		re, err = regexp.Compile(pattern)
		if err != nil {
			log.WithField("error", err).Error("Error in --pattern")
			os.Exit(1)
		}
	}
	if cfg.MetricsAddr != "" {
		go util.Webserver("prometheus", cfg.MetricsAddr, util.MetricsMux())
	}
	host, err := os.Hostname()
	if err != nil {
		host = "tutorial"
	}
	notifier := util.NewNotifier(cfg.MqttHost, "tutorial-"+host)
	if err = notifier.Connect(); err != nil {
		log.WithField("error", err).Error("Can't connect to mqtt server")
	}
	defer notifier.Disconnect()
	util.ExitOnInterrupt("tutorial", notifier.Disconnect)

	if groupID == 0 {
		groupID = waitForSignup(c)
	}
	topic := strconv.Itoa(groupID)
	for {
		var done bool
		if re != nil {
			done, err = c.SignupByPattern(groupID, re)
		} else {
			done, err = c.SignupByIdent(groupID, ident)
		}
		if err != nil {
			promUpdateCounter.WithLabelValues("500", "tutorial", topic).Inc()
			log.WithFields(log.Fields{"error": err,
				"type":  "tutorial",
				"topic": topic}).Error("Error signing up")
		} else {
			promUpdateCounter.WithLabelValues("200", "tutorial", topic).Inc()
		}
		if done {
			notifier.Notify("tutorial/"+topic, fmt.Sprintf("Signed up for group sign up %d", groupID))
			return
		}
		time.Sleep(interval)
	}
}
