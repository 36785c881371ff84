/*
echodl downloads new Echo360 lecture recordings of subscribed courses

	echodl --subscriptions
	echodl -v
*/
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/andersbetner/anuautomation/echo360"
	"github.com/andersbetner/anuautomation/util"
	"github.com/andersbetner/anuautomation/wattle"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

var (
	username          string
	subscriptions     bool
	verbose           bool
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

	flag.StringVar(&username, "username", "", "Wattle username to log in with, default WATTLE_USERNAME")
	flag.StringVar(&username, "u", "", "same as --username")
	flag.BoolVar(&subscriptions, "subscriptions", false, "[re]set subscriptions")
	flag.BoolVar(&verbose, "verbose", false, "verbose output")
	flag.BoolVar(&verbose, "v", false, "same as --verbose")
	flag.Parse()

	log.SetLevel(log.InfoLevel)
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}

// subscribe lets the user pick courses from the front page
func subscribe(c *wattle.Client, file string) error {
	courses, err := c.Courses()
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(os.Stdout)
	for i, course := range courses {
		table.Append([]string{strconv.Itoa(i), course.Title})
	}
	table.Render()

	fmt.Print("Subscribe to? ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return err
	}
	subs := make(map[int]echo360.Subscription)
	for _, f := range strings.Fields(line) {
		i, err := strconv.Atoi(f)
		if err != nil || i < 0 || i >= len(courses) {
			return fmt.Errorf("no course number %s", f)
		}
		subs[courses[i].ID] = echo360.Subscription{Title: courses[i].Title}
	}

	return echo360.SaveSubscriptions(file, subs)
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
	if cfg.Username == "" {
		os.Stderr.WriteString("No Wattle username was provided, can't log in! Use --username or WATTLE_USERNAME\n")
		os.Exit(1)
	}
	password, err := cfg.ResolvePassword()
	if err != nil {
		log.WithField("error", err).Error("Can't find password")
		os.Exit(1)
	}
	if cfg.MetricsAddr != "" {
		go util.Webserver("prometheus", cfg.MetricsAddr, util.MetricsMux())
	}
	subsFile := filepath.Join(cfg.StateDir, ".echodlsubs.json")
	storeFile := filepath.Join(cfg.StateDir, ".echodldb.json")

	notifier := util.NewNotifier(cfg.MqttHost, "echodl")
	if err = notifier.Connect(); err != nil {
		log.WithField("error", err).Error("Can't connect to mqtt server")
	}
	defer notifier.Disconnect()
	util.ExitOnInterrupt("echodl", notifier.Disconnect)

	c, err := wattle.NewClient(cfg.Username, password)
	if err != nil {
		log.WithField("error", err).Error("Error create client")
		os.Exit(1)
	}
	if err = c.Login(); err != nil {
		log.WithField("error", err).Error("Error login")
		os.Exit(1)
	}

	subs, ok, err := echo360.LoadSubscriptions(subsFile)
	if err != nil {
		log.WithFields(log.Fields{"error": err, "file": subsFile}).Error("Can't read subscriptions")
		os.Exit(1)
	}
	if subscriptions || !ok {
		if err = subscribe(c, subsFile); err != nil {
			log.WithField("error", err).Error("Error subscribing")
			os.Exit(1)
		}
		subs, _, err = echo360.LoadSubscriptions(subsFile)
		if err != nil {
			log.WithFields(log.Fields{"error": err, "file": subsFile}).Error("Can't read subscriptions")
			os.Exit(1)
		}
	}

	store, err := echo360.LoadStore(storeFile)
	if err != nil {
		log.WithFields(log.Fields{"error": err, "file": storeFile}).Error("Can't read download db")
		os.Exit(1)
	}
	curl := echo360.NewCurl()
	for courseID, sub := range subs {
		topic := strconv.Itoa(courseID)
		e, err := echo360.New(c, courseID)
		if err != nil {
			promUpdateCounter.WithLabelValues("500", "echodl", topic).Inc()
			log.WithFields(log.Fields{"error": err,
				"course": sub.Title}).Error("Error getting lectures")
			continue
		}
		e.DownloadNew(store, cfg.DownloadDir, curl, func(res echo360.Result) {
			if res.Err != nil {
				promUpdateCounter.WithLabelValues("500", "echodl", topic).Inc()
				log.WithFields(log.Fields{"error": res.Err, "lecture": res.Lecture.Title}).Error("Error downloading")
				notifier.Notify("echodl", "Error occurred!")
				return
			}
			promUpdateCounter.WithLabelValues("200", "echodl", topic).Inc()
			if err := store.Save(); err != nil {
				log.WithFields(log.Fields{"error": err, "file": storeFile}).Error("Can't save download db")
			}
			notifier.Notify("echodl", fmt.Sprintf("Downloaded %s.", res.File))
		})
	}
}
