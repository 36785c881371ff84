package util

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var exit = os.Exit

// MetricsMux returns a mux serving prometheus metrics on /metrics
func MetricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// Webserver creates a webserver that gracefully shuts down on ctrl-C
func Webserver(name string, address string, handler http.Handler) {
	srv := &http.Server{Addr: address, Handler: handler}
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt)
	go func() {
		<-done
		signal.Stop(done)
		log.Info("Shutting down ", name)
		srv.Shutdown(context.Background())
	}()
	err := srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.WithFields(log.Fields{"error": err, "name": name}).Error("Can't start webserver")
	}
}

// ExitOnInterrupt runs cleanup and exits the process on ctrl-C
func ExitOnInterrupt(name string, cleanup func()) {
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt)
	go func() {
		<-done
		log.Info("Shutting down ", name)
		if cleanup != nil {
			cleanup()
		}
		time.Sleep(100 * time.Millisecond)
		exit(0)
	}()
}
