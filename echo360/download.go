package echo360

import (
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Job is a lecture video to download
type Job struct {
	UUID     string
	MediaURL string
	File     string
	Cookie   string
}

// Referer returns the page the media is linked from, the server checks it
func (j Job) Referer() string {
	return fmt.Sprintf("https://capture.anu.edu.au/ess/echo/presentation/%s/media.m4v?downloadOnly=true", j.UUID)
}

// Downloader fetches a Job to disk
type Downloader interface {
	Download(job Job) error
}

// Curl downloads with the curl binary, resuming partial files and retrying
// five times
type Curl struct {
	Binary string
	Stdout io.Writer
	Stderr io.Writer
}

// NewCurl returns a Curl writing progress to stderr
func NewCurl() *Curl {
	return &Curl{Binary: "curl", Stdout: os.Stdout, Stderr: os.Stderr}
}

// Args returns the curl arguments for job
func (c *Curl) Args(job Job) []string {
	return []string{
		"-C", "-",
		"--retry", "5",
		"--referer", job.Referer(),
		"--cookie", job.Cookie,
		"--create-dirs",
		"--output", job.File,
		job.MediaURL,
	}
}

// Download runs curl. A failing curl gives an *exec.ExitError.
func (c *Curl) Download(job Job) error {
	cmd := exec.Command(c.Binary, c.Args(job)...)
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr

	return cmd.Run()
}
