package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadJSON(t *testing.T) {
	file := filepath.Join(t.TempDir(), "state", "db.json")
	db := map[string][]string{}
	ok, err := LoadJSON(file, &db)
	require.NoError(t, err)
	assert.False(t, ok)

	db["1234"] = []string{"a", "b"}
	require.NoError(t, SaveJSON(file, db))

	loaded := map[string][]string{}
	ok, err = LoadJSON(file, &loaded)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, db, loaded)

	entries, err := os.ReadDir(filepath.Dir(file))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestLoadJSON_Broken(t *testing.T) {
	file := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(file, []byte("{"), 0644))
	var v map[string]string
	_, err := LoadJSON(file, &v)
	assert.Error(t, err)
}

func TestDumpFile(t *testing.T) {
	dir := t.TempDir()
	file, err := DumpFile(dir, "booking", []byte("<html></html>"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(file), "booking-"))
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(data))
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("WATTLE_USERNAME", "u1234567")
	t.Setenv("WATTLE_PASSWORD", "secret")
	t.Setenv("WATTLE_DOWNLOADDIR", "/tmp/echo")
	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "u1234567", c.Username)
	assert.Equal(t, "/tmp/echo", c.DownloadDir)

	password, err := c.ResolvePassword()
	require.NoError(t, err)
	assert.Equal(t, "secret", password)
}

func TestResolvePassword_NoUser(t *testing.T) {
	c := &Config{}
	_, err := c.ResolvePassword()
	assert.Error(t, err)
}

func TestNotifier_WithoutHost(t *testing.T) {
	n := NewNotifier("", "test")
	require.NoError(t, n.Connect())
	assert.NoError(t, n.Publish("echodl", false, "hello"))
	n.Notify("echodl", "hello")
	n.Disconnect()
}

func TestExitOnInterrupt(t *testing.T) {
	exited := make(chan int, 1)
	exit = func(code int) { exited <- code }
	defer func() { exit = os.Exit }()
	cleaned := false
	ExitOnInterrupt("test", func() { cleaned = true })

	stopped := make(chan struct{})
	go func() {
		Webserver("test", "127.0.0.1:0", MetricsMux())
		close(stopped)
	}()
	self, err := os.FindProcess(os.Getpid())
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		self.Signal(os.Interrupt)
		select {
		case <-stopped:
			return true
		default:
			return false
		}
	}, 5*time.Second, 50*time.Millisecond)

	select {
	case code := <-exited:
		assert.Equal(t, 0, code)
		assert.True(t, cleaned)
	case <-time.After(5 * time.Second):
		t.Fatal("process wasn't told to exit")
	}
}
