package util

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
)

// KeyringService is the keyring service passwords are stored under
const KeyringService = "anu"

// Config holds settings shared by the commands
type Config struct {
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	MqttHost    string `mapstructure:"mqtthost"`
	MetricsAddr string `mapstructure:"metricsaddr"`
	DownloadDir string `mapstructure:"downloaddir"`
	StateDir    string `mapstructure:"statedir"`
	DumpDir     string `mapstructure:"dumpdir"`
}

func home() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return dir
}

// LoadConfig reads anu.{yaml,json,...} from /etc/anu, ~/.config/anu or the
// working directory. WATTLE_* environment variables, also read from .env,
// override the file.
func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.WithField("error", err).Warn("Can't read .env")
	}

	v := viper.New()
	v.SetConfigName("anu")
	v.AddConfigPath("/etc/anu")
	v.AddConfigPath(filepath.Join(home(), ".config", "anu"))
	v.AddConfigPath(".")
	v.SetEnvPrefix("wattle")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("mqtthost", "")
	v.SetDefault("metricsaddr", "")
	v.SetDefault("downloaddir", filepath.Join(home(), "EchoDL"))
	v.SetDefault("statedir", home())
	v.SetDefault("dumpdir", "")

	err = v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return nil, err
	}

	c := &Config{}
	err = v.Unmarshal(c)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// ResolvePassword returns the configured password or the one stored in the
// keyring for the user
func (c *Config) ResolvePassword() (string, error) {
	if c.Password != "" {
		return c.Password, nil
	}
	if c.Username == "" {
		return "", errors.New("no username")
	}

	return keyring.Get(KeyringService, c.Username)
}
