package main

import (
	"os"

	"github.com/go-yaml/yaml"
	"gorm.io/gorm"

	"github.com/mizuame/searchgate/x/audit"
)

// Config is the gateway process configuration. The access control policy
// itself lives in a separate settings file so it can be reloaded without a
// restart.
type Config struct {
	Server Server `yaml:"server"`
}

type Server struct {
	Listen        string `yaml:"listen"`
	UpstreamURL   string `yaml:"upstreamUrl"`
	SettingsPath  string `yaml:"settingsPath"`
	Dsn           string `yaml:"dsn"`
	RedisAddr     string `yaml:"redisAddr"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

// Load loads gateway config from given path
func (c *Config) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return yaml.NewDecoder(f).Decode(&c)
}

// newAuditService always logs records; the database sink is added when a
// dsn is configured.
func newAuditService(db *gorm.DB) audit.Service {
	if db == nil {
		return audit.NewService(audit.NewSlogSink())
	}
	return audit.NewService(audit.NewSlogSink(), audit.NewGormSink(db))
}
