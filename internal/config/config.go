package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	commoncfg "github.com/yuanzac/submarine/common/config"
)

// SiteFileName is the XML configuration file looked up at startup.
const SiteFileName = "submarine-site.xml"

// Config is the submarine-server configuration.
type Config struct {
	Server struct {
		Addr           string
		Port           int
		SSL            bool
		SSLPort        int
		CertFile       string
		KeyFile        string
		ClientAuth     bool
		TrustStore     string
		ReadTimeout    time.Duration
		MaxConnections int
	}
	DBEnabled bool
	Database  commoncfg.DatabaseConfig
	Redis     commoncfg.RedisConfig
	MQTT      struct {
		commoncfg.MQTTConfig
		Topic string
	}
	Log struct {
		Level  string
		Format string
	}
	Auth struct {
		Required      bool
		TokenTTL      time.Duration
		SeedAdmin     bool
		AdminPassword string
	}

	// SiteFile is the site file that was applied, if any.
	SiteFile string
	// SiteFileErr is set when a site file existed but could not be read.
	SiteFileErr error
}

// ListenAddr returns host:port of the active connector.
func (c *Config) ListenAddr() string {
	port := c.Server.Port
	if c.Server.SSL {
		port = c.Server.SSLPort
	}
	return fmt.Sprintf("%s:%d", c.Server.Addr, port)
}

type confVar struct {
	name string
	def  string
	set  func(c *Config, v string)
}

// confVars lists every known key. The matching environment variable is the
// key upper-cased with dots replaced by underscores.
var confVars = []confVar{
	{"submarine.server.addr", "0.0.0.0", func(c *Config, v string) { c.Server.Addr = v }},
	{"submarine.server.port", "8080", func(c *Config, v string) { c.Server.Port = parseInt(v, 8080) }},
	{"submarine.server.ssl", "false", func(c *Config, v string) { c.Server.SSL = parseBool(v) }},
	{"submarine.server.ssl.port", "8443", func(c *Config, v string) { c.Server.SSLPort = parseInt(v, 8443) }},
	{"submarine.server.ssl.keystore.path", "", func(c *Config, v string) { c.Server.CertFile = v }},
	{"submarine.server.ssl.key.path", "", func(c *Config, v string) { c.Server.KeyFile = v }},
	{"submarine.server.ssl.client.auth", "false", func(c *Config, v string) { c.Server.ClientAuth = parseBool(v) }},
	{"submarine.server.ssl.truststore.path", "", func(c *Config, v string) { c.Server.TrustStore = v }},
	{"submarine.server.read.timeout.ms", "30000", func(c *Config, v string) {
		c.Server.ReadTimeout = time.Duration(parseInt(v, 30000)) * time.Millisecond
	}},
	{"submarine.server.max.connections", "400", func(c *Config, v string) { c.Server.MaxConnections = parseInt(v, 400) }},

	{"submarine.db.enabled", "true", func(c *Config, v string) { c.DBEnabled = parseBool(v) }},
	{"submarine.db.host", "localhost", func(c *Config, v string) { c.Database.Host = v }},
	{"submarine.db.port", "5432", func(c *Config, v string) { c.Database.Port = parseInt(v, 5432) }},
	{"submarine.db.user", "submarine", func(c *Config, v string) { c.Database.User = v }},
	{"submarine.db.password", "password", func(c *Config, v string) { c.Database.Password = v }},
	{"submarine.db.name", "submarine", func(c *Config, v string) { c.Database.Database = v }},
	{"submarine.db.sslmode", "disable", func(c *Config, v string) { c.Database.SSLMode = v }},
	{"submarine.db.max.conns", "20", func(c *Config, v string) { c.Database.MaxConns = parseInt(v, 20) }},
	{"submarine.db.max.idle", "5", func(c *Config, v string) { c.Database.MaxIdle = parseInt(v, 5) }},

	{"submarine.redis.addr", "localhost:6379", func(c *Config, v string) { c.Redis.Addr = v }},
	{"submarine.redis.password", "", func(c *Config, v string) { c.Redis.Password = v }},
	{"submarine.redis.db", "0", func(c *Config, v string) { c.Redis.DB = parseInt(v, 0) }},

	{"submarine.mqtt.enabled", "false", func(c *Config, v string) { c.MQTT.Enabled = parseBool(v) }},
	{"submarine.mqtt.broker", "tcp://localhost:1883", func(c *Config, v string) { c.MQTT.Broker = v }},
	{"submarine.mqtt.client.id", "submarine-server", func(c *Config, v string) { c.MQTT.ClientID = v }},
	{"submarine.mqtt.username", "", func(c *Config, v string) { c.MQTT.Username = v }},
	{"submarine.mqtt.password", "", func(c *Config, v string) { c.MQTT.Password = v }},
	{"submarine.mqtt.qos", "1", func(c *Config, v string) { c.MQTT.QoS = byte(parseInt(v, 1)) }},
	{"submarine.mqtt.topic", "submarine/sys/dept", func(c *Config, v string) { c.MQTT.Topic = v }},

	{"submarine.log.level", "info", func(c *Config, v string) { c.Log.Level = v }},
	{"submarine.log.format", "json", func(c *Config, v string) { c.Log.Format = v }},

	{"submarine.auth.required", "true", func(c *Config, v string) { c.Auth.Required = parseBool(v) }},
	{"submarine.auth.token.ttl.minutes", "480", func(c *Config, v string) {
		c.Auth.TokenTTL = time.Duration(parseInt(v, 480)) * time.Minute
	}},
	{"submarine.auth.seed.admin", "true", func(c *Config, v string) { c.Auth.SeedAdmin = parseBool(v) }},
	{"submarine.auth.admin.password", "admin", func(c *Config, v string) { c.Auth.AdminPassword = v }},
}

// EnvName returns the environment variable that overrides key.
func EnvName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Load builds the configuration from defaults, the first site file found
// (SUBMARINE_CONF_FILE, ./conf/submarine-site.xml, ./submarine-site.xml) and
// the environment, later sources winning.
func Load() *Config {
	candidates := []string{os.Getenv("SUBMARINE_CONF_FILE"), "conf/" + SiteFileName, SiteFileName}
	for _, p := range candidates {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			continue
		}
		cfg, err := LoadFile(p)
		if err != nil {
			cfg = loadProps(nil)
			cfg.SiteFileErr = err
		}
		return cfg
	}
	return loadProps(nil)
}

// LoadFile is Load with an explicit site file.
func LoadFile(path string) (*Config, error) {
	props, err := ReadSiteFile(path)
	if err != nil {
		return nil, err
	}
	cfg := loadProps(props)
	cfg.SiteFile = path
	return cfg, nil
}

func loadProps(props map[string]string) *Config {
	cfg := &Config{}
	for _, v := range confVars {
		value := v.def
		if p, ok := props[v.name]; ok {
			value = p
		}
		if e := os.Getenv(EnvName(v.name)); e != "" {
			value = e
		}
		v.set(cfg, value)
	}

	// Short names shared with the other services.
	cfg.Database.LoadFromEnv("DB")
	cfg.Redis.LoadFromEnv("REDIS")
	cfg.MQTT.LoadFromEnv("MQTT")
	return cfg
}

type siteFile struct {
	XMLName    xml.Name       `xml:"configuration"`
	Properties []siteProperty `xml:"property"`
}

type siteProperty struct {
	Name  string `xml:"name"`
	Value string `xml:"value"`
}

// ReadSiteFile parses a Hadoop-style <configuration><property> file.
// Properties with an empty name are skipped.
func ReadSiteFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var f siteFile
	if err := xml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	props := make(map[string]string, len(f.Properties))
	for _, p := range f.Properties {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		props[name] = strings.TrimSpace(p.Value)
	}
	return props, nil
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return i
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}
