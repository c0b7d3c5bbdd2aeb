package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

// DatabaseConfig selects the gorm driver. Path is used by sqlite, DSN by
// postgres and mysql.
type DatabaseConfig struct {
	Driver  string `mapstructure:"driver"`
	Path    string `mapstructure:"path"`
	DSN     string `mapstructure:"dsn"`
	LogMode bool   `mapstructure:"log_mode"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SessionConfig struct {
	Driver       string      `mapstructure:"driver"` // database / redis
	Secret       string      `mapstructure:"secret"`
	CookieName   string      `mapstructure:"cookie_name"`
	ExpireHours  int         `mapstructure:"expire_hours"`
	SecureCookie bool        `mapstructure:"secure_cookie"`
	Redis        RedisConfig `mapstructure:"redis"`
}

type UploadConfig struct {
	Dir         string   `mapstructure:"dir"`
	MaxSizeMB   int64    `mapstructure:"max_size_mb"`
	AllowedExts []string `mapstructure:"allowed_exts"`
}

type LogConfig struct {
	File   string `mapstructure:"file"`
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console / json
}

// AdminConfig seeds an admin account on startup when both fields are set.
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

type AppSubConfig struct {
	Name       string   `mapstructure:"name"`
	TimeZone   string   `mapstructure:"time_zone"`
	Categories []string `mapstructure:"categories"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Session  SessionConfig  `mapstructure:"session"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Log      LogConfig      `mapstructure:"log"`
	Admin    AdminConfig    `mapstructure:"admin"`
	App      AppSubConfig   `mapstructure:"app"`
}

var (
	appConfig *Config
	once      sync.Once
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 4000)
	v.SetDefault("server.mode", "release")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/complaints.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.log_mode", false)

	v.SetDefault("session.driver", "database")
	v.SetDefault("session.secret", "")
	v.SetDefault("session.cookie_name", "cc_session")
	v.SetDefault("session.secure_cookie", false)
	v.SetDefault("session.expire_hours", 24)
	v.SetDefault("session.redis.addr", "localhost:6379")
	v.SetDefault("session.redis.password", "")
	v.SetDefault("session.redis.db", 0)

	v.SetDefault("upload.dir", "data/uploads")
	v.SetDefault("upload.max_size_mb", 5)
	v.SetDefault("upload.allowed_exts", []string{".jpg", ".jpeg", ".png", ".gif", ".webp"})

	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// keys without defaults are invisible to AutomaticEnv during Unmarshal
	v.SetDefault("admin.username", "")
	v.SetDefault("admin.password", "")
	v.SetDefault("admin.name", "Administrator")

	v.SetDefault("app.name", "Campus Complaint & Resolution System")
	v.SetDefault("app.time_zone", "Asia/Kolkata")
	v.SetDefault("app.categories", []string{"Academics", "Facilities", "Hostel", "Canteen", "Transport", "IT Services", "Other"})
}

// Read builds a Config from the given file (optional) plus CC_* environment
// overrides. Unlike Load it does not cache the result.
func Read(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	// environment overrides, e.g. CC_SERVER_PORT=9000
	v.SetEnvPrefix("CC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Session.ExpireHours <= 0 {
		c.Session.ExpireHours = 24
	}
	return &c, nil
}

// Load loads configuration once from the given file path (e.g. "config.yaml").
// If path is empty, it defaults to "config.yaml" in current working directory.
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		appConfig, err = Read(path)
	})
	if err != nil {
		return nil, err
	}
	return appConfig, nil
}
