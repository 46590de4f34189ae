package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/AloySobek/ft-gomoku/engine"
)

const (
	configRelPath = "gomoku/config.yaml"
	envPrefix     = "GOMOKU"
)

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Engine EngineConfig `mapstructure:"engine"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type EngineConfig struct {
	BoardSize        int               `mapstructure:"board_size"`
	CaptureWinStones int               `mapstructure:"capture_win_stones"`
	Depth            int               `mapstructure:"depth"`
	Radius           int               `mapstructure:"radius"`
	RootBranching    int               `mapstructure:"root_branching"`
	Branching        int               `mapstructure:"branching"`
	TimeBudget       time.Duration     `mapstructure:"time_budget"`
	HumanColor       string            `mapstructure:"human_color"`
	Heuristics       engine.Heuristics `mapstructure:"heuristics"`
}

// RedisConfig is optional; an empty Addr keeps board snapshots in memory.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// MongoConfig is optional; an empty URI disables the game archive.
type MongoConfig struct {
	URI      string        `mapstructure:"uri"`
	Database string        `mapstructure:"database"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type InvalidConfig struct {
	err string
}

func (e InvalidConfig) Error() string {
	return fmt.Sprintf("config error: %s", e.err)
}

func Default() Config {
	settings := engine.DefaultSettings()
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 5 * time.Second,
		},
		Engine: EngineConfig{
			BoardSize:        settings.BoardSize,
			CaptureWinStones: settings.CaptureWinStones,
			Depth:            settings.Depth,
			Radius:           settings.Radius,
			RootBranching:    settings.RootBranching,
			Branching:        settings.Branching,
			TimeBudget:       500 * time.Millisecond,
			HumanColor:       "black",
			Heuristics:       settings.Heuristics,
		},
		Redis: RedisConfig{
			TTL: 24 * time.Hour,
		},
		Mongo: MongoConfig{
			Database: "gomoku",
			Timeout:  5 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// RegisterFlags adds the command line overrides understood by Load.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a config file (default: $XDG_CONFIG_HOME/"+configRelPath+")")
	fs.String("addr", "", "listen address")
	fs.Int("board-size", 0, "board size")
	fs.Int("depth", 0, "maximum search depth")
	fs.Duration("time-budget", 0, "time budget per engine move")
	fs.String("redis-addr", "", "redis address for board snapshots")
	fs.String("mongo-uri", "", "mongodb uri for the game archive")
	fs.String("log-level", "", "log level")
	fs.Bool("log-development", false, "human readable development logs")
}

var flagKeys = map[string]string{
	"addr":            "server.addr",
	"board-size":      "engine.board_size",
	"depth":           "engine.depth",
	"time-budget":     "engine.time_budget",
	"redis-addr":      "redis.addr",
	"mongo-uri":       "mongo.uri",
	"log-level":       "log.level",
	"log-development": "log.development",
}

// Load merges defaults, the config file, GOMOKU_* environment variables and
// explicitly set flags, in increasing priority. fs may be nil.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := ""
	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, err
				}
			}
		}
		path, _ = fs.GetString("config")
	}
	if path == "" {
		path = searchConfigFile()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func searchConfigFile() string {
	path, err := xdg.SearchConfigFile(configRelPath)
	if err != nil {
		return ""
	}
	return path
}

// setDefaults registers every key so that environment variables reach
// Unmarshal even without a config file.
func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.shutdown_timeout", cfg.Server.ShutdownTimeout)

	v.SetDefault("engine.board_size", cfg.Engine.BoardSize)
	v.SetDefault("engine.capture_win_stones", cfg.Engine.CaptureWinStones)
	v.SetDefault("engine.depth", cfg.Engine.Depth)
	v.SetDefault("engine.radius", cfg.Engine.Radius)
	v.SetDefault("engine.root_branching", cfg.Engine.RootBranching)
	v.SetDefault("engine.branching", cfg.Engine.Branching)
	v.SetDefault("engine.time_budget", cfg.Engine.TimeBudget)
	v.SetDefault("engine.human_color", cfg.Engine.HumanColor)

	v.SetDefault("redis.addr", cfg.Redis.Addr)
	v.SetDefault("redis.password", cfg.Redis.Password)
	v.SetDefault("redis.db", cfg.Redis.DB)
	v.SetDefault("redis.ttl", cfg.Redis.TTL)

	v.SetDefault("mongo.uri", cfg.Mongo.URI)
	v.SetDefault("mongo.database", cfg.Mongo.Database)
	v.SetDefault("mongo.timeout", cfg.Mongo.Timeout)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.development", cfg.Log.Development)
}

func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return InvalidConfig{"server.addr is empty"}
	}
	if c.Server.ShutdownTimeout <= 0 {
		return InvalidConfig{"server.shutdown_timeout must be positive"}
	}
	if err := c.Engine.Validate(); err != nil {
		return err
	}
	if c.Redis.Addr != "" && c.Redis.TTL < 0 {
		return InvalidConfig{"redis.ttl must not be negative"}
	}
	if c.Mongo.URI != "" && c.Mongo.Database == "" {
		return InvalidConfig{"mongo.database is empty"}
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return InvalidConfig{fmt.Sprintf("log.level %q: %v", c.Log.Level, err)}
	}
	return nil
}

func (e EngineConfig) Validate() error {
	if e.BoardSize < 5 || e.BoardSize%2 == 0 {
		return InvalidConfig{fmt.Sprintf("engine.board_size %d must be odd and at least 5", e.BoardSize)}
	}
	if e.CaptureWinStones <= 0 || e.CaptureWinStones%2 != 0 {
		return InvalidConfig{fmt.Sprintf("engine.capture_win_stones %d must be a positive even number", e.CaptureWinStones)}
	}
	if e.Depth < 1 {
		return InvalidConfig{"engine.depth must be at least 1"}
	}
	if e.Radius < 1 {
		return InvalidConfig{"engine.radius must be at least 1"}
	}
	if e.Branching < 1 || e.RootBranching < e.Branching {
		return InvalidConfig{"engine.root_branching must be at least engine.branching, which must be positive"}
	}
	if e.TimeBudget < 0 {
		return InvalidConfig{"engine.time_budget must not be negative"}
	}
	if _, err := e.humanColor(); err != nil {
		return InvalidConfig{err.Error()}
	}
	return nil
}

// Settings converts the engine section into game settings.
func (e EngineConfig) Settings() (engine.Settings, error) {
	human, err := e.humanColor()
	if err != nil {
		return engine.Settings{}, err
	}
	return engine.Settings{
		BoardSize:        e.BoardSize,
		CaptureWinStones: e.CaptureWinStones,
		Depth:            e.Depth,
		Radius:           e.Radius,
		RootBranching:    e.RootBranching,
		Branching:        e.Branching,
		TimeBudget:       e.TimeBudget,
		HumanColor:       human,
		Heuristics:       e.Heuristics.Resolved(),
	}, nil
}

func (e EngineConfig) humanColor() (engine.Cell, error) {
	c, err := engine.ParseColor(e.HumanColor)
	if err != nil {
		return engine.CellEmpty, err
	}
	if c == engine.CellEmpty {
		return engine.CellEmpty, errors.New("engine.human_color must be black or white")
	}
	return c, nil
}
