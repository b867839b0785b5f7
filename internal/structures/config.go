package structures

import (
	"net/http"
	"time"
)

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Route struct {
	Url     string
	Handler http.Handler
}

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

// RateStoreConfig selects the shared rate-limit store backend. "redis"
// shares counters across server instances; "sqlite" keeps a single-node
// store alongside the content rows.
type RateStoreConfig struct {
	Backend  string `yaml:"backend" validate:"required|in:redis,sqlite"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type StorageConfig struct {
	Path string `yaml:"path" validate:"required|unixPath"`
}

type AuditConfig struct {
	Enabled  bool   `yaml:"enabled"`
	FilePath string `yaml:"filePath"`
}

type JanitorConfig struct {
	CleanupInterval time.Duration `yaml:"cleanupInterval" validate:"required|min:1"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// LimitPolicy bounds one action for one identity scope: at most MaxCount
// actions per Window, with at least Cooldown between consecutive actions.
type LimitPolicy struct {
	Window   time.Duration
	Cooldown time.Duration
	MaxCount int
}

// GuardConfig carries the abuse-policy knobs. These are fixed product
// decisions compiled in via DefaultGuardConfig, not read from the config
// file; they live in a struct so tests can substitute values.
type GuardConfig struct {
	Submission LimitPolicy
	Report     LimitPolicy
	Waitlist   LimitPolicy

	DedupeWindow time.Duration

	MinElapsed time.Duration

	NameMinLen        int
	NameMaxLen        int
	DescriptionMaxLen int
	CategoryMaxLen    int
	EmailMaxLen       int

	// ReportHideThreshold is the reportedCount at which a community
	// feature is pulled from the public deck pending review. Shipped at
	// 1: a single report hides, biasing toward safety over availability
	// of community content.
	ReportHideThreshold int

	SimilarityThreshold float64
}

// DeckConfig tunes how community cards are blended into the official deck.
type DeckConfig struct {
	RecentAge   time.Duration
	SlotCadence int
	MinWeight   float64
}

// DefaultGuardConfig returns the shipped abuse policy.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		Submission: LimitPolicy{
			Window:   24 * time.Hour,
			Cooldown: 60 * time.Second,
			MaxCount: 5,
		},
		Report: LimitPolicy{
			Window:   24 * time.Hour,
			Cooldown: 10 * time.Second,
			MaxCount: 10,
		},
		Waitlist: LimitPolicy{
			Window:   24 * time.Hour,
			Cooldown: 30 * time.Second,
			MaxCount: 3,
		},
		DedupeWindow:        24 * time.Hour,
		MinElapsed:          1500 * time.Millisecond,
		NameMinLen:          3,
		NameMaxLen:          80,
		DescriptionMaxLen:   500,
		CategoryMaxLen:      40,
		EmailMaxLen:         254,
		ReportHideThreshold: 1,
		SimilarityThreshold: 0.78,
	}
}

// DefaultDeckConfig returns the shipped deck-blending policy.
func DefaultDeckConfig() DeckConfig {
	return DeckConfig{
		RecentAge:   7 * 24 * time.Hour,
		SlotCadence: 3,
		MinWeight:   0.05,
	}
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	WebServer Server          `yaml:"webServer"`
	Logger    LoggerConfig    `yaml:"logger"`
	RateStore RateStoreConfig `yaml:"rateStore"`
	Storage   StorageConfig   `yaml:"storage"`
	Audit     AuditConfig     `yaml:"audit"`
	Janitor   JanitorConfig   `yaml:"janitor"`
	Cache     CacheConfig     `yaml:"cache"`
	Metrics   MetricsConfig   `yaml:"metrics"`

	Guard GuardConfig
	Deck  DeckConfig
}
