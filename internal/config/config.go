package config

import (
	"fiestapinata/internal/gamedata"
	"math"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port           string
	DatabaseURL    string
	WindowWidth    int
	WindowHeight   int
	HeroTargets    int
	EvilTargets    int
	TargetSize     int
	TargetReward   int
	CrosshairSize  int
	LifetimeMin    float64 // seconds
	LifetimeMax    float64 // seconds
	DecayStep      float64 // seconds, 0 = continuous
	TargetMotion   bool
	Seed           uint32
	TickRate       int // updates per second
	SessionIdleTTL int // seconds
}

func Load() Config {
	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		WindowWidth:    getEnvInt("WINDOW_WIDTH", 480),
		WindowHeight:   getEnvInt("WINDOW_HEIGHT", 272),
		HeroTargets:    getEnvInt("HERO_TARGETS", 3),
		EvilTargets:    getEnvInt("EVIL_TARGETS", 3),
		TargetSize:     getEnvInt("TARGET_SIZE", 50),
		TargetReward:   getEnvInt("TARGET_REWARD", 30),
		CrosshairSize:  getEnvInt("CROSSHAIR_SIZE", 50),
		LifetimeMin:    getEnvFloat("LIFETIME_MIN", 4),
		LifetimeMax:    getEnvFloat("LIFETIME_MAX", 7),
		DecayStep:      getEnvFloat("DECAY_STEP", 0),
		TargetMotion:   getEnvBool("TARGET_MOTION", true),
		Seed:           uint32(getEnvInt("RNG_SEED", 42)),
		TickRate:       getEnvInt("TICK_RATE", 60),
		SessionIdleTTL: getEnvInt("SESSION_IDLE_TTL", 600),
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = 60
	}
	if cfg.TargetSize <= 0 {
		cfg.TargetSize = 50
	}
	if cfg.CrosshairSize <= 0 {
		cfg.CrosshairSize = 50
	}
	if cfg.TargetReward < 0 || cfg.TargetReward > math.MaxUint16 {
		cfg.TargetReward = 30
	}
	if !validLifetime(cfg.LifetimeMin) {
		cfg.LifetimeMin = 4
	}
	if !validLifetime(cfg.LifetimeMax) {
		cfg.LifetimeMax = 7
	}
	if math.IsNaN(cfg.DecayStep) || math.IsInf(cfg.DecayStep, 0) || cfg.DecayStep < 0 {
		cfg.DecayStep = 0
	}
	if cfg.LifetimeMax < cfg.LifetimeMin {
		cfg.LifetimeMax = cfg.LifetimeMin
	}
	return cfg
}

// Game converts the loaded values into the session configuration.
func (c Config) Game() gamedata.Config {
	return gamedata.Config{
		Width:       float64(c.WindowWidth),
		Height:      float64(c.WindowHeight),
		HeroTargets: c.HeroTargets,
		EvilTargets: c.EvilTargets,
		TargetSize:  float64(c.TargetSize),
		Crosshair:   float64(c.CrosshairSize),
		Reward:      uint16(c.TargetReward),
		LifetimeMin: c.LifetimeMin,
		LifetimeMax: c.LifetimeMax,
		DecayStep:   c.DecayStep,
		Motion:      c.TargetMotion,
		Seed:        c.Seed,
	}
}

// TickInterval is the fixed wall-clock period between updates.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// FixedStep is the dt in seconds handed to every update.
func (c Config) FixedStep() float64 {
	return 1 / float64(c.TickRate)
}

// validLifetime rejects bounds that would keep a target alive forever or
// expire it before it is drawn.
func validLifetime(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
