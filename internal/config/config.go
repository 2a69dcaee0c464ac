package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed thresholds.yaml
var thresholdsYAML []byte

type Config struct {
	Database   DatabaseConfig
	SIS        SISConfig
	Extractor  ExtractorConfig
	Match      MatchConfig
	Attendance AttendanceConfig
	Photo      PhotoConfig
	Thresholds ThresholdsConfig
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

// SISConfig points at the student information system's read-only MySQL
// mirror used by roster synchronization.
type SISConfig struct {
	DSN string // e.g. sis:sis@tcp(sis-mirror:3306)/sis
}

type ExtractorConfig struct {
	URL   string // face extraction service, empty disables biometric flows
	Model string // defaults to dlib
}

type MatchConfig struct {
	Threshold float64 // 0 means "use the model default from thresholds.yaml"
	UseIndex  bool    // build an in-memory HNSW index over the gallery
}

type AttendanceConfig struct {
	// EnforceRoster rejects mark-present calls for students who are not
	// on the session roster. Off by default to match the historical
	// permissive behavior.
	EnforceRoster bool
}

type PhotoConfig struct {
	Dir string // root directory for enrollment captures (default face_data)
}

type ThresholdsConfig struct {
	Models map[string]ModelThreshold `yaml:"models"`
}

type ModelThreshold struct {
	Distance float64 `yaml:"distance"`
	Dim      int     `yaml:"dim"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envBool reads an environment variable as a boolean flag.
func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}

func Load() *Config {
	var thresholds ThresholdsConfig
	if err := yaml.Unmarshal(thresholdsYAML, &thresholds); err != nil {
		// This is an embedded file so this error should never happen in practice.
		panic("failed to unmarshal embedded thresholds.yaml: " + err.Error())
	}

	model := os.Getenv("EXTRACTOR_MODEL")
	if model == "" {
		model = "dlib"
	}

	return &Config{
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		SIS: SISConfig{
			DSN: os.Getenv("SIS_DATABASE_DSN"),
		},
		Extractor: ExtractorConfig{
			URL:   os.Getenv("EXTRACTOR_URL"),
			Model: model,
		},
		Match: MatchConfig{
			Threshold: envFloat("MATCH_THRESHOLD", 0),
			UseIndex:  envBool("MATCH_USE_INDEX"),
		},
		Attendance: AttendanceConfig{
			EnforceRoster: envBool("ATTENDANCE_ENFORCE_ROSTER"),
		},
		Photo: PhotoConfig{
			Dir: photoDir(),
		},
		Thresholds: thresholds,
	}
}

func photoDir() string {
	if dir := os.Getenv("FACE_DATA_DIR"); dir != "" {
		return dir
	}
	return "face_data"
}

// MatchThreshold resolves the match threshold: an explicit MATCH_THRESHOLD
// wins, then the configured model's entry in thresholds.yaml, then the
// dlib default of 0.6.
func (c *Config) MatchThreshold() float64 {
	if c.Match.Threshold > 0 {
		return c.Match.Threshold
	}
	if m, ok := c.Thresholds.Models[c.Extractor.Model]; ok && m.Distance > 0 {
		return m.Distance
	}
	return 0.6
}
