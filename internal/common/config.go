package common

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Log     LogConfig
	Server  ServerConfig
	OCR     OCRConfig
	History HistoryConfig
}

// LogConfig holds logging-related configuration
type LogConfig struct {
	Level string // debug | info | warn | error
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
}

// OCRConfig holds recognition-engine configuration
type OCRConfig struct {
	Engine      string   // "tesseract" (CLI) | "gosseract" (native binding)
	Tesseract   string   // binary name or absolute path; if empty -> "tesseract"
	Languages   []string // default ["eng"]
	TessdataDir string
	PSM         int // e.g., 6 is good for uniform block of text
	OEM         int // 1 = LSTM; leave 0 to use default
}

// HistoryConfig holds the optional recognition-history store configuration
type HistoryConfig struct {
	DSN string // empty disables the store
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		OCR: OCRConfig{
			Engine:      getEnv("OCR_ENGINE", "tesseract"),
			Tesseract:   getEnv("TESSERACT_BIN", ""),
			Languages:   getEnvAsList("OCR_LANGUAGES", []string{"eng"}),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
			PSM:         getEnvAsInt("OCR_PSM", 0),
			OEM:         getEnvAsInt("OCR_OEM", 0),
		},
		History: HistoryConfig{
			DSN: getEnv("HISTORY_DSN", ""),
		},
	}
}

// LoadConfigFile overlays values from a JSON config file onto c. The file is
// validated against the schema from BuildConfigJSONSchema before any field
// is applied.
func (c *Config) LoadConfigFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return WrapError(err, "read config file")
	}
	if err := ValidateJSONAgainstSchema(BuildConfigJSONSchema(), data); err != nil {
		return WrapError(err, "config file")
	}
	var f fileConfig
	if err := json.Unmarshal(data, &f); err != nil {
		return WrapError(err, "parse config file")
	}
	f.apply(c)
	return nil
}

// fileConfig mirrors the JSON config file layout. Pointers distinguish
// "absent" from zero values.
type fileConfig struct {
	LogLevel    *string  `json:"log_level"`
	HTTPAddr    *string  `json:"http_addr"`
	Engine      *string  `json:"engine"`
	Tesseract   *string  `json:"tesseract_bin"`
	Languages   []string `json:"languages"`
	TessdataDir *string  `json:"tessdata_dir"`
	PSM         *int     `json:"psm"`
	OEM         *int     `json:"oem"`
	HistoryDSN  *string  `json:"history_dsn"`
}

func (f *fileConfig) apply(c *Config) {
	if f.LogLevel != nil {
		c.Log.Level = *f.LogLevel
	}
	if f.HTTPAddr != nil {
		c.Server.HTTPAddr = *f.HTTPAddr
	}
	if f.Engine != nil {
		c.OCR.Engine = *f.Engine
	}
	if f.Tesseract != nil {
		c.OCR.Tesseract = *f.Tesseract
	}
	if len(f.Languages) > 0 {
		c.OCR.Languages = f.Languages
	}
	if f.TessdataDir != nil {
		c.OCR.TessdataDir = *f.TessdataDir
	}
	if f.PSM != nil {
		c.OCR.PSM = *f.PSM
	}
	if f.OEM != nil {
		c.OCR.OEM = *f.OEM
	}
	if f.HistoryDSN != nil {
		c.History.DSN = *f.HistoryDSN
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.OCR.Engine {
	case "tesseract", "gosseract":
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown OCR_ENGINE %q", c.OCR.Engine), ErrInvalidInput)
	}
	if len(c.OCR.Languages) == 0 {
		return NewAppError("CONFIG_ERROR", "OCR_LANGUAGES must not be empty", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
