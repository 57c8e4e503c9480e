// Package config provides application configuration management.
// Configuration is loaded from environment variables; credentials required
// for a feature to function at all fail fast at startup.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	Port        string `env:"PORT" envDefault:"8080"`

	// Document store
	MongoURI string `env:"MONGODB_URI,required,notEmpty"`

	// Session signing
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`

	// Gemini
	GeminiAPIKey            string `env:"GEMINI_API_KEY,required,notEmpty"`
	GeminiSystemInstruction string `env:"GEMINI_SYSTEM_INSTRUCTION"`

	// Outbound mail (SMTP)
	EmailUser string `env:"EMAIL_USER,required,notEmpty"`
	EmailPass string `env:"EMAIL_PASS,required,notEmpty"`
	SMTPHost  string `env:"SMTP_HOST" envDefault:"smtp.gmail.com"`
	SMTPPort  int    `env:"SMTP_PORT" envDefault:"587"`

	// CORS: from ALLOWED_ORIGINS or FRONTEND_URL; must include the frontend origin
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	FrontendURL    string   `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`

	// Cloudinary (avatar uploads; feature is disabled when unset)
	CloudinaryName      string `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `env:"CLOUDINARY_API_SECRET"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	// Normalize origins; fall back to the single frontend URL
	var origins []string
	for _, o := range cfg.AllowedOrigins {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{strings.TrimSpace(cfg.FrontendURL)}
	}
	cfg.AllowedOrigins = origins

	return cfg, nil
}

// HasCloudinary reports whether all Cloudinary credentials are present.
func (c *Config) HasCloudinary() bool {
	return c.CloudinaryName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}
