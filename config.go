package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration, parsed from environment variables
// after an optional .env file is loaded.
type Config struct {
	Addr        string `env:"ADDR" envDefault:":8081"`
	DatabaseDSN string `env:"DB_DSN,required"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`
	JWTSecret   string `env:"JWT_SECRET" envDefault:"dev-insecure-secret-change"`

	// Object storage. With no bucket configured the server falls back to an
	// in-memory store so local development works without credentials.
	S3Bucket          string `env:"S3_BUCKET"`
	S3Region          string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3PathStyle       bool   `env:"S3_PATH_STYLE"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	S3PublicBaseURL   string `env:"S3_PUBLIC_BASE_URL"`

	SeedOperatorEmail    string `env:"SEED_OPERATOR_EMAIL" envDefault:"admin@stagewise.in"`
	SeedOperatorPassword string `env:"SEED_OPERATOR_PASSWORD" envDefault:"admin123"`
}

// loadConfig loads ./.env if present (never overwriting variables already
// set) and parses the environment into a Config.
func loadConfig() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
