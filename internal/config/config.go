// internal/config/config.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	IMAP struct {
		Enabled         bool     `yaml:"enabled"`
		Host            string   `yaml:"host"`
		Port            int      `yaml:"port"`
		Username        string   `yaml:"username"`
		Mailbox         string   `yaml:"mailbox"`
		SubjectKeywords []string `yaml:"subject_keywords"`
		AllowedSenders  []string `yaml:"allowed_senders"`
		// WebhookURL, when set, makes the watcher POST matched emails there
		// instead of running the claim pipeline in-process.
		WebhookURL        string `yaml:"webhook_url"`
		RetryMax          int    `yaml:"retry_max"`
		RetryDelaySeconds int    `yaml:"retry_delay_seconds"`
		DedupeMax         int    `yaml:"dedupe_max"`
	} `yaml:"imap"`

	Claim struct {
		TimeoutSeconds int     `yaml:"timeout_seconds"`
		MaxRedirects   int     `yaml:"max_redirects"`
		RatePerSec     float64 `yaml:"rate_per_sec"`
		RateBurst      int     `yaml:"rate_burst"`
	} `yaml:"claim"`

	Dedup struct {
		// RedisAddr switches message dedup to a shared redis set, so several
		// instances can watch the same mailbox without double-claiming.
		RedisAddr string `yaml:"redis_addr"`
		RedisKey  string `yaml:"redis_key"`
	} `yaml:"dedup"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
