package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the yaml-backed service configuration. Connection secrets stay
// in environment variables (DB_*, REDIS_ADDR, NATS_URL); this file carries
// the operational knobs.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Reconcile struct {
		IntervalSeconds int    `yaml:"interval_seconds"`
		Timezone        string `yaml:"timezone"`
	} `yaml:"reconcile"`

	Alert struct {
		Addr            string `yaml:"addr"`
		TimeoutMs       int    `yaml:"timeout_ms"`
		DedupTTLSeconds int    `yaml:"dedup_ttl_seconds"`
		NatsSubject     string `yaml:"nats_subject"`
	} `yaml:"alert"`
}

func defaults() Config {
	var c Config
	c.Server.Addr = ":8080"
	c.Reconcile.IntervalSeconds = 60
	c.Reconcile.Timezone = "Asia/Kolkata"
	c.Alert.Addr = "127.0.0.1:7777"
	c.Alert.TimeoutMs = 5000
	c.Alert.DedupTTLSeconds = 90
	c.Alert.NatsSubject = "apc.alerts"
	return c
}

func Load(path string) (Config, error) {
	cfg := defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Missing file means defaults; env overrides still apply.
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func (c Config) Interval() time.Duration {
	return time.Duration(c.Reconcile.IntervalSeconds) * time.Second
}

func (c Config) AlertTimeout() time.Duration {
	return time.Duration(c.Alert.TimeoutMs) * time.Millisecond
}

func (c Config) DedupTTL() time.Duration {
	return time.Duration(c.Alert.DedupTTLSeconds) * time.Second
}

// Store holds the current config and serves it to components that want the
// reloadable values (alert address, timezone) resolved per use.
type Store struct {
	mu   sync.RWMutex
	cfg  Config
	path string
}

func NewStore(path string) (*Store, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Store{cfg: cfg, path: path}, nil
}

func (s *Store) Current() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// AlertAddr is handed to the TCP sender so an address change in the config
// file takes effect on the next send.
func (s *Store) AlertAddr() string {
	return s.Current().Alert.Addr
}

func (s *Store) Reload() error {
	cfg, err := Load(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	return nil
}
