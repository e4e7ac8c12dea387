package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"` // mysql or sqlite
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	Path            string `mapstructure:"path"` // sqlite file path
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// EventsConfig selects where security events are appended.
type EventsConfig struct {
	Sink string `mapstructure:"sink"` // database or redis
}

// SessionConfig governs session lifecycle behavior.
type SessionConfig struct {
	MaxSessions                       int  `mapstructure:"max_sessions"`
	SessionTimeoutMinutes             int  `mapstructure:"session_timeout_minutes"`
	ExtendedSessionTimeoutMinutes     int  `mapstructure:"extended_session_timeout_minutes"`
	InactivityTimeoutMinutes          int  `mapstructure:"inactivity_timeout_minutes"`
	RequireReauthForSensitive         bool `mapstructure:"require_reauth_for_sensitive"`
	EnableConcurrentSessions          bool `mapstructure:"enable_concurrent_sessions"`
	EnableDeviceTracking              bool `mapstructure:"enable_device_tracking"`
	EnableLocationTracking            bool `mapstructure:"enable_location_tracking"`
	EnableSuspiciousActivityDetection bool `mapstructure:"enable_suspicious_activity_detection"`

	// Heuristics thresholds for creation-time anomaly detection.
	CreationBurstThreshold     int `mapstructure:"creation_burst_threshold"`
	CreationBurstWindowMinutes int `mapstructure:"creation_burst_window_minutes"`
}

func (s *SessionConfig) Timeout() time.Duration {
	return time.Duration(s.SessionTimeoutMinutes) * time.Minute
}

func (s *SessionConfig) ExtendedTimeout() time.Duration {
	return time.Duration(s.ExtendedSessionTimeoutMinutes) * time.Minute
}

func (s *SessionConfig) InactivityTimeout() time.Duration {
	return time.Duration(s.InactivityTimeoutMinutes) * time.Minute
}

func (s *SessionConfig) CreationBurstWindow() time.Duration {
	return time.Duration(s.CreationBurstWindowMinutes) * time.Minute
}

type JanitorConfig struct {
	IntervalMinutes int `mapstructure:"interval_minutes"`
}

func (j *JanitorConfig) Interval() time.Duration {
	return time.Duration(j.IntervalMinutes) * time.Minute
}
