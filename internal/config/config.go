// Package config defines the necessary types to configure the application.
// An example config file config.yaml is provided in the repository.
package config

import (
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
)

type Config struct {
	commoncfg.BaseConfig `mapstructure:",squash" yaml:",inline"`

	Database  Database  `yaml:"database"`
	ValKey    ValKey    `yaml:"valkey"`
	Dialog    Dialog    `yaml:"dialog"`
	Cache     Cache     `yaml:"cache"`
	Scheduler Scheduler `yaml:"scheduler"`
	Export    Export    `yaml:"export"`
}

type Database struct {
	Name     string              `yaml:"name"`
	Port     string              `yaml:"port"`
	Host     commoncfg.SourceRef `yaml:"host"`
	User     commoncfg.SourceRef `yaml:"user"`
	Password commoncfg.SourceRef `yaml:"password"`
}

type ValKey struct {
	Host     commoncfg.SourceRef `yaml:"host"`
	User     commoncfg.SourceRef `yaml:"user"`
	Password commoncfg.SourceRef `yaml:"password"`
	Prefix   string              `yaml:"prefix"`
}

// Dialog configures the wizard engine.
type Dialog struct {
	// Store selects where in-flight wizards live: "memory" or "valkey".
	Store string `yaml:"store" default:"memory"`
	// IdleTimeout drops wizards that have seen no input for this long.
	IdleTimeout time.Duration `yaml:"idleTimeout" default:"1h"`
	// StoreTTL is the hard expiry on valkey-held wizard state, a safety
	// net over the idle cleanup.
	StoreTTL time.Duration `yaml:"storeTTL" default:"24h"`
}

type Cache struct {
	TTL time.Duration `yaml:"ttl" default:"10m"`
}

type Scheduler struct {
	TickInterval time.Duration `yaml:"tickInterval" default:"1m"`
	// Timezone is the reference timezone reminders and reports are
	// evaluated in.
	Timezone string `yaml:"timezone" default:"UTC"`
	// ReportHour is the hour of day the payroll reports go out at.
	ReportHour int `yaml:"reportHour" default:"12"`
}

type Export struct {
	// WebhookURL receives committed records as JSON; empty disables
	// mirroring.
	WebhookURL string `yaml:"webhookURL"`
}
