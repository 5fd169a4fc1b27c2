package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Final-stage GO policies.
const (
	// FinalStageComplete keeps the project at the last stage and marks it COMPLETED.
	FinalStageComplete = "complete"
	// FinalStageReject refuses a GO outcome at the last stage.
	FinalStageReject = "reject"
)

// GateConfig holds the rules applied to gate reviews and approvals.
type GateConfig struct {
	// MinCommentLength is the minimum number of characters in review comments.
	MinCommentLength int `yaml:"min_comment_length"`
	// ScoreMin and ScoreMax bound the canonical score scale.
	ScoreMin float64 `yaml:"score_min"`
	ScoreMax float64 `yaml:"score_max"`
	// FinalStageGo is complete or reject.
	FinalStageGo string `yaml:"final_stage_go"`
	// NotifyLeadOnSubmit notifies the project lead for every submitted review.
	NotifyLeadOnSubmit bool `yaml:"notify_lead_on_submit"`
}

// DefaultGateConfig returns the built-in gate rules.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		MinCommentLength:   10,
		ScoreMin:           0,
		ScoreMax:           10,
		FinalStageGo:       FinalStageComplete,
		NotifyLeadOnSubmit: true,
	}
}

// LoadGateConfigFromEnv returns the defaults overlaid with the YAML file named
// by GATE_POLICY_FILE, if set.
func LoadGateConfigFromEnv() (GateConfig, error) {
	cfg := DefaultGateConfig()
	path := GetEnv("GATE_POLICY_FILE", "")
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return GateConfig{}, fmt.Errorf("read gate policy %s: %w", path, err)
	}
	return ParseGateConfig(data, cfg)
}

// ParseGateConfig overlays YAML data onto base. Keys absent from the document
// keep their base values.
func ParseGateConfig(data []byte, base GateConfig) (GateConfig, error) {
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return GateConfig{}, fmt.Errorf("parse gate policy: %w", err)
	}
	return cfg, nil
}

// Validate validates gate rules.
func (c GateConfig) Validate() error {
	if c.MinCommentLength < 1 {
		return fmt.Errorf("min_comment_length must be at least 1")
	}
	if c.ScoreMin < 0 || c.ScoreMax <= c.ScoreMin {
		return fmt.Errorf("score range [%v, %v] is invalid", c.ScoreMin, c.ScoreMax)
	}
	switch c.FinalStageGo {
	case FinalStageComplete, FinalStageReject:
	default:
		return fmt.Errorf("final_stage_go must be %q or %q, got %q",
			FinalStageComplete, FinalStageReject, c.FinalStageGo)
	}
	return nil
}
