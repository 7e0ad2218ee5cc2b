package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DetectionRules are the thresholds of the anomaly sweep.
type DetectionRules struct {
	EmployerInactivityAfter time.Duration `yaml:"employer_inactivity_after"`
	StudentOverworkLimit    int           `yaml:"student_overwork_limit"`
	DelayedPaymentAfter     time.Duration `yaml:"delayed_payment_after"`
	TaskStalledAfter        time.Duration `yaml:"task_stalled_after"`
	CompanyRenameLimit      int           `yaml:"company_rename_limit"`
	CompanyRenameWindow     time.Duration `yaml:"company_rename_window"`
}

// DefaultRules returns the built-in thresholds.
func DefaultRules() DetectionRules {
	return DetectionRules{
		EmployerInactivityAfter: 7 * 24 * time.Hour,
		StudentOverworkLimit:    3,
		DelayedPaymentAfter:     72 * time.Hour,
		TaskStalledAfter:        14 * 24 * time.Hour,
		CompanyRenameLimit:      3,
		CompanyRenameWindow:     30 * 24 * time.Hour,
	}
}

// LoadRules reads thresholds from a YAML file on top of the defaults. An empty path
// returns the defaults.
func LoadRules(path string) (DetectionRules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return rules, fmt.Errorf("read detection rules: %w", err)
	}
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return rules, fmt.Errorf("parse detection rules: %w", err)
	}
	if err := rules.validate(); err != nil {
		return rules, err
	}
	return rules, nil
}

func (r DetectionRules) validate() error {
	switch {
	case r.EmployerInactivityAfter <= 0:
		return fmt.Errorf("employer_inactivity_after must be positive")
	case r.StudentOverworkLimit <= 0:
		return fmt.Errorf("student_overwork_limit must be positive")
	case r.DelayedPaymentAfter <= 0:
		return fmt.Errorf("delayed_payment_after must be positive")
	case r.TaskStalledAfter <= 0:
		return fmt.Errorf("task_stalled_after must be positive")
	case r.CompanyRenameLimit <= 0:
		return fmt.Errorf("company_rename_limit must be positive")
	case r.CompanyRenameWindow <= 0:
		return fmt.Errorf("company_rename_window must be positive")
	}
	return nil
}
