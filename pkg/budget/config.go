package budget

import "sentinel-hq/sentinel/pkg/config"

// Config holds the spending ceilings in USD. A zero ceiling disables the
// corresponding check. The Enforcer keeps its own copy, so a Config can
// not be changed under a running enforcer.
type Config struct {
	DailyBudget        float64
	MonthlyBudget      float64
	AlertThreshold     float64
	EmergencyThreshold float64
	UserDailyLimit     float64
	UserMonthlyLimit   float64
}

// DefaultConfig returns the default ceilings.
func DefaultConfig() Config {
	return Config{
		DailyBudget:        config.DefaultDailyBudget,
		MonthlyBudget:      config.DefaultMonthlyBudget,
		AlertThreshold:     config.DefaultAlertThreshold,
		EmergencyThreshold: config.DefaultEmergencyThreshold,
		UserDailyLimit:     config.DefaultUserDailyLimit,
		UserMonthlyLimit:   config.DefaultUserMonthlyLimit,
	}
}

// FromConfig converts the budget section of the configuration file.
func FromConfig(cfg config.BudgetConfig) Config {
	return Config{
		DailyBudget:        cfg.DailyBudget,
		MonthlyBudget:      cfg.MonthlyBudget,
		AlertThreshold:     cfg.AlertThreshold,
		EmergencyThreshold: cfg.EmergencyThreshold,
		UserDailyLimit:     cfg.UserDailyLimit,
		UserMonthlyLimit:   cfg.UserMonthlyLimit,
	}
}
