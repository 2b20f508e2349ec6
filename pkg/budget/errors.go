package budget

import (
	"errors"
	"fmt"
)

// ErrBudgetExceeded is matched by every LimitError.
var ErrBudgetExceeded = errors.New("budget exceeded")

// Window names a spending ceiling.
type Window string

const (
	WindowDaily       Window = "daily"
	WindowMonthly     Window = "monthly"
	WindowUserDaily   Window = "user_daily"
	WindowUserMonthly Window = "user_monthly"
)

// LimitError reports a call refused because it would exceed a ceiling.
type LimitError struct {
	Window    Window
	UserID    string
	Limit     float64
	Current   float64
	Estimated float64
}

func (e *LimitError) Error() string {
	if e.UserID != "" {
		return fmt.Sprintf("%s limit for user %s exceeded: %.4f + %.4f > %.4f",
			e.Window, e.UserID, e.Current, e.Estimated, e.Limit)
	}
	return fmt.Sprintf("%s limit exceeded: %.4f + %.4f > %.4f",
		e.Window, e.Current, e.Estimated, e.Limit)
}

// Is reports whether target is ErrBudgetExceeded.
func (e *LimitError) Is(target error) bool {
	return target == ErrBudgetExceeded
}
