package cli

import (
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"fittrack/internal/domain"
)

var dateParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// parseDay turns "2026-10-01", "yesterday" or "last friday" into a calendar
// day relative to now. Empty input stays empty.
func parseDay(text string, now time.Time) (string, error) {
	if text == "" {
		return "", nil
	}
	if t, err := domain.ParseDay(text); err == nil {
		return domain.Day(t), nil
	}
	r, err := dateParser.Parse(text, now)
	if err != nil {
		return "", fmt.Errorf("parse date %q: %w", text, err)
	}
	if r == nil {
		return "", fmt.Errorf("unrecognized date %q", text)
	}
	return domain.Day(r.Time), nil
}
