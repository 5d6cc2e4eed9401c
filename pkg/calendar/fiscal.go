package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidFiscalQuarter = errors.New("invalid fiscal quarter ending")

var monthToQuarter = map[string]int{
	"Jan": 1, "Feb": 1, "Mar": 1,
	"Apr": 2, "May": 2, "Jun": 2,
	"Jul": 3, "Aug": 3, "Sep": 3,
	"Oct": 4, "Nov": 4, "Dec": 4,
}

// ParseFiscalQuarter parses a fiscal quarter ending such as "Sep/2024" into
// its fiscal year and quarter number. Only the first three letters of the
// month are significant.
func ParseFiscalQuarter(s string) (year int, quarter int, err error) {
	month, yearPart, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q: missing '/'", ErrInvalidFiscalQuarter, s)
	}

	year, err = strconv.Atoi(yearPart)
	if err != nil || len(yearPart) != 4 {
		return 0, 0, fmt.Errorf("%w: %q: bad year", ErrInvalidFiscalQuarter, s)
	}

	if len(month) < 3 {
		return 0, 0, fmt.Errorf("%w: %q: bad month", ErrInvalidFiscalQuarter, s)
	}

	quarter, ok = monthToQuarter[month[:3]]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q: unknown month", ErrInvalidFiscalQuarter, s)
	}

	return year, quarter, nil
}

// quarterEnding renders a fiscal quarter as the "Mon/YYYY" form the parser
// accepts, using the last month of the quarter.
func quarterEnding(year, quarter int) string {
	if quarter < 1 || quarter > 4 {
		return ""
	}
	return fmt.Sprintf("%s/%04d", time.Month(quarter*3).String()[:3], year)
}
