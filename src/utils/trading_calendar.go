package utils

import (
	"log"
	"strings"
	"time"

	"github.com/scmhub/calendar"
)

// TradingCalendar wraps scmhub/calendar for the exchanges the quote API
// covers. Symbols carry ISO-suffixes: .SS/.SH Shanghai, .SZ Shenzhen,
// .BJ Beijing (approximated with the Shanghai calendar).
type TradingCalendar struct {
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

func GetCalendar(symbol string) *TradingCalendar {
	// Map symbol suffix to MIC code (ISO 10383)
	mic := "xshg"
	if strings.HasSuffix(symbol, ".SZ") {
		mic = "xshe"
	} else if strings.HasSuffix(symbol, ".HK") {
		mic = "xhkg"
	}

	cal := calendar.GetCalendar(mic)
	if cal == nil {
		cal = calendar.GetCalendar("xshg")
	}

	if cal == nil {
		log.Printf("WARNING: Failed to load calendar for MIC '%s'. Using simple fallback (Mon-Fri 09:30-15:00 Asia/Shanghai).", mic)
		cnLoc, _ := time.LoadLocation("Asia/Shanghai")
		if cnLoc == nil {
			cnLoc = time.UTC
		}
		return &TradingCalendar{Fallback: true, Timezone: cnLoc}
	}

	return &TradingCalendar{Calendar: cal, Fallback: false, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpenOnMinute checks if the market is open at a specific minute.
func (tc *TradingCalendar) IsOpenOnMinute(t time.Time) bool {
	if tc.Timezone != nil {
		t = t.In(tc.Timezone)
	}

	if tc.Fallback {
		if !tc.IsTradingDay(t) {
			return false
		}

		hour := t.Hour()
		minute := t.Minute()

		// 09:30 - 15:00 local, lunch break ignored by the fallback
		if (hour > 9 || (hour == 9 && minute >= 30)) && hour < 15 {
			return true
		}
		return false
	}

	return tc.Calendar.IsOpen(t)
}
