package dashboard

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	ActivityAdmission = "admission"
	ActivityPayment   = "payment"
	ActivityInquiry   = "inquiry"
)

var moneyPrinter = message.NewPrinter(language.English)

type Stats struct {
	TotalStudents    int             `json:"totalStudents"` // active students
	NewAdmissions    int             `json:"newAdmissions"` // this month
	FeesCollected    decimal.Decimal `json:"feesCollected"`
	PendingInquiries int             `json:"pendingInquiries"`
	TotalPendingFees decimal.Decimal `json:"totalPendingFees"`
	PendingFees      int             `json:"pendingFees"`
	LastUpdated      time.Time       `json:"lastUpdated"`
}

type RecentActivity struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Time      string    `json:"time"` // relative to now, e.g. "2 hours ago"
	Timestamp time.Time `json:"timestamp"`
}

// RelativeTime describes how long ago `t` was, from `now`:
// in minutes under an hour, in hours under a day, in days otherwise.
func RelativeTime(t, now time.Time) string {
	elapsed := now.Sub(t)
	if elapsed < 0 {
		elapsed = 0
	}
	switch {
	case elapsed < time.Hour:
		return ago(int(elapsed/time.Minute), "minute")
	case elapsed < 24*time.Hour:
		return ago(int(elapsed/time.Hour), "hour")
	default:
		return ago(int(elapsed/(24*time.Hour)), "day")
	}
}

func ago(n int, unit string) string {
	if n != 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s ago", n, unit)
}

// formatMoney formats an amount in dollars with thousands separators, e.g. "$1,500.00".
func formatMoney(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return moneyPrinter.Sprintf("$%.2f", f)
}
