package pdf

import (
	"fmt"
	"strings"
	"time"
)

const (
	unlimitedVoice = 99999
	monthDays      = 28
	placeholder    = "-"
)

// FormatData renders an allowance in megabytes, switching to whole gigabytes
// at 1024 MB: 1024 -> "1 Go", 2047 -> "1 Go", 512 -> "512 Mo". Zero is "".
func FormatData(mb int, tr func(string) string) string {
	if mb <= 0 {
		return ""
	}
	if mb < 1024 {
		return fmt.Sprintf("%d %s", mb, tr("unit.mb"))
	}
	return fmt.Sprintf("%d %s", mb/1024, tr("unit.gb"))
}

// FormatValidity renders a validity period; periods of 28 days or more are a month.
func FormatValidity(days int, tr func(string) string) string {
	switch {
	case days <= 0:
		return ""
	case days >= monthDays:
		return "1 " + tr("unit.month")
	case days == 1:
		return "1 " + tr("unit.day")
	default:
		return fmt.Sprintf("%d %s", days, tr("unit.days"))
	}
}

// FormatVoice renders voice minutes. Zero is "".
func FormatVoice(minutes int, tr func(string) string) string {
	switch {
	case minutes <= 0:
		return ""
	case minutes >= unlimitedVoice:
		return tr("unit.unlimited")
	default:
		return fmt.Sprintf("%d %s", minutes, tr("unit.min"))
	}
}

// FormatSMS renders an SMS allowance. Zero is "".
func FormatSMS(count int) string {
	if count <= 0 {
		return ""
	}
	return fmt.Sprintf("%d SMS", count)
}

// FormatPrice renders a price with its currency; dinars print as "DA".
func FormatPrice(price float64, currency string) string {
	unit := strings.ToUpper(strings.TrimSpace(currency))
	if unit == "" || unit == "DZD" {
		unit = "DA"
	}
	if price == float64(int64(price)) {
		return fmt.Sprintf("%d %s", int64(price), unit)
	}
	return fmt.Sprintf("%.2f %s", price, unit)
}

// FormatPhone groups a 10 digit number as 4-2-2-2. Other values are
// returned trimmed.
func FormatPhone(number string) string {
	n := strings.TrimSpace(number)
	var digits strings.Builder
	for _, r := range n {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == ' ' || r == '-' || r == '.':
		default:
			return n
		}
	}
	d := digits.String()
	if len(d) != 10 {
		return n
	}
	return d[:4] + " " + d[4:6] + " " + d[6:8] + " " + d[8:]
}

// FormatDate renders day/month/year. The zero time is "".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatDate(*t)
}

func orDash(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return placeholder
	}
	return s
}
