package pdf

import (
	"testing"
	"time"

	"github.com/diewo77/go-contracts/internal/i18n"
)

var fr = i18n.Translator("fr")

func TestFormatData(t *testing.T) {
	tests := []struct {
		mb   int
		want string
	}{
		{0, ""},
		{512, "512 Mo"},
		{1023, "1023 Mo"},
		{1024, "1 Go"},
		{1536, "1 Go"},
		{2047, "1 Go"},
		{3071, "2 Go"},
		{51200, "50 Go"},
		{102400, "100 Go"},
	}
	for _, tt := range tests {
		if got := FormatData(tt.mb, fr); got != tt.want {
			t.Errorf("FormatData(%d) = %q, want %q", tt.mb, got, tt.want)
		}
	}
	if got := FormatData(2048, i18n.Translator("en")); got != "2 GB" {
		t.Errorf("FormatData(2048, en) = %q, want 2 GB", got)
	}
}

func TestFormatValidity(t *testing.T) {
	tests := []struct {
		days int
		want string
	}{
		{0, ""},
		{1, "1 jour"},
		{3, "3 jours"},
		{15, "15 jours"},
		{27, "27 jours"},
		{28, "1 mois"},
		{30, "1 mois"},
	}
	for _, tt := range tests {
		if got := FormatValidity(tt.days, fr); got != tt.want {
			t.Errorf("FormatValidity(%d) = %q, want %q", tt.days, got, tt.want)
		}
	}
}

func TestFormatVoiceAndSMS(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, ""},
		{500, "500 min"},
		{99999, "Illimités"},
	}
	for _, tt := range tests {
		if got := FormatVoice(tt.minutes, fr); got != tt.want {
			t.Errorf("FormatVoice(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
	if got := FormatSMS(0); got != "" {
		t.Errorf("FormatSMS(0) = %q, want empty", got)
	}
	if got := FormatSMS(100); got != "100 SMS" {
		t.Errorf("FormatSMS(100) = %q", got)
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		price    float64
		currency string
		want     string
	}{
		{1500, "DZD", "1500 DA"},
		{1500, "", "1500 DA"},
		{99.5, "dzd", "99.50 DA"},
		{12, "EUR", "12 EUR"},
	}
	for _, tt := range tests {
		if got := FormatPrice(tt.price, tt.currency); got != tt.want {
			t.Errorf("FormatPrice(%v, %q) = %q, want %q", tt.price, tt.currency, got, tt.want)
		}
	}
}

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0770123456", "0770 12 34 56"},
		{" 0770-12-34-56 ", "0770 12 34 56"},
		{"077012", "077012"},
		{"+213770123456", "+213770123456"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := FormatPhone(tt.in); got != tt.want {
			t.Errorf("FormatPhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate(time.Date(2024, 1, 9, 15, 0, 0, 0, time.UTC)); got != "09/01/2024" {
		t.Errorf("FormatDate() = %q", got)
	}
	if got := FormatDate(time.Time{}); got != "" {
		t.Errorf("FormatDate(zero) = %q", got)
	}
	if got := formatDatePtr(nil); got != "" {
		t.Errorf("formatDatePtr(nil) = %q", got)
	}
	if got := orDash("  "); got != "-" {
		t.Errorf("orDash(blank) = %q", got)
	}
}
