package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Profile is the company-level business configuration printed on documents
// and applied when transactions are entered.
type Profile struct {
	CompanyName     string `yaml:"company_name"`
	Address         string `yaml:"address"`
	Phone           string `yaml:"phone"`
	NPWP            string `yaml:"npwp"`
	PKP             bool   `yaml:"pkp"`
	PPNRate         string `yaml:"ppn_rate"`
	InvoiceDueDays  int    `yaml:"invoice_due_days"`
	TopClientsLimit int    `yaml:"top_clients_limit"`
	WorkStart       string `yaml:"work_start"`
	StandardHours   int    `yaml:"standard_hours"`
	Timezone        string `yaml:"timezone"`
}

func DefaultProfile() Profile {
	return Profile{
		CompanyName:     "C2 Cargo",
		PKP:             true,
		PPNRate:         "0.011",
		InvoiceDueDays:  14,
		TopClientsLimit: 5,
		WorkStart:       "08:00",
		StandardHours:   8,
		Timezone:        "Asia/Jakarta",
	}
}

func LoadProfile(path string) (Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read company profile: %w", err)
	}
	profile := DefaultProfile()
	if err := yaml.Unmarshal(raw, &profile); err != nil {
		return Profile{}, fmt.Errorf("parse company profile: %w", err)
	}
	return profile, nil
}

// Rate returns the PPN rate as a fraction. Invalid values were rejected by
// Validate, so a parse failure here yields zero.
func (p Profile) Rate() decimal.Decimal {
	rate, err := decimal.NewFromString(p.PPNRate)
	if err != nil {
		return decimal.Zero
	}
	return rate
}

// Location resolves Timezone; hosts without tzdata fall back to WIB.
func (p Profile) Location() *time.Location {
	if loc, err := time.LoadLocation(p.Timezone); err == nil {
		return loc
	}
	return time.FixedZone("WIB", 7*60*60)
}

// WorkStartOn returns the configured start of the working day on the date of t.
func (p Profile) WorkStartOn(t time.Time) time.Time {
	start, err := time.Parse("15:04", p.WorkStart)
	if err != nil {
		start, _ = time.Parse("15:04", "08:00")
	}
	return time.Date(t.Year(), t.Month(), t.Day(), start.Hour(), start.Minute(), 0, 0, t.Location())
}

func (p Profile) Validate() error {
	rate, err := decimal.NewFromString(p.PPNRate)
	if err != nil {
		return fmt.Errorf("ppn_rate must be a decimal fraction: %w", err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("ppn_rate must be between 0 and 1")
	}
	if p.InvoiceDueDays < 0 {
		return fmt.Errorf("invoice_due_days must not be negative")
	}
	if p.TopClientsLimit <= 0 {
		return fmt.Errorf("top_clients_limit must be positive")
	}
	if _, err := time.Parse("15:04", p.WorkStart); err != nil {
		return fmt.Errorf("work_start must be HH:MM")
	}
	if p.StandardHours <= 0 {
		return fmt.Errorf("standard_hours must be positive")
	}
	return nil
}
