package config

import (
	"fmt"
	"time"
)

// MailConfig defines the SMTP relay and the distribution lists.
type MailConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	// TLS is one of "none", "opportunistic" or "mandatory".
	TLS       string        `json:"tls"`
	Timeout   time.Duration `json:"timeout"`
	Sender    string        `json:"sender"`
	Signature string        `json:"signature"`
	// Recipients maps a list name (all, supervisors, operations) to addresses.
	Recipients      map[string][]string `json:"recipients"`
	DebugRecipients []string            `json:"debug_recipients"`
	// MasterList names the list receiving the master report.
	MasterList string `json:"master_list"`
}

// SetDefaults applies sane defaults.
func (c *MailConfig) SetDefaults() {
	if c.Port == 0 {
		c.Port = 25
	}
	if c.TLS == "" {
		c.TLS = "opportunistic"
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MasterList == "" {
		c.MasterList = "all"
	}
}

// Validate checks mandatory fields.
func (c MailConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("mail host is required")
	}
	if c.Sender == "" {
		return fmt.Errorf("mail sender is required")
	}
	switch c.TLS {
	case "none", "opportunistic", "mandatory":
	default:
		return fmt.Errorf("unknown mail tls policy %s", c.TLS)
	}
	if _, ok := c.Recipients[c.MasterList]; !ok {
		return fmt.Errorf("recipient list %s is not defined", c.MasterList)
	}
	return nil
}
