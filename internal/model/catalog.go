package model

import "strings"

// Disposable and mainstream email providers.
var (
	TempEmailDomains = []string{
		"tempmail.net", "guerrillamail.com", "10minutemail.com",
		"throwaway.email", "mailinator.com", "temp-mail.org",
	}

	LegitimateEmailDomains = []string{
		"gmail.com", "yahoo.com", "hotmail.com", "outlook.com",
		"icloud.com", "protonmail.com", "aol.com",
	}
)

// ISO-3166 alpha-2 country pools split by fraud risk.
var (
	HighRiskCountries = []string{"RU", "NG", "CN", "PK", "ID", "UA", "VN"}
	LowRiskCountries  = []string{"US", "CA", "GB", "AU", "DE", "FR", "JP", "SE", "NL", "CH"}
	AllCountries      = append(append([]string{}, LowRiskCountries...), HighRiskCountries...)
)

// UserAgents includes automation clients that only abusive sessions use.
var UserAgents = []string{
	"Chrome/120.0",
	"Firefox/121.0",
	"Safari/17.0",
	"Edge/120.0",
	"Mobile Safari/16.0",
	"Chrome Mobile/120.0",
	"Bot/1.0",
	"curl/7.68.0",
}

// BrowserUserAgents are the user agents a real shopper would present.
var BrowserUserAgents = filterAgents(UserAgents)

func filterAgents(agents []string) []string {
	out := make([]string, 0, len(agents))
	for _, ua := range agents {
		if strings.Contains(ua, "Bot") || strings.Contains(ua, "curl") {
			continue
		}
		out = append(out, ua)
	}
	return out
}

// Card BIN prefixes (first six digits) by network.
var (
	VisaBINs       = []string{"424242", "411111", "440000", "456789"}
	MastercardBINs = []string{"540123", "555555", "522222", "510000"}
	AmexBINs       = []string{"378282", "371449", "370000"}
	DiscoverBINs   = []string{"601100", "644444", "650000"}

	AllCardBINs = concat(VisaBINs, MastercardBINs, AmexBINs, DiscoverBINs)
)

func concat(lists ...[]string) []string {
	var out []string
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// IsHighRiskCountry reports whether code is in the high-risk pool.
func IsHighRiskCountry(code string) bool {
	for _, c := range HighRiskCountries {
		if c == code {
			return true
		}
	}
	return false
}
