package logging

import "strings"

// secretKeyPatterns contains substrings that indicate a log attribute key
// likely carries sensitive data. Keys are matched case-insensitively.
// Backup passwords, derived keys, and storage credentials must never
// reach a log file in the clear. "_KEY" rather than "KEY" so ordinary
// attribute names like "key" or "monkeys" pass through unmasked.
var secretKeyPatterns = []string{
	"PASSWORD",
	"PASSPHRASE",
	"_KEY",
	"APIKEY",
	"SECRET",
	"TOKEN",
	"AUTH",
	"CREDENTIAL",
	"PRIVATE",
}

// tokenPrefixes contains known credential prefixes that indicate sensitive
// values regardless of key name.
var tokenPrefixes = []string{
	"AKIA", // AWS access key id
	"ASIA", // AWS temporary access key id
	"ghp_", // GitHub personal access token
	"gho_", // GitHub OAuth token
}

// ShouldMask returns true if the key name suggests it contains sensitive data.
// Matching is case-insensitive.
func ShouldMask(key string) bool {
	upper := strings.ToUpper(key)
	for _, pattern := range secretKeyPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}

// ContainsTokenPrefix returns true if the value starts with a known
// credential prefix. This catches cases where the key name doesn't indicate
// sensitivity but the value is clearly a credential.
func ContainsTokenPrefix(value string) bool {
	for _, prefix := range tokenPrefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}

// MaskValue masks a potentially sensitive string value.
// Values with 4 or fewer characters are fully masked as "********".
// Longer values show the last 4 characters: "****xxxx".
func MaskValue(value string) string {
	if len(value) <= 4 {
		return "********"
	}
	return "****" + value[len(value)-4:]
}
