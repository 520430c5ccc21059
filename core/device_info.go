package core

import (
	"fmt"
	"regexp"
	"strings"
)

const unknownDeviceLabel = "Unknown Device"

type uaPattern struct {
	name string
	re   *regexp.Regexp
}

// Detection is first-match-wins in declaration order. An Edge user agent
// carries both "Chrome" and "Edg" tokens and is therefore reported as
// Chrome, and an Android user agent carrying "Linux" is reported as Linux.
// Both quirks are part of the label contract; do not reorder to "fix" them.
var browserPatterns = []uaPattern{
	{name: "Chrome", re: regexp.MustCompile(`Chrome/([\d.]+)`)},
	{name: "Firefox", re: regexp.MustCompile(`Firefox/([\d.]+)`)},
	{name: "Safari", re: regexp.MustCompile(`Version/([\d.]+).*Safari`)},
	{name: "Edge", re: regexp.MustCompile(`Edg/([\d.]+)`)},
}

var osPatterns = []uaPattern{
	{name: "Windows", re: regexp.MustCompile(`Windows NT`)},
	{name: "Mac OS", re: regexp.MustCompile(`Mac OS X`)},
	{name: "Linux", re: regexp.MustCompile(`Linux`)},
	{name: "iOS", re: regexp.MustCompile(`iPhone|iPad`)},
	{name: "Android", re: regexp.MustCompile(`Android`)},
}

// GenerateDeviceInfo builds a best-effort device label from the request's
// user agent and address, e.g. "Chrome 120.0.0.0 | Windows | IP: 1.2.3.4".
// With no signal at all it returns "Unknown Device".
func GenerateDeviceInfo(userAgent, ipAddress string) string {
	parts := []string{}

	if trimmed := strings.TrimSpace(userAgent); trimmed != "" {
		if browser := detectBrowser(trimmed); browser != "" {
			parts = append(parts, browser)
		}
		if os := detectOS(trimmed); os != "" {
			parts = append(parts, os)
		}
	}
	if trimmed := strings.TrimSpace(ipAddress); trimmed != "" {
		parts = append(parts, "IP: "+trimmed)
	}

	if len(parts) == 0 {
		return unknownDeviceLabel
	}
	return strings.Join(parts, " | ")
}

func detectBrowser(userAgent string) string {
	for _, pattern := range browserPatterns {
		match := pattern.re.FindStringSubmatch(userAgent)
		if match == nil {
			continue
		}
		if len(match) > 1 && match[1] != "" {
			return fmt.Sprintf("%s %s", pattern.name, match[1])
		}
		return pattern.name
	}
	return ""
}

func detectOS(userAgent string) string {
	for _, pattern := range osPatterns {
		if pattern.re.MatchString(userAgent) {
			return pattern.name
		}
	}
	return ""
}
