// Package privacy scrubs identifying details from messages before they are logged or
// reported: device paths, broker hosts and credentials.
package privacy

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	// urlPattern finds broker and http URLs embedded in text.
	urlPattern = regexp.MustCompile(`\b(?:tcp|ssl|tls|ws|wss|mqtt|mqtts|https?)://\S+`)

	// pathPattern matches absolute paths under the well-known partitions. The partition
	// is kept so a report still tells overlay and vendor layouts apart.
	pathPattern = regexp.MustCompile(`(/(?:odm|vendor|system|data|home|root|tmp|usr))(/[^\s:'"]+)`)
)

// ScrubMessage replaces URLs with an anonymized form and collapses absolute paths to
// their partition.
func ScrubMessage(message string) string {
	message = urlPattern.ReplaceAllStringFunc(message, AnonymizeURL)
	return pathPattern.ReplaceAllString(message, "$1/[PATH]")
}

// RedactURL strips credentials, query and fragment from rawURL, keeping scheme, host,
// port and path. It is meant for local logs where the host is useful.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "[invalid-url]"
	}
	if u.User != nil {
		u.User = url.User("redacted")
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// AnonymizeURL converts a URL to a stable token that keeps the scheme and the kind of
// host, for reports leaving the machine.
func AnonymizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		hash := sha256.Sum256([]byte(rawURL))
		return fmt.Sprintf("url-hash-%x", hash[:8])
	}

	parts := []string{u.Scheme, categorizeHost(u.Hostname())}
	if port := u.Port(); port != "" {
		parts = append(parts, "port-"+port)
	}
	hash := sha256.Sum256([]byte(u.Host + u.Path))
	return fmt.Sprintf("%s-%x", strings.Join(parts, ":"), hash[:6])
}

// categorizeHost reduces a host name to its kind.
func categorizeHost(host string) string {
	switch {
	case host == "localhost" || host == "127.0.0.1" || host == "::1":
		return "localhost"
	case isPrivateIP(host):
		return "private-ip"
	case strings.Contains(host, ":") || isIPv4(host):
		return "public-ip"
	}
	if i := strings.LastIndexByte(host, '.'); i >= 0 && i < len(host)-1 {
		return "domain-" + host[i+1:]
	}
	return "host"
}

var privatePrefixes = []string{
	"10.", "192.168.", "169.254.",
	"fc", "fd", "fe80:",
}

func isPrivateIP(host string) bool {
	host = strings.ToLower(host)
	for _, p := range privatePrefixes {
		if strings.HasPrefix(host, p) && (strings.Contains(host, ":") || isIPv4(host)) {
			return true
		}
	}
	// 172.16.0.0/12
	var a, b int
	if _, err := fmt.Sscanf(host, "%d.%d.", &a, &b); err == nil && isIPv4(host) {
		return a == 172 && b >= 16 && b <= 31
	}
	return false
}

var ipv4Pattern = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)

func isIPv4(host string) bool {
	return ipv4Pattern.MatchString(host)
}
