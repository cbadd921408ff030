package ratelimiter

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP keys requests by client address. With trustProxy the first valid
// address in X-Forwarded-For or X-Real-IP is used; only enable it behind a
// proxy that overwrites those headers.
func ClientIP(trustProxy bool) KeyFunc {
	return func(r *http.Request) string {
		if trustProxy {
			for ip := range strings.SplitSeq(r.Header.Get("X-Forwarded-For"), ",") {
				if parsed := parseIP(ip); parsed != "" {
					return parsed
				}
			}
			if parsed := parseIP(r.Header.Get("X-Real-IP")); parsed != "" {
				return parsed
			}
		}

		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return parseIP(r.RemoteAddr)
		}
		return parseIP(host)
	}
}

func parseIP(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return ""
	}
	return ip.String()
}
