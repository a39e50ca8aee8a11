package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

type window struct {
	count int
	until time.Time
}

// RateLimit enforces a fixed-window request quota per caller. The key is the
// resolved user identity when present so a shared NAT does not starve
// distinct callers; anonymous traffic falls back to the client IP.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	var mu sync.Mutex
	windows := make(map[string]*window)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := limitKey(r)
			mu.Lock()
			win, ok := windows[key]
			now := time.Now()
			if !ok || now.After(win.until) {
				win = &window{until: now.Add(per)}
				windows[key] = win
			}
			if win.count >= limit {
				retry := int(time.Until(win.until).Seconds())
				mu.Unlock()
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			win.count++
			mu.Unlock()
			next.ServeHTTP(w, r)
		})
	}
}

func limitKey(r *http.Request) string {
	if uid := r.Header.Get("X-User-ID"); uid != "" {
		return "u:" + uid
	}
	return "ip:" + clientIP(r)
}

func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if ip == "" {
				continue
			}
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && net.ParseIP(host) != nil {
		return host
	}
	return r.RemoteAddr
}
