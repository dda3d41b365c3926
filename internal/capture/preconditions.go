package capture

import (
	"context"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/Ahmed-Hamed789/BMO-AI/internal/config"
)

// CheckPreconditions verifies the three start-blocking requirements before
// any capture attempt: a capture capability is configured, the endpoints form
// a secure execution context, and the machine is online. A miss returns
// *UnavailableError and the caller must not start capture.
func CheckPreconditions(ctx context.Context, cfg config.Config) error {
	if cfg.Capture.Strategy == config.StrategyStream && strings.TrimSpace(cfg.Recognizer.URL) == "" {
		return &UnavailableError{Reason: "no speech recognizer is configured"}
	}

	if reason := insecureEndpoint(cfg); reason != "" {
		return &UnavailableError{Reason: reason}
	}

	if !online(ctx) {
		return &UnavailableError{Reason: "network is offline"}
	}

	return nil
}

// insecureEndpoint rejects plaintext transport to non-local hosts. Loopback
// endpoints are treated as secure, mirroring browser secure-context rules.
func insecureEndpoint(cfg config.Config) string {
	if reason := checkScheme(cfg.Backend.URL, "http"); reason != "" {
		return "backend " + reason
	}
	if cfg.Recognizer.URL != "" {
		if reason := checkScheme(cfg.Recognizer.URL, "ws"); reason != "" {
			return "recognizer " + reason
		}
	}
	return ""
}

func checkScheme(raw string, plainScheme string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Host == "" {
		return "endpoint is not a valid URL: " + raw
	}
	if parsed.Scheme != plainScheme {
		return ""
	}
	if isLoopback(parsed.Hostname()) {
		return ""
	}
	return "endpoint " + raw + " is not a secure context (plain " + plainScheme + " to a remote host)"
}

func isLoopback(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// online reports whether any non-loopback interface currently has an address.
// A routable address is the same signal browsers expose as navigator.onLine:
// it does not guarantee the backend is reachable, only that a network exists.
func online(ctx context.Context) bool {
	done := make(chan bool, 1)
	go func() {
		addrs, err := net.InterfaceAddrs()
		if err != nil {
			done <- false
			return
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok || ipNet.IP.IsLoopback() {
				continue
			}
			if ipNet.IP.To4() != nil || ipNet.IP.To16() != nil {
				done <- true
				return
			}
		}
		done <- false
	}()

	select {
	case ok := <-done:
		return ok
	case <-ctx.Done():
		return false
	case <-time.After(500 * time.Millisecond):
		return false
	}
}
