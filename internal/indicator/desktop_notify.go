package indicator

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

const notificationsObject = "org.freedesktop.Notifications"

// callNotifications invokes one method on the freedesktop notification
// service through busctl and returns its trimmed stdout.
func callNotifications(ctx context.Context, method string, signature string, args ...string) (string, error) {
	busctlArgs := append([]string{
		"--user", "call",
		notificationsObject,
		"/org/freedesktop/Notifications",
		notificationsObject,
		method,
		signature,
	}, args...)

	out, err := exec.CommandContext(ctx, "busctl", busctlArgs...).CombinedOutput()
	trimmed := strings.TrimSpace(string(out))
	if err != nil {
		if trimmed == "" {
			return "", fmt.Errorf("busctl %s: %w", method, err)
		}
		return "", fmt.Errorf("busctl %s: %w (%s)", method, err, trimmed)
	}
	return trimmed, nil
}

// desktopNotify posts (or, with a non-zero replaceID, updates) a kiosk
// notification and returns the server-assigned ID.
func desktopNotify(ctx context.Context, appName string, replaceID uint32, summary string, timeoutMS int) (uint32, error) {
	// Argument order per the Notify signature: app name, replaced ID,
	// icon, summary, body, actions, hints, expiry. Icon and body stay
	// empty; the summary carries the whole indicator line.
	out, err := callNotifications(ctx, "Notify", "susssasa{sv}i",
		appName,
		strconv.FormatUint(uint64(replaceID), 10),
		"",
		summary,
		"",
		"0", // actions array length
		"0", // hints map length
		strconv.Itoa(timeoutMS),
	)
	if err != nil {
		return 0, err
	}
	return parseNotifyID(out)
}

// desktopDismiss closes the notification with the given server ID.
func desktopDismiss(ctx context.Context, id uint32) error {
	_, err := callNotifications(ctx, "CloseNotification", "u", strconv.FormatUint(uint64(id), 10))
	return err
}

// parseNotifyID extracts the uint32 from busctl's typed reply ("u <id>").
func parseNotifyID(out string) (uint32, error) {
	fields := strings.Fields(out)
	if len(fields) < 2 || fields[0] != "u" {
		return 0, fmt.Errorf("unexpected Notify reply: %q", out)
	}
	id, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse notification id %q: %w", fields[1], err)
	}
	return uint32(id), nil
}
