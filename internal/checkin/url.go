package checkin

import (
	"fmt"
	"net/url"
	"strings"
)

// IssueCheckInURL builds the canonical check-in URL for an event:
// {origin}/event/{id}/check-in. It is computed once when the event is created
// and stays stable for the event's lifetime.
func IssueCheckInURL(origin, eventID string) (string, error) {
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	if origin == "" {
		return "", fmt.Errorf("checkin: origin is required")
	}
	if strings.TrimSpace(eventID) == "" {
		return "", fmt.Errorf("checkin: event id is required")
	}
	base, err := url.Parse(origin)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("checkin: invalid origin %q", origin)
	}
	return fmt.Sprintf("%s/event/%s/check-in", origin, url.PathEscape(eventID)), nil
}

// ParseCheckInURL extracts the event id from a scanned check-in URL. The
// canonical path is /event/{id}/check-in; /event-check-in/{id} is a
// deprecated alias still found on older printed codes and remains accepted.
func ParseCheckInURL(raw string) (string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}

	segments := splitPath(parsed.Path)

	if len(segments) == 3 && segments[0] == "event" && segments[2] == "check-in" && segments[1] != "" {
		if id, err := url.PathUnescape(segments[1]); err == nil {
			return id, true
		}
		return "", false
	}

	if len(segments) == 2 && segments[0] == "event-check-in" && segments[1] != "" {
		if id, err := url.PathUnescape(segments[1]); err == nil {
			return id, true
		}
		return "", false
	}

	return "", false
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
