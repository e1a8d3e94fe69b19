package audit

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
)

// FromRequest builds an entry for action on subjectID with the caller
// address and user agent of r. metadata is stored as JSON.
func FromRequest(r *http.Request, action, subjectID string, metadata any) (Entry, error) {
	entry := Entry{Action: action, SubjectID: subjectID}
	if r != nil {
		entry.IP = ClientIP(r)
		entry.UserAgent = r.UserAgent()
	}
	if metadata != nil {
		data, err := json.Marshal(metadata)
		if err != nil {
			return Entry{}, err
		}
		entry.Metadata = data
	}
	return entry, nil
}

// ClientIP resolves the caller address. The first parseable address in
// X-Forwarded-For wins, then X-Real-IP, then the connection peer.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	for _, candidate := range strings.Split(r.Header.Get("X-Forwarded-For"), ",") {
		if ip := parseIP(candidate); ip != "" {
			return ip
		}
	}
	if ip := parseIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if ip := parseIP(r.RemoteAddr); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// parseIP accepts a bare address or host:port and returns "" otherwise.
func parseIP(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(value); err == nil {
		value = host
	}
	ip := net.ParseIP(strings.Trim(value, "[]"))
	if ip == nil {
		return ""
	}
	return ip.String()
}
