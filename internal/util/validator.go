package util

import (
	"strconv"
	"strings"
	"time"
)

// Office subnet always treated as authorized: 192.168.18.1 - 192.168.18.100.
const (
	officeSubnetPrefix = "192.168.18."
	officeSubnetLow    = 1
	officeSubnetHigh   = 100

	loopback = "127.0.0.1"
)

// NormalizeIP maps loopback variants and the IPv4-in-IPv6 prefix to plain
// dotted-quad form. Empty input normalizes to 127.0.0.1: a request with no
// forwarded address is treated as local.
func NormalizeIP(ip string) string {
	ip = strings.TrimSpace(ip)
	if ip == "" || ip == "::1" {
		return loopback
	}
	if strings.HasPrefix(ip, "::ffff:") {
		return strings.TrimPrefix(ip, "::ffff:")
	}
	return ip
}

// IsAuthorizedIP reports whether ip may pass the gate: loopback, an exact
// match against the configured office IP, or the hard-coded office subnet.
// Anything that is not a clean dotted quad fails the subnet check.
func IsAuthorizedIP(ip, configuredIP string) bool {
	ip = NormalizeIP(ip)
	if ip == loopback {
		return true
	}
	if configuredIP != "" && ip == NormalizeIP(configuredIP) {
		return true
	}

	if !strings.HasPrefix(ip, officeSubnetPrefix) {
		return false
	}
	octets := strings.Split(ip, ".")
	if len(octets) != 4 {
		return false
	}
	last, err := strconv.Atoi(octets[3])
	if err != nil {
		return false
	}
	return last >= officeSubnetLow && last <= officeSubnetHigh
}

// IsWithinOfficeHours reports whether now (UTC) falls inside the
// start..end "HH:mm" window in office-local time (UTC shifted by
// offsetHours). An empty bound means unbounded. A window with
// start > end wraps past midnight.
func IsWithinOfficeHours(nowUTC time.Time, startHHMM, endHHMM string, offsetHours int) bool {
	if startHHMM == "" || endHHMM == "" {
		return true
	}

	local := nowUTC.UTC().Add(time.Duration(offsetHours) * time.Hour)
	now := local.Format("15:04")

	if startHHMM <= endHHMM {
		return now >= startHHMM && now <= endHHMM
	}
	// overnight window, e.g. 22:00 - 06:00
	return now >= startHHMM || now <= endHHMM
}
