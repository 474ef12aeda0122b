package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalizeIP(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "127.0.0.1"},
		{"::1", "127.0.0.1"},
		{"::ffff:192.168.18.5", "192.168.18.5"},
		{"10.0.0.5", "10.0.0.5"},
		{"  192.168.18.7 ", "192.168.18.7"},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, NormalizeIP(tc.in), "NormalizeIP(%q)", tc.in)
	}
}

func TestIsAuthorizedIP_OfficeSubnet(t *testing.T) {
	cases := []struct {
		ip   string
		want bool
	}{
		{"192.168.18.1", true},
		{"192.168.18.50", true},
		{"192.168.18.100", true},
		{"192.168.18.101", false},
		{"192.168.18.0", false},
		{"192.168.19.5", false},
		{"192.168.18.abc", false},
		{"192.168.18.5.6", false},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, IsAuthorizedIP(tc.ip, "203.0.113.9"), "IsAuthorizedIP(%q)", tc.ip)
	}
}

func TestIsAuthorizedIP_ConfiguredAndLoopback(t *testing.T) {
	require.True(t, IsAuthorizedIP("10.0.0.5", "10.0.0.5"))
	require.False(t, IsAuthorizedIP("10.0.0.6", "10.0.0.5"))
	require.False(t, IsAuthorizedIP("10.0.0.5", ""))

	// loopback is always trusted, whatever is configured
	require.True(t, IsAuthorizedIP("::1", "0.0.0.0"))
	require.True(t, IsAuthorizedIP("127.0.0.1", "0.0.0.0"))
	require.True(t, IsAuthorizedIP("", "0.0.0.0"))

	// IPv4-in-IPv6 form matches the configured address
	require.True(t, IsAuthorizedIP("::ffff:10.0.0.5", "10.0.0.5"))
}

func TestIsWithinOfficeHours(t *testing.T) {
	// 18:30 UTC is 23:30 office time at offset +5
	at := func(hh, mm int) time.Time {
		return time.Date(2026, 3, 10, hh, mm, 0, 0, time.UTC)
	}

	cases := []struct {
		name       string
		now        time.Time
		start, end string
		want       bool
	}{
		{"inside plain window", at(5, 0), "09:00", "18:00", true},   // 10:00 local
		{"outside plain window", at(15, 0), "09:00", "18:00", false}, // 20:00 local
		{"boundary start", at(4, 0), "09:00", "18:00", true},         // 09:00 local
		{"overnight inside late", at(18, 30), "22:00", "06:00", true},  // 23:30 local
		{"overnight inside early", at(23, 0), "22:00", "06:00", true},  // 04:00 local
		{"overnight outside", at(7, 0), "22:00", "06:00", false},       // 12:00 local
		{"unbounded start", at(15, 0), "", "18:00", true},
		{"unbounded end", at(15, 0), "09:00", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, IsWithinOfficeHours(tc.now, tc.start, tc.end, 5))
		})
	}
}
