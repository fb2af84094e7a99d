package rpc

import "testing"

func TestParseMethod(t *testing.T) {
	cases := []struct {
		full    string
		service string
		method  string
		ok      bool
	}{
		{"Echo.Ping", "Echo", "Ping", true},
		{"ns.Echo.Ping", "ns.Echo", "Ping", true},
		{"NoDot", "", "", false},
		{"TrailingDot.", "", "", false},
		{".LeadingDot", "", "LeadingDot", true},
	}
	for _, c := range cases {
		service, method, ok := ParseMethod(c.full)
		if ok != c.ok || service != c.service || method != c.method {
			t.Errorf("ParseMethod(%q) = (%q, %q, %v), want (%q, %q, %v)",
				c.full, service, method, ok, c.service, c.method, c.ok)
		}
	}
}

func TestJoinMethodIsInverse(t *testing.T) {
	service, method, ok := ParseMethod(JoinMethod("Echo", "Ping"))
	if !ok || service != "Echo" || method != "Ping" {
		t.Fatalf("JoinMethod/ParseMethod round trip failed: %q %q %v", service, method, ok)
	}
}
