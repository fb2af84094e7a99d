package rpcserver

import "testing"

func TestSplitNameAndBodyLengthPrefixed(t *testing.T) {
	payload := append(lenPrefixed("Echo"), []byte{1, 2, 3}...)
	method, body, malformed := splitNameAndBody(payload)
	if malformed {
		t.Fatal("unexpected malformed")
	}
	if method != "Echo" {
		t.Fatalf("method = %q", method)
	}
	if string(body) != "\x01\x02\x03" {
		t.Fatalf("body = %v", body)
	}
}

func TestSplitNameAndBodyZeroLengthFallsBackAndFails(t *testing.T) {
	// A declared length of exactly zero must not take the primary
	// length-prefixed path (mlen must be strictly positive); it falls
	// through to the ASCII-prefix parser, which here sees the length
	// prefix's leading NUL bytes and reports malformed.
	payload := append(lenPrefixed(""), []byte{9}...)
	_, _, malformed := splitNameAndBody(payload)
	if !malformed {
		t.Fatal("expected malformed")
	}
}

func TestSplitNameAndBodyNonPrintableNameFallsBackAndFails(t *testing.T) {
	// A declared length that fits the payload but whose name bytes are
	// not all printable ASCII must not be accepted verbatim on the
	// primary path; it falls through to the ASCII-prefix parser.
	name := string([]byte{'A', 0xFF, 'B'})
	payload := append(lenPrefixed(name), []byte("body")...)
	_, _, malformed := splitNameAndBody(payload)
	if !malformed {
		t.Fatal("expected malformed")
	}
}

func TestSplitNameAndBodyASCIIFallback(t *testing.T) {
	// Declared length doesn't fit: fall back to the ASCII-prefix parser.
	payload := []byte("Legacy.Method\x00\x01payload")
	method, body, malformed := splitNameAndBody(payload)
	if malformed {
		t.Fatal("unexpected malformed")
	}
	if method != "Legacy.Method" {
		t.Fatalf("method = %q", method)
	}
	if string(body) != "\x00\x01payload" {
		t.Fatalf("body = %q", body)
	}
}

func TestSplitNameAndBodyMalformed(t *testing.T) {
	payload := []byte{0x00, 0x00, 0x00}
	_, _, malformed := splitNameAndBody(payload)
	if !malformed {
		t.Fatal("expected malformed")
	}
}

func lenPrefixed(name string) []byte {
	n := int32(len(name))
	b := []byte{byte(n), byte(n >> 8), byte(n >> 16), byte(n >> 24)}
	return append(b, []byte(name)...)
}
