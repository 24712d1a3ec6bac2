package bridge

import (
	"bytes"
	"strings"
	"testing"
)

func runScanner(t *testing.T, input string) (terminal string, requests []string) {
	t.Helper()
	var out bytes.Buffer
	s := NewScanner(&out, func(line string) {
		requests = append(requests, line)
	})
	if err := s.Run(strings.NewReader(input)); err != nil {
		t.Fatalf("scanner error: %v", err)
	}
	return out.String(), requests
}

func TestScannerPassthroughIdentity(t *testing.T) {
	inputs := []string{
		"",
		"hello world\n",
		"line one\nline two\npartial tail without newline",
		"\n\n\n",
		"binary \x00\x01\x02 bytes\xff\n",
		"_ underscore but not a marker\n__also not\n",
	}
	for _, input := range inputs {
		terminal, requests := runScanner(t, input)
		if terminal != input {
			t.Fatalf("passthrough mismatch for %q:\n got %q", input, terminal)
		}
		if len(requests) != 0 {
			t.Fatalf("unexpected dispatches for %q: %v", input, requests)
		}
	}
}

func TestScannerDispatchesRequestLineExactlyOnce(t *testing.T) {
	input := "boot ok\n" + RequestMarker + `{"model":"claude"}` + "\nafter\n"
	terminal, requests := runScanner(t, input)
	if terminal != "boot ok\nafter\n" {
		t.Fatalf("terminal mismatch: %q", terminal)
	}
	if len(requests) != 1 || requests[0] != `{"model":"claude"}` {
		t.Fatalf("dispatch mismatch: %v", requests)
	}
}

func TestScannerDropsCarriageReturnsInPayload(t *testing.T) {
	input := RequestMarker + "{\"a\":1}\r\n"
	_, requests := runScanner(t, input)
	if len(requests) != 1 || requests[0] != `{"a":1}` {
		t.Fatalf("payload mismatch: %v", requests)
	}
}

func TestScannerSuppressesResponseEcho(t *testing.T) {
	input := ResponseMarker + `{"id":"msg"}` + "\nvisible\n"
	terminal, requests := runScanner(t, input)
	if terminal != "visible\n" {
		t.Fatalf("terminal mismatch: %q", terminal)
	}
	if len(requests) != 0 {
		t.Fatalf("response echo must not dispatch: %v", requests)
	}
}

func TestScannerMarkerMidLineIsNotDetected(t *testing.T) {
	input := "prefix " + RequestMarker + "{\"x\":1}\n"
	terminal, requests := runScanner(t, input)
	if terminal != input {
		t.Fatalf("mid-line marker should pass through: %q", terminal)
	}
	if len(requests) != 0 {
		t.Fatalf("mid-line marker must not dispatch: %v", requests)
	}
}

func TestScannerDivergedPrefixFlushedVerbatim(t *testing.T) {
	// Shares 15 bytes with the request marker before diverging.
	input := "__zclaw_llm_reqX rest\n"
	terminal, requests := runScanner(t, input)
	if terminal != input {
		t.Fatalf("diverged prefix mismatch: %q", terminal)
	}
	if len(requests) != 0 {
		t.Fatalf("unexpected dispatches: %v", requests)
	}
}

func TestScannerDivergenceOnNewlineStaysInDetect(t *testing.T) {
	// "__z\n" diverges on the newline itself; the next line must still be
	// eligible for marker detection.
	input := "__z\n" + RequestMarker + "{}\n"
	terminal, requests := runScanner(t, input)
	if terminal != "__z\n" {
		t.Fatalf("terminal mismatch: %q", terminal)
	}
	if len(requests) != 1 || requests[0] != "{}" {
		t.Fatalf("dispatch mismatch: %v", requests)
	}
}

func TestScannerFlushesPartialMarkerAtEOF(t *testing.T) {
	input := "__zclaw_llm"
	terminal, requests := runScanner(t, input)
	if terminal != input {
		t.Fatalf("partial marker should flush at EOF: %q", terminal)
	}
	if len(requests) != 0 {
		t.Fatalf("unexpected dispatches: %v", requests)
	}
}

func TestScannerDispatchesUnterminatedRequestAtEOF(t *testing.T) {
	input := RequestMarker + `{"tail":true}`
	terminal, requests := runScanner(t, input)
	if terminal != "" {
		t.Fatalf("request payload must not reach the terminal: %q", terminal)
	}
	if len(requests) != 1 || requests[0] != `{"tail":true}` {
		t.Fatalf("dispatch mismatch: %v", requests)
	}
}

func TestScannerInterleavedTraffic(t *testing.T) {
	input := "log a\n" +
		RequestMarker + "{\"n\":1}\n" +
		ResponseMarker + "{\"ok\":1}\n" +
		"log b\n" +
		RequestMarker + "{\"n\":2}\n" +
		"log c\n"
	terminal, requests := runScanner(t, input)
	if terminal != "log a\nlog b\nlog c\n" {
		t.Fatalf("terminal mismatch: %q", terminal)
	}
	if len(requests) != 2 || requests[0] != `{"n":1}` || requests[1] != `{"n":2}` {
		t.Fatalf("dispatch mismatch: %v", requests)
	}
}
