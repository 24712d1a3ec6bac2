package bridge

import (
	"io"
	"strings"
	"testing"
)

func TestChildMergesStdoutAndStderr(t *testing.T) {
	child, err := StartChild([]string{"sh", "-c", "printf 'out\\n'; printf 'err\\n' 1>&2"})
	if err != nil {
		t.Fatalf("StartChild failed: %v", err)
	}
	data, err := io.ReadAll(child.Output())
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "out\n") || !strings.Contains(out, "err\n") {
		t.Fatalf("merged output missing a stream: %q", out)
	}
	if code := child.Wait(); code != 0 {
		t.Fatalf("exit code mismatch: %d", code)
	}
}

func TestChildExitCode(t *testing.T) {
	child, err := StartChild([]string{"sh", "-c", "exit 3"})
	if err != nil {
		t.Fatalf("StartChild failed: %v", err)
	}
	if _, err := io.ReadAll(child.Output()); err != nil {
		t.Fatalf("read output: %v", err)
	}
	if code := child.Wait(); code != 3 {
		t.Fatalf("exit code mismatch: %d", code)
	}
}

func TestChildStdinReachesChild(t *testing.T) {
	child, err := StartChild([]string{"sh", "-c", "read line; printf '%s!\\n' \"$line\""})
	if err != nil {
		t.Fatalf("StartChild failed: %v", err)
	}
	if _, err := child.Write([]byte("ping\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := io.ReadAll(child.Output())
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "ping!\n" {
		t.Fatalf("output mismatch: %q", data)
	}
	if code := child.Wait(); code != 0 {
		t.Fatalf("exit code mismatch: %d", code)
	}
}

func TestChildWriteAfterExitIsSilentlyDropped(t *testing.T) {
	child, err := StartChild([]string{"sh", "-c", "exit 0"})
	if err != nil {
		t.Fatalf("StartChild failed: %v", err)
	}
	if _, err := io.ReadAll(child.Output()); err != nil {
		t.Fatalf("read output: %v", err)
	}
	if code := child.Wait(); code != 0 {
		t.Fatalf("exit code mismatch: %d", code)
	}
	// The pipe is gone; the write path must shut down quietly rather than
	// surface an error to the dispatch path.
	if _, err := child.Write([]byte("late\n")); err != nil {
		t.Fatalf("write after exit should be dropped, got %v", err)
	}
	if !child.Stopped() {
		t.Fatalf("write path should be marked stopped")
	}
}

func TestStartChildEmptyArgv(t *testing.T) {
	if _, err := StartChild(nil); err == nil {
		t.Fatal("expected error for empty argv")
	}
}
