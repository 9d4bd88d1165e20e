//go:build unix

package msms

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"
)

// processGone returns true if pid is not running. A zombie waiting to be
// reaped by init counts as gone.
func processGone(pid int) bool {
	if err := syscall.Kill(pid, 0); err != nil {
		return true
	}
	stat, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return false
	}
	i := bytes.LastIndexByte(stat, ')')
	return i >= 0 && i+2 < len(stat) && stat[i+2] == 'Z'
}

// A wrapper script around msms may start processes of its own. A timeout
// must kill them too.
func TestRunTimeoutKillsChildren(Te *testing.T) {
	installFakeMSMS(Te, "")
	pidfile := filepath.Join(Te.TempDir(), "pid")
	Te.Setenv("FAKE_MSMS_BACKGROUND", "41")
	Te.Setenv("FAKE_MSMS_PIDFILE", pidfile)
	o := DefaultOptions()
	o.Timeout(500 * time.Millisecond)
	start := time.Now()
	_, err := Run(context.Background(), oneAtom(Te, 1.5), o)
	if !errors.Is(err, ErrTimedOut) {
		Te.Fatalf("expected ErrTimedOut, got %v", err)
	}
	if el := time.Since(start); el > 10*time.Second {
		Te.Errorf("timed out run took %v", el)
	}
	b, err := os.ReadFile(pidfile)
	if err != nil {
		Te.Fatal(err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		Te.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for !processGone(pid) {
		if time.Now().After(deadline) {
			syscall.Kill(pid, syscall.SIGKILL)
			Te.Fatalf("process %d started by msms still running after the timeout", pid)
		}
		time.Sleep(50 * time.Millisecond)
	}
}
