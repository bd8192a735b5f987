// ABOUTME: Tests for login, logout, and whoami
// ABOUTME: Covers prompting, the no-echo password seam, and token persistence

package cmd

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoginCommand_Flags(t *testing.T) {
	setupCLI(t)

	var buf bytes.Buffer
	exitCode := runLogin(&buf, noInput(), "admin", "admin")

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "Logged in as admin") {
		t.Errorf("unexpected output: %s", buf.String())
	}
	info, err := os.Stat(filepath.Join(configDir, "session.json"))
	if err != nil {
		t.Fatalf("expected session file: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
	}
}

func TestLoginCommand_InvalidCredentials(t *testing.T) {
	setupCLI(t)

	var buf bytes.Buffer
	exitCode := runLogin(&buf, noInput(), "admin", "nope")

	if exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
	if !strings.Contains(buf.String(), "invalid credentials") {
		t.Errorf("expected invalid credentials error, got: %s", buf.String())
	}
	if _, err := os.Stat(filepath.Join(configDir, "session.json")); !os.IsNotExist(err) {
		t.Error("expected no session file after a rejected login")
	}
}

func TestLoginCommand_PromptsFromPipe(t *testing.T) {
	setupCLI(t)
	origTerminal := stdinIsTerminal
	stdinIsTerminal = func() bool { return false }
	defer func() { stdinIsTerminal = origTerminal }()

	var buf bytes.Buffer
	in := bufio.NewReader(strings.NewReader("admin\nadmin"))
	exitCode := runLogin(&buf, in, "", "")

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if !strings.Contains(buf.String(), "Username: ") || !strings.Contains(buf.String(), "Password: ") {
		t.Errorf("expected both prompts, got: %s", buf.String())
	}
}

func TestLoginCommand_PasswordFromTerminal(t *testing.T) {
	setupCLI(t)
	origTerminal, origRead := stdinIsTerminal, readPassword
	stdinIsTerminal = func() bool { return true }
	readPassword = func(int) ([]byte, error) { return []byte("admin"), nil }
	defer func() {
		stdinIsTerminal = origTerminal
		readPassword = origRead
	}()

	var buf bytes.Buffer
	exitCode := runLogin(&buf, noInput(), "admin", "")

	if exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", exitCode, buf.String())
	}
	if strings.Contains(buf.String(), "Username: ") {
		t.Error("expected no username prompt when the flag is set")
	}
}

func TestReadLine(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("first\r\nlast"))

	if got, err := readLine(in); err != nil || got != "first" {
		t.Errorf("expected first, got %q (%v)", got, err)
	}
	if got, err := readLine(in); err != nil || got != "last" {
		t.Errorf("expected last, got %q (%v)", got, err)
	}
	if _, err := readLine(in); err == nil {
		t.Error("expected EOF on exhausted input")
	}
}

func TestWhoami(t *testing.T) {
	setupCLI(t)

	var buf bytes.Buffer
	runWhoami(&buf)
	if !strings.Contains(buf.String(), "Not logged in") {
		t.Errorf("expected anonymous state, got: %s", buf.String())
	}

	loginForTest(t)
	buf.Reset()
	runWhoami(&buf)
	if !strings.Contains(buf.String(), "Logged in as admin") {
		t.Errorf("expected subject in output, got: %s", buf.String())
	}
}

func TestWhoami_JSON(t *testing.T) {
	setupCLI(t)
	loginForTest(t)
	jsonOutput = true

	var buf bytes.Buffer
	if exitCode := runWhoami(&buf); exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}

	var out whoamiOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if out.State != "authenticated" || out.Subject != "admin" || out.TokenID == "" {
		t.Errorf("unexpected whoami output %+v", out)
	}
}

func TestLogout(t *testing.T) {
	setupCLI(t)
	loginForTest(t)

	var buf bytes.Buffer
	if exitCode := runLogout(&buf); exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d", exitCode)
	}

	buf.Reset()
	runWhoami(&buf)
	if !strings.Contains(buf.String(), "Not logged in") {
		t.Errorf("expected anonymous after logout, got: %s", buf.String())
	}
}

func TestSessionSurvivesRestart(t *testing.T) {
	setupCLI(t)
	loginForTest(t)

	// A fresh runtime reads the token from disk
	rt, err := loadRuntime()
	if err != nil {
		t.Fatalf("loadRuntime: %v", err)
	}
	if !rt.guard.IsAuthenticated() {
		t.Error("expected the stored token to restore the session")
	}
}
