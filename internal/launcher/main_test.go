package launcher

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
)

// fakeBrowserEnv makes the test binary act as a browser when re-executed.
// Values: "serve" answers /json/version on the debugging port, "refuse"
// binds the port but drops every connection, "silent" never listens,
// "exit" quits immediately.
const fakeBrowserEnv = "BROWSERCTL_FAKE_BROWSER"

// fakePIDFileEnv, when set, names a file the fake browser writes its PID to.
const fakePIDFileEnv = "BROWSERCTL_FAKE_PIDFILE"

func TestMain(m *testing.M) {
	if mode := os.Getenv(fakeBrowserEnv); mode != "" {
		runFakeBrowser(mode, os.Args[1:])
		return
	}
	os.Exit(m.Run())
}

func runFakeBrowser(mode string, args []string) {
	if path := os.Getenv(fakePIDFileEnv); path != "" {
		os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0600)
	}

	port := ""
	for _, arg := range args {
		if v, ok := strings.CutPrefix(arg, "--remote-debugging-port="); ok {
			port = v
		}
	}

	switch mode {
	case "exit":
		os.Exit(0)
	case "silent":
		time.Sleep(time.Minute)
		os.Exit(0)
	}

	l, err := net.Listen("tcp", "127.0.0.1:"+port)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if mode == "refuse" {
		for {
			conn, err := l.Accept()
			if err != nil {
				os.Exit(0)
			}
			conn.Close()
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/json/version", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"Browser":              "HeadlessChrome/131.0.6778.85",
			"Protocol-Version":     "1.3",
			"webSocketDebuggerUrl": fmt.Sprintf("ws://127.0.0.1:%s/devtools/browser/fake", port),
		})
	})
	http.Serve(l, mux)
	os.Exit(0)
}

// fakeBrowserPath returns the test binary, to be launched with mode set.
func fakeBrowserPath(t *testing.T, mode string) string {
	t.Helper()
	t.Setenv(fakeBrowserEnv, mode)
	exe, err := os.Executable()
	if err != nil {
		t.Fatalf("os.Executable: %v", err)
	}
	return exe
}

// recordFakePID makes the next fake browser write its PID; the returned
// func reads it.
func recordFakePID(t *testing.T) func() int {
	t.Helper()
	path := filepath.Join(t.TempDir(), "browser.pid")
	t.Setenv(fakePIDFileEnv, path)
	return func() int {
		t.Helper()
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("fake browser never started: %v", err)
		}
		pid, err := strconv.Atoi(string(data))
		if err != nil {
			t.Fatalf("bad pid file: %v", err)
		}
		return pid
	}
}

// isolateProfiles points os.TempDir at a fresh directory and returns it.
func isolateProfiles(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"TMPDIR", "TMP", "TEMP"} {
		t.Setenv(name, dir)
	}
	return dir
}

func profileDirs(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, "browserctl-profile-*"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	return matches
}
