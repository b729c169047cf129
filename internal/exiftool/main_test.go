package exiftool_test

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"testing"

	"go.uber.org/goleak"
)

// fakeEnv makes the test binary act as a minimal exiftool in batch mode when
// it is re-executed by a supervisor.
const fakeEnv = "DATEFIXER_FAKE_EXIFTOOL"

func TestMain(m *testing.M) {
	if os.Getenv(fakeEnv) == "1" {
		os.Exit(runFakeExiftool())
	}
	_ = os.Setenv(fakeEnv, "1")
	goleak.VerifyTestMain(m)
}

func fakeBinary(t *testing.T) string {
	t.Helper()
	exe, err := os.Executable()
	if err != nil {
		t.Fatalf("resolve test binary: %v", err)
	}
	return exe
}

// runFakeExiftool understands the subset of exiftool the gateway uses plus a
// few control commands for failure injection.
func runFakeExiftool() int {
	in := bufio.NewScanner(os.Stdin)
	var args []string
	for in.Scan() {
		line := in.Text()
		if len(args) > 0 && args[len(args)-1] == "-stay_open" && line == "False" {
			return 0
		}
		if line != "-execute" {
			args = append(args, line)
			continue
		}
		echo := ""
		var cmd []string
		for i := 0; i < len(args); i++ {
			if args[i] == "-echo4" && i+1 < len(args) {
				echo = args[i+1]
				i++
				continue
			}
			cmd = append(cmd, args[i])
		}
		args = nil
		fakeCommand(cmd)
		fmt.Fprintln(os.Stdout, "{ready}")
		if echo != "" {
			fmt.Fprintln(os.Stderr, echo)
		}
	}
	return 0
}

func fakeCommand(cmd []string) {
	if len(cmd) == 0 {
		return
	}
	last := cmd[len(cmd)-1]
	switch {
	case cmd[0] == "-crash":
		os.Exit(3)
	case cmd[0] == "-close-stdout":
		_ = os.Stdout.Close()
	case cmd[0] == "-pid":
		fmt.Println(strconv.Itoa(os.Getpid()))
	case cmd[0] == "-warn-flood":
		// Well past a pipe buffer, written before any stdout.
		line := strings.Repeat("w", 99) + "\n"
		for i := 0; i < 4096; i++ {
			fmt.Fprint(os.Stderr, "Warning: "+line)
		}
		fmt.Println("done")
	case cmd[0] == "-ver":
		fmt.Println("13.10")
	case cmd[0] == "-listwf":
		fmt.Println("Writable file extensions:")
		fmt.Println("  360 3G2 jpg PDF PSC")
		fmt.Println("  TIFF mp4")
	case cmd[0] == "-DateTimeOriginal":
		if _, err := os.Stat(last); err != nil {
			fmt.Fprintf(os.Stderr, "Error: File not found - %s\n", last)
			return
		}
		if data, err := os.ReadFile(last + ".dto"); err == nil {
			fmt.Println(strings.TrimSpace(string(data)))
		}
	case len(cmd) > 1 && strings.HasPrefix(cmd[1], "-DateTimeOriginal="):
		if _, err := os.Stat(last); err != nil {
			fmt.Fprintf(os.Stderr, "Error: File not found - %s\n", last)
			fmt.Println("    0 image files updated")
			fmt.Println("    1 files weren't updated due to errors")
			return
		}
		value := strings.TrimPrefix(cmd[1], "-DateTimeOriginal=")
		_ = os.WriteFile(last+".dto", []byte(value+"\n"), 0o644)
		fmt.Println("    1 image files updated")
	default:
		fmt.Fprintf(os.Stderr, "Warning: unhandled command %v\n", cmd)
	}
}
