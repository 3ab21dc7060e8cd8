package exec

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCommand re-runs the test binary as a fake tool
func mockCommand(name string, args ...string) *exec.Cmd {
	cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
	cmd := exec.Command(os.Args[0], cs...)
	cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1"}
	return cmd
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	for i, arg := range args {
		if arg == "--" {
			args = args[i+1:]
			break
		}
	}

	switch strings.Join(args, " ") {
	case "dotnet restore ok":
		fmt.Println("Restore complete (0.4s)")
		os.Exit(0)
	case "dotnet restore broken":
		for i := range 20 {
			fmt.Printf("line %d\n", i)
		}
		fmt.Fprintln(os.Stderr, "error NU1010: PackageReference items do not define a PackageVersion")
		os.Exit(1)
	case "sleep":
		time.Sleep(10 * time.Second)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %v\n", args)
		os.Exit(2)
	}
}

func newMockExecutor(stdout *bytes.Buffer) *Executor {
	e := NewExecutor(&Options{Stdout: stdout, Stderr: stdout})
	e.commandFunc = mockCommand
	return e
}

func TestExecutor_Run(t *testing.T) {
	var out bytes.Buffer
	err := newMockExecutor(&out).Run(context.Background(), "dotnet", "restore", "ok")

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Restore complete")
}

func TestExecutor_RunFailure(t *testing.T) {
	var out bytes.Buffer
	err := newMockExecutor(&out).Run(context.Background(), "dotnet", "restore", "broken")

	assert.ErrorContains(t, err, "dotnet failed")
}

func TestExecutor_RunCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	start := time.Now()
	err := newMockExecutor(&out).Run(ctx, "sleep")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestExecutor_RunCapturedIncludesTail(t *testing.T) {
	var out bytes.Buffer
	err := newMockExecutor(&out).RunCaptured(context.Background(), "Restoring", "dotnet", "restore", "broken")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "NU1010")
	assert.Contains(t, err.Error(), "line 19")
	assert.NotContains(t, err.Error(), "line 3\n")
	assert.Empty(t, out.String(), "captured output is not streamed")
}

func TestExecutor_CommandNotFound(t *testing.T) {
	e := NewExecutor(&Options{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
	err := e.Run(context.Background(), "roost-definitely-not-installed")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestVerifier_Restore(t *testing.T) {
	v := NewVerifier(&Options{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})
	v.executor.commandFunc = mockCommand

	assert.NoError(t, v.Restore(context.Background(), "ok"))

	err := v.WithTimeout(time.Minute).Restore(context.Background(), "broken")
	assert.ErrorContains(t, err, "verification failed")
}

func TestSpinnerModel(t *testing.T) {
	m := newSpinnerModel("Restoring packages")
	assert.Contains(t, m.View(), "Restoring packages...")

	_, cmd := m.Update(spinnerDoneMsg{err: fmt.Errorf("boom")})
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "❌")
}

func TestTail(t *testing.T) {
	assert.Equal(t, "c\nd", tail("a\nb\nc\nd\n", 2))
	assert.Equal(t, "a", tail("a", 5))
}
