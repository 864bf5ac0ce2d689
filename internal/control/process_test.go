package control

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/arenaharness/harness/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHelperProcess is not a real test. It stands in for a control program
// when re-executed by the tests below.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("HARNESS_HELPER_PROCESS") != "1" {
		return
	}
	mode := os.Getenv("HARNESS_HELPER_MODE")
	if mode == "deaf" {
		time.Sleep(time.Minute)
		os.Exit(0)
	}
	scanner := bufio.NewScanner(os.Stdin)
	out := bufio.NewWriter(os.Stdout)
	for scanner.Scan() {
		var req Request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			os.Exit(3)
		}
		switch mode {
		case "silent":
			continue
		case "crash":
			os.Exit(4)
		case "stale":
			fmt.Fprintf(out, `{"seq":%d,"action":"old"}`+"\n", req.Seq+1000)
		}
		resp := Response{
			Seq:          req.Seq,
			Action:       fmt.Sprintf("unit-%d-round-%d", req.Unit.ID, req.Round),
			MemoryWrites: map[int]int64{0: int64(req.Round)},
		}
		b, _ := json.Marshal(resp)
		out.Write(append(b, '\n'))
		out.Flush()
	}
	os.Exit(0)
}

func startHelper(t *testing.T, mode string, timeout time.Duration) *Process {
	t.Helper()
	t.Setenv("HARNESS_HELPER_PROCESS", "1")
	t.Setenv("HARNESS_HELPER_MODE", mode)

	location := os.Args[0] + " -test.run=TestHelperProcess"
	p, err := StartProcess(context.Background(), "helper", location, timeout, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestParseCommand(t *testing.T) {
	argv, err := ParseCommand("file:///opt/bots/rush --aggressive")
	require.NoError(t, err)
	assert.Equal(t, []string{"/opt/bots/rush", "--aggressive"}, argv)

	_, err = ParseCommand("   ")
	assert.Error(t, err)
}

func TestNull_Idles(t *testing.T) {
	resp, err := Null{}.Act(context.Background(), Request{Seq: 5})
	require.NoError(t, err)
	assert.Equal(t, uint64(5), resp.Seq)
	assert.Empty(t, resp.Action)
	assert.NoError(t, Null{}.Close())
}

func TestProcess_RoundTrip(t *testing.T) {
	p := startHelper(t, "echo", 5*time.Second)

	req := Request{Round: 3, Team: core.SideA, Unit: core.NewRobot(9, core.SideA, core.Scout, core.Location{X: 1, Y: 1})}
	resp, err := p.Act(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "unit-9-round-3", resp.Action)
	assert.Equal(t, int64(3), resp.MemoryWrites[0])

	resp, err = p.Act(context.Background(), Request{Round: 4, Unit: req.Unit})
	require.NoError(t, err)
	assert.Equal(t, "unit-9-round-4", resp.Action)
	assert.Equal(t, "helper", p.Name())
}

func TestProcess_DiscardsStaleResponses(t *testing.T) {
	p := startHelper(t, "stale", 5*time.Second)

	resp, err := p.Act(context.Background(), Request{Round: 1, Unit: core.Body{ID: 2}})
	require.NoError(t, err)
	assert.Equal(t, "unit-2-round-1", resp.Action)
}

func TestProcess_Timeout(t *testing.T) {
	p := startHelper(t, "silent", 100*time.Millisecond)

	_, err := p.Act(context.Background(), Request{Round: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestProcess_KillsProgramThatStopsReading(t *testing.T) {
	p := startHelper(t, "deaf", 200*time.Millisecond)

	// larger than a pipe buffer, so the write itself blocks
	req := Request{Round: 1, Memory: make([]int64, 200000)}

	start := time.Now()
	_, err := p.Act(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)

	_, err = p.Act(context.Background(), Request{Round: 2})
	assert.ErrorIs(t, err, ErrExited)
}

func TestProcess_Crash(t *testing.T) {
	p := startHelper(t, "crash", 5*time.Second)

	_, err := p.Act(context.Background(), Request{Round: 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExited)
}

func TestStartProcess_MissingBinary(t *testing.T) {
	_, err := StartProcess(context.Background(), "ghost", "/nonexistent/bot", time.Second, nil)
	assert.Error(t, err)
}
