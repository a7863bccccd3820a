package common

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/snipnote/deskbridge/pkg/runner"
)

// ProcessName resolves a pid to its command name with ps.
func ProcessName(ctx context.Context, r runner.Runner, pid int, timeout time.Duration) (string, error) {
	return runner.Text(ctx, r, runner.Command{
		Name:    "ps",
		Args:    []string{"-p", strconv.Itoa(pid), "-o", "comm="},
		Timeout: timeout,
	})
}

// ProcessPath resolves a pid to its executable path through /proc.
func ProcessPath(ctx context.Context, r runner.Runner, pid int, timeout time.Duration) (string, error) {
	return runner.Text(ctx, r, runner.Command{
		Name:    "readlink",
		Args:    []string{"-f", fmt.Sprintf("/proc/%d/exe", pid)},
		Timeout: timeout,
	})
}

// ProcessNames resolves many pids with a single ps call.
func ProcessNames(ctx context.Context, r runner.Runner, pids []int, timeout time.Duration) (map[int]string, error) {
	if len(pids) == 0 {
		return map[int]string{}, nil
	}
	ids := make([]string, len(pids))
	for i, pid := range pids {
		ids[i] = strconv.Itoa(pid)
	}
	out, err := runner.Text(ctx, r, runner.Command{
		Name:    "ps",
		Args:    []string{"-o", "pid=,comm=", "-p", strings.Join(ids, ",")},
		Timeout: timeout,
	})
	if err != nil {
		return nil, err
	}
	return ParsePIDNames(out), nil
}

// ParsePIDNames parses "pid comm" lines as printed by ps -o pid=,comm=.
func ParsePIDNames(out string) map[int]string {
	names := make(map[int]string)
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		pid, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		names[pid] = strings.Join(fields[1:], " ")
	}
	return names
}
