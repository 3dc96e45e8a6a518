// Package interactive provides the interactive command-line interface
// for the countdown command.
package interactive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"

	"github.com/countdown-go/countdown/internal/app"
	"github.com/countdown-go/countdown/pkg/countdown"
	"github.com/countdown-go/countdown/pkg/store"
)

// Shell handles interactive mode for countdown.
type Shell struct {
	app *app.App
	rl  *readline.Instance
	out io.Writer

	mu      sync.Mutex
	unwatch store.Unsubscriber
}

// New creates a new interactive shell. Attach must be called before Run.
func New() (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "countdown> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	s := newShell(nil, rl.Stdout())
	s.rl = rl
	return s, nil
}

// Attach sets the countdown the shell controls.
func (s *Shell) Attach(a *app.App) {
	s.app = a
}

func newShell(a *app.App, out io.Writer) *Shell {
	return &Shell{app: a, out: out}
}

func completer() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("help"),
		readline.PcItem("start"),
		readline.PcItem("restart"),
		readline.PcItem("cancel", readline.PcItem("all")),
		readline.PcItem("set"),
		readline.PcItem("get"),
		readline.PcItem("status"),
		readline.PcItem("runs"),
		readline.PcItem("history"),
		readline.PcItem("watch", readline.PcItem("on"), readline.PcItem("off")),
		readline.PcItem("quit"),
	)
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (s *Shell) Stdout() io.Writer {
	return s.out
}

// Stderr returns a writer that properly coordinates with the readline input.
func (s *Shell) Stderr() io.Writer {
	return s.rl.Stderr()
}

// Run starts the interactive command loop.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()
	defer s.stopWatch()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}

		if s.Execute(line) {
			cancel()
			return
		}
	}
}

// Execute runs a single command line. It reports whether the shell should
// exit.
func (s *Shell) Execute(line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp()

	case "start", "s":
		s.cmdStart()

	case "restart":
		s.cmdRestart()

	case "cancel", "c":
		s.cmdCancel(args)

	case "set":
		s.cmdSet(args)

	case "get", "g":
		s.cmdGet()

	case "status":
		s.cmdStatus()

	case "runs":
		s.cmdRuns()

	case "history", "h":
		s.cmdHistory(args)

	case "watch", "w":
		s.cmdWatch(args)

	case "quit", "exit", "q":
		fmt.Fprintln(s.out, "Exiting...")
		return true

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
Countdown Commands:
  Runs:
    start              - Reset to the start value and begin a run
    restart            - Cancel all runs, then start a new one
    cancel [id|all]    - Cancel one run by ID prefix, or all runs
    runs               - List active runs

  Value:
    get                - Show the current value
    set <n>            - Set the value outside any run
    watch [on|off]     - Print every value change

  Info:
    status             - Show countdown status
    history [n]        - Show the last n recorded runs (default 10)

  Other:
    help               - Show this help
    quit               - Exit`)
}

func (s *Shell) cmdStart() {
	c := s.app.Countdown
	active := c.Active()
	run := c.StartRun()

	fmt.Fprintf(s.out, "Started run %s\n", shortID(run.ID()))
	if active > 0 {
		fmt.Fprintf(s.out, "Warning: %d earlier run(s) still ticking; use 'restart' to replace them\n", active)
	}
}

func (s *Shell) cmdRestart() {
	run := s.app.Countdown.Restart()
	fmt.Fprintf(s.out, "Restarted as run %s\n", shortID(run.ID()))
}

func (s *Shell) cmdCancel(args []string) {
	c := s.app.Countdown

	if len(args) == 0 || args[0] == "all" {
		n := c.Active()
		c.CancelAll()
		fmt.Fprintf(s.out, "Cancelled %d run(s); value is %d\n", n, c.Remaining())
		return
	}

	prefix := args[0]
	var matches []*countdown.Run
	for _, r := range c.Runs() {
		if strings.HasPrefix(r.ID(), prefix) {
			matches = append(matches, r)
		}
	}

	switch len(matches) {
	case 0:
		fmt.Fprintf(s.out, "No active run matches %q\n", prefix)
	case 1:
		matches[0].Cancel()
		fmt.Fprintf(s.out, "Cancelled run %s; value is %d\n", shortID(matches[0].ID()), c.Remaining())
	default:
		fmt.Fprintf(s.out, "Ambiguous run ID %q matches %d runs\n", prefix, len(matches))
	}
}

func (s *Shell) cmdSet(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: set <n>")
		return
	}

	v, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(s.out, "Invalid value: %v\n", err)
		return
	}

	s.app.Countdown.Set(v)
	fmt.Fprintf(s.out, "Value set to %d\n", v)
}

func (s *Shell) cmdGet() {
	v := s.app.Countdown.Remaining()
	fmt.Fprintf(s.out, "%d (%s)\n", v, app.FormatClock(v))
}

func (s *Shell) cmdStatus() {
	c := s.app.Countdown

	fmt.Fprintln(s.out, "\nCountdown Status")
	fmt.Fprintln(s.out, "-------------------------------------------")
	fmt.Fprintf(s.out, "  Value:          %d (%s)\n", c.Remaining(), app.FormatClock(c.Remaining()))
	fmt.Fprintf(s.out, "  Start Value:    %d\n", c.StartValue())
	fmt.Fprintf(s.out, "  Interval:       %s\n", c.Interval())
	fmt.Fprintf(s.out, "  Active Runs:    %d\n", c.Active())

	watch := "off"
	s.mu.Lock()
	if s.unwatch != nil {
		watch = "on"
	}
	s.mu.Unlock()
	fmt.Fprintf(s.out, "  Watch:          %s\n", watch)

	if s.app.History != nil {
		if st, err := s.app.History.Stats(); err == nil {
			fmt.Fprintf(s.out, "  Recorded Runs:  %d (expired %d, cancelled %d)\n", st.Total, st.Expired, st.Cancelled)
		}
	}

	fmt.Fprintln(s.out)
}

func (s *Shell) cmdRuns() {
	runs := s.app.Countdown.Runs()
	if len(runs) == 0 {
		fmt.Fprintln(s.out, "No active runs")
		return
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt().Before(runs[j].StartedAt())
	})

	fmt.Fprintf(s.out, "Active runs: %d\n", len(runs))
	for _, r := range runs {
		fmt.Fprintf(s.out, "  [%s] started %s, %d ticks\n",
			shortID(r.ID()), r.StartedAt().Format(time.TimeOnly), r.Ticks())
	}
}

func (s *Shell) cmdHistory(args []string) {
	if s.app.History == nil {
		fmt.Fprintln(s.out, "History is disabled (start with -history <path>)")
		return
	}

	limit := 10
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			fmt.Fprintf(s.out, "Invalid count: %s\n", args[0])
			return
		}
		limit = n
	}

	records, err := s.app.History.List(limit)
	if err != nil {
		fmt.Fprintf(s.out, "Failed to read history: %v\n", err)
		return
	}
	if len(records) == 0 {
		fmt.Fprintln(s.out, "No recorded runs")
		return
	}

	for _, r := range records {
		status := "RUNNING"
		if !r.Running() {
			status = fmt.Sprintf("%-9s final %d after %s", r.Reason, r.FinalValue, r.Duration().Round(time.Millisecond))
		}
		fmt.Fprintf(s.out, "  [%s] %s  %2d ticks  %s\n",
			shortID(r.ID), r.StartedAt.Local().Format(time.DateTime), r.Ticks, status)
	}
}

func (s *Shell) cmdWatch(args []string) {
	on := true
	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "on":
		case "off":
			on = false
		default:
			fmt.Fprintln(s.out, "Usage: watch [on|off]")
			return
		}
	} else {
		// Toggle
		s.mu.Lock()
		on = s.unwatch == nil
		s.mu.Unlock()
	}

	if !on {
		s.stopWatch()
		fmt.Fprintln(s.out, "Watch off")
		return
	}

	s.mu.Lock()
	if s.unwatch != nil {
		s.mu.Unlock()
		fmt.Fprintln(s.out, "Watch already on")
		return
	}
	s.mu.Unlock()

	unwatch := s.app.Display.Subscribe(func(v string) {
		fmt.Fprintf(s.out, "[%s]\n", v)
	})

	s.mu.Lock()
	s.unwatch = unwatch
	s.mu.Unlock()
}

func (s *Shell) stopWatch() {
	s.mu.Lock()
	unwatch := s.unwatch
	s.unwatch = nil
	s.mu.Unlock()

	if unwatch != nil {
		unwatch()
	}
}

// shortID returns the first 8 characters of a run ID.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
