package approval

import (
	"bufio"
	"fmt"
	"os"
	"os/user"
	"strings"
	"time"
)

// Interactive renders an approval prompt and reads a response through
// injectable functions, so tests never touch a real terminal. Read
// returns io.EOF (or any error) when input is exhausted or cancelled;
// such an error is always treated as a denial, per the cancellation
// contract.
type Interactive struct {
	Read     func() (string, error)
	Write    func(string)
	Approver func() string
}

// NewInteractive returns an Interactive wired to stdin/stdout and the
// OS user as approver.
func NewInteractive() *Interactive {
	in := bufio.NewReader(os.Stdin)
	return &Interactive{
		Read: func() (string, error) {
			line, err := in.ReadString('\n')
			if err != nil && line == "" {
				return "", err
			}
			return strings.TrimRight(line, "\r\n"), nil
		},
		Write: func(s string) { fmt.Print(s) },
		Approver: func() string {
			if u, err := user.Current(); err == nil {
				return u.Username
			}
			return "unknown"
		},
	}
}

func (f *Interactive) write(format string, args ...any) {
	f.Write(fmt.Sprintf(format, args...))
}

func (f *Interactive) render(req Request) {
	f.write("=== APPROVAL REQUIRED ===\n")
	f.write("Risk level: %s\n", req.RiskLevel)
	f.write("Command: %s\n", req.Command)
	if req.ContextSummary != "" {
		f.write("Context: %s\n", req.ContextSummary)
	}
	for _, r := range req.Reasons {
		f.write("  - %s\n", r)
	}
	f.write("Approve? [y]es / [n]o / [s]kip / [e]dit: ")
}

type readOutcome struct {
	line string
	err  error
}

// readLineWithTimeout runs Read on a background goroutine and races it
// against timeout. A goroutine leak is avoided by buffering the result
// channel: the goroutine always completes and sends, even after a
// timeout fires and the caller has stopped listening.
func (f *Interactive) readLineWithTimeout(timeout time.Duration) (string, error) {
	ch := make(chan readOutcome, 1)
	go func() {
		line, err := f.Read()
		ch <- readOutcome{line: line, err: err}
	}()

	select {
	case out := <-ch:
		return out.line, out.err
	case <-time.After(timeout):
		return "", errTimeout
	}
}

var errTimeout = fmt.Errorf("approval request timed out")

// RequestApproval implements Flow for the interactive variant.
func (f *Interactive) RequestApproval(req Request) Response {
	f.render(req)

	line, err := f.readLineWithTimeout(req.Timeout)
	if err != nil {
		if err == errTimeout {
			return f.response(TimedOut, req.Command, "")
		}
		return f.response(Denied, req.Command, "Cancelled by user")
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return f.response(Approved, req.Command, "")
	case "n", "no":
		return f.response(Denied, req.Command, "User declined")
	case "s", "skip":
		return f.response(Skipped, req.Command, "Skipped by user")
	case "e", "edit":
		return f.handleEdit(req)
	default:
		return f.response(Denied, req.Command, "Invalid response")
	}
}

func (f *Interactive) handleEdit(req Request) Response {
	f.write("Enter replacement command (blank keeps original): ")
	edited, err := f.readLineWithTimeout(req.Timeout)
	if err != nil {
		return f.response(Denied, req.Command, "Edit cancelled")
	}

	edited = strings.TrimSpace(edited)
	if edited == "" {
		edited = req.Command
	}

	f.write("Confirm edited command %q? [y/n]: ", edited)
	confirm, err := f.readLineWithTimeout(req.Timeout)
	if err != nil {
		return f.response(Denied, req.Command, "Edit cancelled")
	}

	switch strings.ToLower(strings.TrimSpace(confirm)) {
	case "y", "yes":
		return f.response(Edited, edited, "")
	default:
		return f.response(Denied, req.Command, "Edit cancelled")
	}
}

func (f *Interactive) response(result Result, command string, reason string) Response {
	return Response{
		Result:     result,
		Command:    command,
		ApproverID: f.Approver(),
		Timestamp:  time.Now(),
		Reason:     reason,
	}
}
