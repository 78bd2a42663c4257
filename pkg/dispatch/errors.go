package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// SetupError is fatal: it is only ever produced while the framework is being
// assembled (registry build, configuration load) and must abort startup. It
// never reaches the error router.
type SetupError struct {
	Reason string
	Cause  error
}

func (e *SetupError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("setup: %s: %v", e.Reason, e.Cause)
	}
	return "setup: " + e.Reason
}

func (e *SetupError) Unwrap() error { return e.Cause }

// ArgumentError reports a payload that could not be resolved against a
// command's parameter specification. Per-invocation, non-fatal.
type ArgumentError struct {
	Command   string
	Parameter string
	Reason    string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("argument %q of command %q: %s", e.Parameter, e.Command, e.Reason)
}

// CheckError reports an invocation stopped by the check pipeline. Silent by
// default; observable through a custom OnError handler.
type CheckError struct {
	Command string
	Reason  string
}

func (e *CheckError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("command %q denied by check", e.Command)
	}
	return fmt.Sprintf("command %q denied by check: %s", e.Command, e.Reason)
}

// CommandError wraps an error raised (or a panic recovered) inside a command
// body.
type CommandError struct {
	Command string
	Cause   error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %q failed: %v", e.Command, e.Cause)
}

func (e *CommandError) Unwrap() error { return e.Cause }

// HandlerError marks a failure that occurred while another error was being
// handled. It is only ever logged, never propagated.
type HandlerError struct {
	Cause error
}

func (e *HandlerError) Error() string { return fmt.Sprintf("error handler: %v", e.Cause) }

func (e *HandlerError) Unwrap() error { return e.Cause }

// ErrorHandler receives every per-invocation failure. Custom handlers should
// forward classes they do not care about to DefaultErrorHandler to retain
// baseline behavior.
type ErrorHandler func(ctx context.Context, inv *Invocation, err error)

// DefaultErrorHandler is the baseline router: check denials stay silent,
// argument errors get a minimal reply, command body failures are reported to
// the user and logged with command identity and cause, anything else is
// logged. Reply failures are logged as HandlerError and swallowed.
func DefaultErrorHandler(ctx context.Context, inv *Invocation, err error) {
	var (
		argErr   *ArgumentError
		checkErr *CheckError
		cmdErr   *CommandError
	)
	switch {
	case errors.As(err, &checkErr):
		// Not a user-visible condition by default.
	case errors.As(err, &argErr):
		log.Printf("[WARN] %v", argErr)
		sayOrLog(ctx, inv, "Invalid arguments: "+argErr.Reason)
	case errors.As(err, &cmdErr):
		log.Printf("[ERR] Error in command %s: %v", cmdErr.Command, cmdErr.Cause)
		sayOrLog(ctx, inv, fmt.Sprintf("Command %s failed: %v", cmdErr.Command, cmdErr.Cause))
	default:
		log.Printf("[ERR] Unhandled dispatch error: %v", err)
	}
}

func sayOrLog(ctx context.Context, inv *Invocation, content string) {
	if inv == nil {
		return
	}
	if err := inv.Say(ctx, content); err != nil {
		log.Printf("[WARN] %v", &HandlerError{Cause: err})
	}
}

// route funnels a per-invocation failure to the configured handler. Panics
// inside the handler are contained here so a broken handler can never take
// the dispatcher down.
func (d *Dispatcher) route(ctx context.Context, inv *Invocation, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[ERR] %v", &HandlerError{Cause: fmt.Errorf("panic: %v", rec)})
		}
	}()
	handler := d.opts.OnError
	if handler == nil {
		handler = DefaultErrorHandler
	}
	handler(ctx, inv, err)
}
