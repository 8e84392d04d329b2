// Package jscheck is the oracle for generated programs: it parses them with
// goja and optionally runs them in a fresh runtime under a time budget.
package jscheck

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja/parser"
)

const (
	defaultCallStack = 256
	maxOutputLines   = 64
)

// Options control a check.
type Options struct {
	Execute bool
	// Timeout bounds execution; zero means only ctx bounds it.
	Timeout time.Duration
	// MaxCallStackSize caps JS recursion; zero uses a small default.
	MaxCallStackSize int
}

// Result is the outcome of a check.
type Result struct {
	Verdict Verdict
	Message string
	Output  []string // lines passed to print(), capped
	Elapsed time.Duration
}

// Check parses src and, when opts.Execute is set, runs it.
func Check(ctx context.Context, name, src string, opts Options) Result {
	start := time.Now()
	res := check(ctx, name, src, opts)
	res.Elapsed = time.Since(start)
	return res
}

func check(ctx context.Context, name, src string, opts Options) Result {
	if _, err := parser.ParseFile(nil, name, src, 0); err != nil {
		return Result{Verdict: VerdictSyntaxError, Message: err.Error()}
	}
	if !opts.Execute {
		return Result{Verdict: VerdictOK}
	}
	return execute(ctx, name, src, opts)
}

func execute(ctx context.Context, name, src string, opts Options) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{
				Verdict: VerdictCrash,
				Message: fmt.Sprintf("panic: %v\n%s", r, debug.Stack()),
				Output:  res.Output,
			}
		}
	}()

	vm := goja.New()
	stack := opts.MaxCallStackSize
	if stack <= 0 {
		stack = defaultCallStack
	}
	vm.SetMaxCallStackSize(stack)
	installHost(vm, &res.Output)

	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if opts.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
	}
	defer cancel()
	stop := context.AfterFunc(runCtx, func() { vm.Interrupt(runCtx.Err()) })
	defer stop()

	_, err := vm.RunScript(name, src)
	if err == nil {
		res.Verdict = VerdictOK
		return res
	}

	var (
		interrupted *goja.InterruptedError
		syntax      *goja.CompilerSyntaxError
		exception   *goja.Exception
	)
	switch {
	case errors.As(err, &interrupted):
		res.Verdict = VerdictTimeout
		res.Message = interrupted.Error()
	case errors.As(err, &syntax):
		res.Verdict = VerdictSyntaxError
		res.Message = syntax.Error()
	case errors.As(err, &exception):
		res.Verdict = VerdictException
		res.Message = exception.Error()
	default:
		// Stack overflows and other engine-raised errors end up here.
		res.Verdict = VerdictException
		res.Message = err.Error()
	}
	return res
}

// installHost provides print(), collecting its arguments.
func installHost(vm *goja.Runtime, out *[]string) {
	_ = vm.Set("print", func(call goja.FunctionCall) goja.Value {
		if len(*out) >= maxOutputLines {
			return goja.Undefined()
		}
		line := ""
		for i, arg := range call.Arguments {
			if i > 0 {
				line += " "
			}
			line += arg.String()
		}
		*out = append(*out, line)
		return goja.Undefined()
	})
}
