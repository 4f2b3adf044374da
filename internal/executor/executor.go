// Package executor defines the interface to the remote code-execution
// service. Code never runs on this server; execution is delegated entirely
// to an external HTTP API and only the resulting output/error strings come
// back.
package executor

import "context"

// File is one source file sent to the execution service.
type File struct {
	Name    string `json:"name,omitempty"`
	Content string `json:"content"`
}

// Request describes one run: a language/version pair and the files to
// execute. This matches the wire shape of the Piston execute endpoint.
type Request struct {
	Language string `json:"language"`
	Version  string `json:"version"`
	Files    []File `json:"files"`
}

// Stage is the outcome of one phase (compile or run) on the remote service.
// Code is the process exit code; Output is stdout+stderr interleaved.
type Stage struct {
	Code   int    `json:"code"`
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
	Output string `json:"output"`
}

// Result is the remote service's response. Compile is nil for interpreted
// languages.
type Result struct {
	Compile *Stage `json:"compile,omitempty"`
	Run     Stage  `json:"run"`
}

// Failed reports whether either phase exited non-zero.
func (r *Result) Failed() bool {
	if r.Compile != nil && r.Compile.Code != 0 {
		return true
	}
	return r.Run.Code != 0
}

// ErrorText returns the error output of the failed phase, or "" if the run
// succeeded. This is the displayable string the execution recorder persists.
func (r *Result) ErrorText() string {
	if r.Compile != nil && r.Compile.Code != 0 {
		if r.Compile.Stderr != "" {
			return r.Compile.Stderr
		}
		return r.Compile.Output
	}
	if r.Run.Code != 0 {
		if r.Run.Stderr != "" {
			return r.Run.Stderr
		}
		return r.Run.Output
	}
	return ""
}

// Executor runs code on the remote execution service.
type Executor interface {
	Execute(ctx context.Context, req Request) (*Result, error)
}
