// Copyright 2025 Witt Works, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cor (Chain of Responsibility) provides the building blocks for the
// application's generation pipelines. A workflow is a Chain of Commands; each
// Command reads its input from a shared Context, does one unit of work, and
// writes its output back for the next Command. The interfaces here keep the
// framework decoupled from any particular pipeline.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CtxIn and CtxOut are the reserved context keys the chain uses to pipe the
// primary value between commands: after each command runs, the value stored
// under CtxOut becomes the next command's CtxIn.
const (
	CtxIn  = "__IN__"
	CtxOut = "__OUT__"
)

// Context is the shared state bag for one workflow execution. It carries the
// standard Go context (cancellation, tracing), arbitrary keyed data, and any
// errors recorded by commands along the way.
type Context interface {
	// SetContext replaces the standard Go context, typically to scope a
	// command's work under its own trace span.
	SetContext(ctx context.Context)

	// GetContext returns the current standard Go context.
	GetContext() context.Context

	// Add stores a key-value pair, returning the Context for chaining.
	Add(key string, value interface{}) Context

	// Get returns the value stored under key, or nil.
	Get(key string) interface{}

	// Remove deletes the value stored under key.
	Remove(key string)

	// AddError records an error under the name of the command that produced it.
	AddError(key string, err error)

	// GetErrors returns all recorded errors keyed by command name.
	GetErrors() map[string]error

	// HasErrors reports whether any command has recorded an error.
	HasErrors() bool
}

// Executable is anything with core execution logic driven by a Context.
type Executable interface {
	Execute(context Context)
}

// Command is an atomic unit of pipeline work. Commands are named for tracing
// and metrics, declare the context keys they read and write, and can veto
// execution when their preconditions are not met.
type Command interface {
	Executable

	// GetName returns the command's unique name.
	GetName() string

	// GetInputParam returns the context key the command reads its primary
	// input from. Defaults to CtxIn.
	GetInputParam() string

	// GetOutputParam returns the context key the command writes its primary
	// output to. Defaults to CtxOut.
	GetOutputParam() string

	// IsExecutable reports whether the command's preconditions hold for the
	// given context.
	IsExecutable(context Context) bool

	// GetTracer returns the command's OpenTelemetry tracer.
	GetTracer() trace.Tracer

	// GetMeter returns the command's OpenTelemetry meter.
	GetMeter() metric.Meter

	// GetSuccessCounter returns the counter incremented on success.
	GetSuccessCounter() metric.Int64Counter

	// GetErrorCounter returns the counter incremented on failure.
	GetErrorCounter() metric.Int64Counter
}

// Chain is an ordered sequence of commands and is itself a Command, so chains
// nest. By default a chain stops at the first command that records an error.
type Chain interface {
	Command

	// ContinueOnFailure configures whether later commands still run after an
	// earlier one has recorded an error.
	ContinueOnFailure(bool) Chain

	// AddCommand appends a command to the execution sequence.
	AddCommand(command Command) Chain
}
