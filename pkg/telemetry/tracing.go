// Copyright 2025 The Cognitad Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracerName identifies spans emitted by the cognitive core in any
// downstream collector, independent of which exporter the embedding
// process wires up (or none at all; the global TracerProvider defaults
// to a no-op implementation).
const tracerName = "github.com/quietloop/cognitad"

// Tracer returns the module-scoped tracer. Callers install a real
// TracerProvider via otel.SetTracerProvider at process start; absent that,
// every span is a harmless no-op.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartSpan starts a span with the given name, returning the derived
// context and an end function. Used by Mastermind around a campaign and by
// AGInt around each tick.
func StartSpan(ctx context.Context, name string, attrs ...trace.SpanStartOption) (context.Context, func()) {
	ctx, span := Tracer().Start(ctx, name, attrs...)
	return ctx, func() { span.End() }
}
