/*
 *    Copyright 2021 chenquan
 *
 *    Licensed under the Apache License, Version 2.0 (the "License");
 *    you may not use this file except in compliance with the License.
 *    You may obtain a copy of the License at
 *
 *        http://www.apache.org/licenses/LICENSE-2.0
 *
 *    Unless required by applicable law or agreed to in writing, software
 *    distributed under the License is distributed on an "AS IS" BASIS,
 *    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *    See the License for the specific language governing permissions and
 *    limitations under the License.
 */

// Package xtrace sets up the global OpenTelemetry tracer provider. The
// server obtains a tracer from it at startup; neither the packet handler
// nor the accept loop opens spans. Exporter selection mirrors
// the teacher's declared jaeger/zipkin exporter stack; "none" leaves the
// global no-op provider in place.
package xtrace

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"
)

// Name is the tracer name every span in the broker is opened under.
const Name = "github.com/yunqi/tideway"

// Init configures the global tracer provider per exporter/endpoint. An
// empty exporter ("" or "none") is a no-op: the global provider stays the
// default, which discards spans at negligible cost.
func Init(exporter, endpoint, serviceName string) (func() error, error) {
	var (
		sp  sdktrace.SpanExporter
		err error
	)
	switch exporter {
	case "", "none":
		return func() error { return nil }, nil
	case "jaeger":
		sp, err = jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)))
	case "zipkin":
		sp, err = zipkin.New(endpoint)
	default:
		return func() error { return nil }, nil
	}
	if err != nil {
		return nil, err
	}

	res := resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceNameKey.String(serviceName))
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(sp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return func() error { return tp.Shutdown(context.Background()) }, nil
}
