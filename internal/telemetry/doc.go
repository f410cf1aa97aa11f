// Package telemetry instruments node resolvers with Prometheus metrics and
// OpenTelemetry spans. Tracing uses the global tracer provider unless one is
// given, so it stays a no-op until the process installs a real provider.
package telemetry
