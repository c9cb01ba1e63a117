// Package telemetry exports store lifecycle events as Prometheus metrics and
// OpenTelemetry spans. Both types implement store.Observer; combine them
// with store.Observers:
//
//	reg := store.NewRegistry(store.WithObserver(store.Observers(
//	    telemetry.NewMetrics(telemetry.WithRegistry(promRegistry)),
//	    telemetry.NewTracer(),
//	)))
package telemetry
