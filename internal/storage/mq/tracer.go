package mq

import (
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("internal/storage/mq")

// newKotel builds franz-go hooks that trace produce and fetch calls with the
// global tracer provider. It is called per client so it picks up the provider
// installed at startup.
func newKotel() *kotel.Kotel {
	return kotel.NewKotel(
		kotel.WithTracer(kotel.NewTracer(
			kotel.TracerProvider(otel.GetTracerProvider()),
			kotel.TracerPropagator(otel.GetTextMapPropagator()),
		)),
	)
}
