package tracing

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type Options struct {
	ServiceName string
	Exporter    string  // "stdout" или "none"
	SampleRatio float64 // доля корневых спанов, 0..1
	Writer      io.Writer
}

// NewProvider собирает TracerProvider с выбранным экспортёром.
// Спаны с входящим traceparent сэмплируются по решению родителя
func NewProvider(opts Options) (*sdktrace.TracerProvider, error) {
	res := resource.NewSchemaless(attribute.String("service.name", opts.ServiceName))

	providerOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(opts.SampleRatio))),
	}

	switch opts.Exporter {
	case "stdout":
		w := opts.Writer
		if w == nil {
			w = os.Stdout
		}
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("создание stdout экспортёра: %w", err)
		}
		providerOpts = append(providerOpts, sdktrace.WithBatcher(exporter))
	case "none":
	default:
		return nil, fmt.Errorf("неизвестный экспортёр трассировки: %q", opts.Exporter)
	}

	return sdktrace.NewTracerProvider(providerOpts...), nil
}

// Install делает провайдер глобальным и включает W3C trace context
func Install(tp *sdktrace.TracerProvider) {
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(Propagator())
}

func Propagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
}

func Shutdown(ctx context.Context, tp *sdktrace.TracerProvider) error {
	if err := tp.ForceFlush(ctx); err != nil {
		return fmt.Errorf("сброс спанов: %w", err)
	}
	return tp.Shutdown(ctx)
}
