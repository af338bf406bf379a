package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Apurer/coopcredit-api-server/internal/domains/affiliates/adapters/memory"
	"github.com/Apurer/coopcredit-api-server/internal/domains/affiliates/application"
	"github.com/Apurer/coopcredit-api-server/internal/domains/affiliates/domain"
	"github.com/Apurer/coopcredit-api-server/internal/domains/affiliates/ports"
)

func TestService_TracesRegistryCalls(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	svc := New(application.NewService(memory.NewRepository()), WithTracer(provider.Tracer("test")))
	ctx := context.Background()

	created, err := svc.Register(ctx, domain.RegistrationParams{
		DocumentNumber: "52123456",
		DocumentType:   "CC",
		FirstName:      "Marta",
		LastName:       "Lucía",
		Email:          "marta@example.com",
		BirthDate:      time.Date(1979, 2, 3, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, created.ID+100)
	require.ErrorIs(t, err, ports.ErrNotFound)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "Service.Register", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, "Service.GetByID", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}
