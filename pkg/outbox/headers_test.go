package outbox_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/namjco/sales-tracker/pkg/correlationid"
	"github.com/namjco/sales-tracker/pkg/outbox"
)

func TestHeadersRoundTrip(t *testing.T) {
	ctx := correlationid.NewContext(context.Background(), "corr-123")

	headers := outbox.BuildHeaders(ctx)
	assert.Equal(t, "corr-123", headers[correlationid.Header])

	rec := &kgo.Record{}
	for k, v := range headers {
		rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}

	extracted := outbox.ExtractContextFromHeaders(context.Background(), outbox.RecordHeaders(rec))
	id, ok := correlationid.FromContext(extracted)
	assert.True(t, ok)
	assert.Equal(t, "corr-123", id)
}

func TestExtractWithoutCorrelationID(t *testing.T) {
	ctx := outbox.ExtractContextFromHeaders(context.Background(), map[string]string{})
	_, ok := correlationid.FromContext(ctx)
	assert.False(t, ok)
}
