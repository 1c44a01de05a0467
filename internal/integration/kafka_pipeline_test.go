//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/couchcryptid/hazmat-dispersion/internal/adapter/kafka"
	"github.com/couchcryptid/hazmat-dispersion/internal/chemical"
	"github.com/couchcryptid/hazmat-dispersion/internal/config"
	"github.com/couchcryptid/hazmat-dispersion/internal/dispersion"
	"github.com/couchcryptid/hazmat-dispersion/internal/domain"
	"github.com/couchcryptid/hazmat-dispersion/internal/observability"
	"github.com/couchcryptid/hazmat-dispersion/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSourceTopic = "test-source"
	testSinkTopic   = "test-sink"
	testBudget      = 8
)

// assessedMessage holds a deserialized message read from the sink topic.
type assessedMessage struct {
	Assessment domain.HazardAssessment
	Key        string
	Headers    map[string]string
}

// readAssessed reads a single message from the sink consumer and deserializes it.
func readAssessed(ctx context.Context, t *testing.T, consumer *kafkago.Reader) assessedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var a domain.HazardAssessment
	require.NoError(t, json.Unmarshal(msg.Value, &a), "unmarshal sink message")

	return assessedMessage{
		Assessment: a,
		Key:        string(msg.Key),
		Headers:    headers,
	}
}

func testConfig(broker, group string) *config.Config {
	return &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("%s-%d", group, time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}
}

func newAssessor() *pipeline.Assessor {
	engine := dispersion.New(chemical.Default(), discardLogger(), dispersion.WithResultCache(64))
	return pipeline.NewAssessor(engine, testBudget, discardLogger())
}

func newSinkConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

// TestKafkaReaderWriter verifies the adapter layer: kafka.Reader (Extractor) and
// kafka.Writer (Loader) correctly round-trip a release report through Kafka.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-reader")

	reports := loadMockData(t)
	payload := reports[0] // CCS-001: ammonia, Calumet Cold Storage

	baseDate := time.Date(2024, time.April, 26, 12, 0, 0, 0, time.UTC)
	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte("CCS-001"),
		Value: payload,
		Time:  baseDate,
	}))

	// Retry because the consumer group may need time to rebalance before
	// partitions are assigned and messages become available.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var batch []domain.RawEvent
	for {
		var err error
		batch, err = reader.ExtractBatch(ctx, 1)
		require.NoError(t, err)
		if len(batch) > 0 {
			break
		}
		if ctx.Err() != nil {
			t.Fatal("timed out waiting for message from source topic")
		}
	}
	require.Len(t, batch, 1)
	raw := batch[0]
	assert.Equal(t, []byte("CCS-001"), raw.Key)
	assert.JSONEq(t, string(payload), string(raw.Value))
	assert.Equal(t, testSourceTopic, raw.Topic)
	require.NotNil(t, raw.Commit, "commit callback should be set")
	require.NoError(t, raw.Commit(ctx))

	assessment, err := newAssessor().Transform(ctx, raw)
	require.NoError(t, err)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, writer.LoadBatch(ctx, []domain.HazardAssessment{assessment}))

	am := readAssessed(ctx, t, newSinkConsumer(t, broker))
	assert.Equal(t, assessment.ID, am.Key)
	assert.Equal(t, "ammonia", am.Headers["chemical"])
	assert.Equal(t, string(assessment.HealthImpact.Severity), am.Headers["severity"])
	_, err = time.Parse(time.RFC3339, am.Headers["processed_at"])
	assert.NoError(t, err, "processed_at should be valid RFC3339")

	assert.Equal(t, "CCS-001", am.Assessment.ReportID)
	assert.Equal(t, "Calumet Cold Storage", am.Assessment.Facility)
	assert.Equal(t, assessment.Zones, am.Assessment.Zones)
	assert.Len(t, am.Assessment.Sensors, testBudget)
}

// TestPipelineEndToEnd wires the full pipeline (Reader → Assessor → Writer)
// with real Kafka and verifies that every mock release report is assessed.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-pipeline")

	reports := loadMockData(t)
	baseDate := time.Date(2024, time.April, 26, 12, 0, 0, 0, time.UTC)

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	msgs := make([]kafkago.Message, 0, len(reports))
	for i, payload := range reports {
		msgs = append(msgs, kafkago.Message{
			Key:   []byte(fmt.Sprintf("report-%d", i)),
			Value: payload,
			Time:  baseDate,
		})
	}
	require.NoError(t, producer.WriteMessages(ctx, msgs...))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, newAssessor(), writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := newSinkConsumer(t, broker)
	received := make([]assessedMessage, 0, len(reports))
	for len(received) < len(reports) {
		received = append(received, readAssessed(ctx, t, consumer))
	}

	pipelineCancel()
	require.NoError(t, <-errCh)
	assert.True(t, p.Ready())

	require.Len(t, received, len(reports))
	chemicals := map[string]int{}
	multi := 0
	for _, am := range received {
		a := am.Assessment
		chemicals[a.Chemical]++
		if a.MultiSource != nil {
			multi++
		}

		assert.Equal(t, a.Chemical, am.Headers["chemical"], "chemical header")
		assert.NotEmpty(t, am.Headers["severity"], "missing severity header")
		_, err := time.Parse(time.RFC3339, am.Headers["processed_at"])
		assert.NoError(t, err, "invalid processed_at format")

		assert.LessOrEqual(t, a.Zones.Red.Distance, a.Zones.Orange.Distance)
		assert.LessOrEqual(t, a.Zones.Orange.Distance, a.Zones.Yellow.Distance)
		assert.Len(t, a.Sensors, testBudget)
	}

	assert.Len(t, chemicals, len(chemical.Default().Names()))
	assert.Equal(t, 6, chemicals["chlorine"], "chlorine count")
	assert.Equal(t, 6, multi, "multi-source count")

	// Spot-check the Tacoma phosgene release in slightly stable air.
	var found bool
	for _, am := range received {
		if am.Assessment.ReportID != "TPM-065" {
			continue
		}
		found = true
		assert.Equal(t, "phosgene", am.Assessment.Chemical)
		assert.Equal(t, "Tacoma Pulp Mill", am.Assessment.Facility)
		require.NotNil(t, am.Assessment.Detail)
		break
	}
	assert.True(t, found, "expected to find TPM-065")
}

// TestPipelineTransformError verifies that a poison pill is skipped and the
// pipeline continues processing valid reports.
func TestPipelineTransformError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-poison")

	baseDate := time.Date(2024, time.April, 26, 12, 0, 0, 0, time.UTC)
	reports := loadMockData(t)

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("bad"), Value: []byte("not-json{{{"), Time: baseDate},
		kafkago.Message{Key: []byte("nochem"), Value: []byte(`{"id":"X-1","release_rate":3}`), Time: baseDate},
		kafkago.Message{Key: []byte("good"), Value: reports[0], Time: baseDate},
	))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, newAssessor(), writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := newSinkConsumer(t, broker)
	am := readAssessed(ctx, t, consumer)
	assert.Equal(t, "CCS-001", am.Assessment.ReportID)
	assert.Equal(t, "ammonia", am.Assessment.Chemical)

	// Verify no second message arrives (the poison pills were skipped).
	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no second message on sink topic")

	pipelineCancel()
	require.NoError(t, <-errCh)
}
