//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/couchcryptid/hazard-engine/internal/adapter/kafka"
	"github.com/couchcryptid/hazard-engine/internal/config"
	"github.com/couchcryptid/hazard-engine/internal/domain"
	"github.com/couchcryptid/hazard-engine/internal/hazard"
	"github.com/couchcryptid/hazard-engine/internal/observability"
	"github.com/couchcryptid/hazard-engine/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSourceTopic = "test-snapshots"
	testSinkTopic   = "test-assessments"
)

// publishedAssessment is one message read back from the sink topic.
type publishedAssessment struct {
	Assessment domain.Assessment
	Key        string
	Headers    map[string]string
}

func readAssessment(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedAssessment {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var a domain.Assessment
	require.NoError(t, json.Unmarshal(msg.Value, &a), "unmarshal sink message")

	return publishedAssessment{Assessment: a, Key: string(msg.Key), Headers: headers}
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

func sinkConsumer(t *testing.T, broker string) *kafkago.Reader {
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

func fallbackTransformer(t *testing.T) *pipeline.AssessmentTransformer {
	t.Helper()
	reg, err := hazard.LoadRegistry(context.Background(), domain.AllHazards(),
		hazard.DirSource{Dir: t.TempDir()}, hazard.WithLogger(discardLogger()))
	require.NoError(t, err)
	return pipeline.NewTransformer(hazard.NewAssessor(reg, discardLogger()), discardLogger())
}

// TestKafkaReaderWriter round-trips one snapshot through the Reader, the
// transformer and the Writer.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-reader")

	payload := loadMockSnapshots(t)[0]
	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })
	require.NoError(t, producer.WriteMessages(ctx, kafkago.Message{Key: []byte("ridge-north"), Value: payload}))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	// The consumer group may need to rebalance before a partition is assigned.
	var batch []domain.RawEvent
	for len(batch) == 0 {
		var err error
		batch, err = reader.ExtractBatch(ctx, 1)
		require.NoError(t, err)
	}
	require.Len(t, batch, 1)
	raw := batch[0]
	assert.Equal(t, []byte("ridge-north"), raw.Key)
	assert.JSONEq(t, string(payload), string(raw.Value))
	assert.Equal(t, testSourceTopic, raw.Topic)
	require.NotNil(t, raw.Commit)
	require.NoError(t, raw.Commit(ctx))

	out, err := fallbackTransformer(t).Transform(ctx, raw)
	require.NoError(t, err)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, writer.LoadBatch(ctx, []domain.OutputEvent{out}))

	got := readAssessment(ctx, t, sinkConsumer(t, broker))
	assert.Equal(t, "ridge-north", got.Key)
	assert.Equal(t, "wildfire", got.Headers["hazards"])
	assert.Equal(t, "critical", got.Headers["risk_level"])
	_, err = time.Parse(time.RFC3339, got.Headers["assessed_at"])
	assert.NoError(t, err, "assessed_at should be RFC3339")
	assert.InDelta(t, 76.125, got.Assessment.Overall.RiskScore, 1e-9)
}

// TestPipelineEndToEnd runs the full pipeline over every mock snapshot.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-pipeline")

	snaps := loadMockSnapshots(t)
	msgs := make([]kafkago.Message, len(snaps))
	for i, s := range snaps {
		msgs[i] = kafkago.Message{Key: []byte(fmt.Sprintf("snapshot-%d", i)), Value: s}
	}
	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })
	require.NoError(t, producer.WriteMessages(ctx, msgs...))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	p := pipeline.New(reader, fallbackTransformer(t), writer, discardLogger(), observability.NewMetricsForTesting(), 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := sinkConsumer(t, broker)
	byAOI := make(map[string]publishedAssessment, len(snaps))
	for len(byAOI) < len(snaps) {
		got := readAssessment(ctx, t, consumer)
		byAOI[got.Key] = got
	}

	pipelineCancel()
	require.NoError(t, <-errCh)
	assert.NoError(t, p.CheckReadiness(ctx))

	for aoi, got := range byAOI {
		assert.Equal(t, aoi, got.Assessment.AOIID)
		assert.Equal(t, string(got.Assessment.Overall.RiskLevel), got.Headers["risk_level"])
		for _, pred := range got.Assessment.Predictions {
			assert.NoError(t, pred.Validate(), "%s/%s", aoi, pred.Hazard)
		}
	}

	sparse := byAOI["sparse-sensor-site"].Assessment
	assert.Len(t, sparse.Predictions, len(domain.AllHazards()))
	assert.Equal(t, "wildfire,flood,landslide", byAOI["sparse-sensor-site"].Headers["hazards"])
}

// TestPipelineSkipsPoisonSnapshot verifies that an unparseable message is
// skipped and the pipeline keeps processing.
func TestPipelineSkipsPoisonSnapshot(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-poison")

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })
	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("bad"), Value: []byte("not-json{{{")},
		kafkago.Message{Key: []byte("ridge-north"), Value: loadMockSnapshots(t)[0]},
	))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, fallbackTransformer(t), writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := sinkConsumer(t, broker)
	got := readAssessment(ctx, t, consumer)
	assert.Equal(t, "ridge-north", got.Key)

	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err := consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no second message on sink topic")

	pipelineCancel()
	require.NoError(t, <-errCh)
}
