package messaging

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"stream-compiler-service/ddd/domain/gateway"
	"stream-compiler-service/internal/resource"
	"stream-compiler-service/pkg/config"
	"stream-compiler-service/pkg/logger"
)

const (
	eventCompileCompleted = "compile.completed"
	eventCompileFailed    = "compile.failed"
)

// compileResultEvent is the wire payload published to the session-compiled topic.
type compileResultEvent struct {
	Event        string `json:"event"`
	VideoUUID    string `json:"video_uuid"`
	JobUUID      string `json:"job_uuid"`
	SessionUUID  string `json:"session_uuid,omitempty"`
	OutputKey    string `json:"output_key,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	ReportedAt   int64  `json:"reported_at"`
}

type kafkaResultReporter struct {
	kafkaResource *resource.KafkaResource
}

var (
	reporterOnce      sync.Once
	singletonReporter gateway.CompileResultReporter
)

// DefaultCompileResultReporter returns a singleton reporter backed by the default Kafka resource.
func DefaultCompileResultReporter() gateway.CompileResultReporter {
	reporterOnce.Do(func() {
		singletonReporter = NewKafkaResultReporter(resource.DefaultKafkaResource())
	})
	return singletonReporter
}

// NewKafkaResultReporter builds a reporter with the provided Kafka resource.
func NewKafkaResultReporter(kafkaResource *resource.KafkaResource) gateway.CompileResultReporter {
	return &kafkaResultReporter{kafkaResource: kafkaResource}
}

func (r *kafkaResultReporter) ReportCompiled(ctx context.Context, videoUUID, jobUUID, sessionUUID, outputKey string) error {
	return r.publish(ctx, compileResultEvent{
		Event:       eventCompileCompleted,
		VideoUUID:   videoUUID,
		JobUUID:     jobUUID,
		SessionUUID: sessionUUID,
		OutputKey:   outputKey,
		ReportedAt:  time.Now().UnixMilli(),
	})
}

func (r *kafkaResultReporter) ReportFailed(ctx context.Context, videoUUID, jobUUID, errorMessage string) error {
	return r.publish(ctx, compileResultEvent{
		Event:        eventCompileFailed,
		VideoUUID:    videoUUID,
		JobUUID:      jobUUID,
		ErrorMessage: errorMessage,
		ReportedAt:   time.Now().UnixMilli(),
	})
}

func (r *kafkaResultReporter) publish(ctx context.Context, event compileResultEvent) error {
	cfg := config.GetGlobalConfig()
	if cfg == nil || !cfg.Kafka.Enabled {
		logger.Infof("kafka disabled, skip result event event=%s job_uuid=%s", event.Event, event.JobUUID)
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	topic := cfg.Kafka.Topics.SessionCompiled
	if err := r.kafkaResource.Client().Produce(ctx, topic, []byte(event.VideoUUID), payload); err != nil {
		logger.Errorf("publish result event failed topic=%s job_uuid=%s err=%v", topic, event.JobUUID, err)
		return err
	}

	logger.Infof("result event published topic=%s event=%s job_uuid=%s", topic, event.Event, event.JobUUID)
	return nil
}
