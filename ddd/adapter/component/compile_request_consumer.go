package component

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	appsvc "stream-compiler-service/ddd/application/app"
	"stream-compiler-service/ddd/application/cqe"
	"stream-compiler-service/pkg/config"
	pkgkafka "stream-compiler-service/pkg/kafka"
	"stream-compiler-service/pkg/logger"
	"stream-compiler-service/pkg/manager"
)

const compileConsumerGroup = "stream-compiler-group"

func init() {
	manager.RegisterComponentPlugin(&CompileRequestConsumerPlugin{})
}

// CompileRequestConsumerPlugin 消费上游的合成请求事件
type CompileRequestConsumerPlugin struct{}

func (p *CompileRequestConsumerPlugin) Name() string { return "compileRequestConsumer" }

func (p *CompileRequestConsumerPlugin) MustCreateComponent(deps *manager.Dependencies) manager.Component {
	return &compileRequestConsumer{app: appsvc.DefaultCompileApp()}
}

// compileRequestMessage 上游合成请求的wire格式
type compileRequestMessage struct {
	UserUUID  string                 `json:"user_uuid"`
	VideoUUID string                 `json:"video_uuid"`
	Clips     []cqe.ClipInputReq     `json:"clips"`
	Durations *cqe.DurationConfigReq `json:"durations,omitempty"`
	Audio     *cqe.AudioConfigReq    `json:"audio,omitempty"`
	Output    *cqe.OutputSpecReq     `json:"output,omitempty"`
}

type compileRequestConsumer struct {
	app    appsvc.CompileApp
	ctx    context.Context
	cancel context.CancelFunc
}

func (c *compileRequestConsumer) Start() error {
	cfg := config.GetGlobalConfig()
	if cfg == nil || !cfg.Kafka.Enabled {
		logger.Infof("kafka disabled, compile request consumer not started")
		return nil
	}
	topic := cfg.Kafka.Topics.CompileRequests

	c.ctx, c.cancel = context.WithCancel(context.Background())
	reader := pkgkafka.DefaultClient().Reader(topic, compileConsumerGroup)
	go func() {
		defer reader.Close()
		logger.Infof("Kafka consumer started topic=%s group=%s", topic, compileConsumerGroup)
		for {
			msg, err := reader.ReadMessage(c.ctx)
			if err != nil {
				if c.ctx.Err() != nil {
					return
				}
				if errors.Is(err, io.EOF) || strings.Contains(err.Error(), "EOF") {
					logger.Debug("Kafka reader EOF", nil)
				} else {
					logger.Warnf("Kafka read error error=%s", err.Error())
				}
				continue
			}

			var m compileRequestMessage
			if err := json.Unmarshal(msg.Value, &m); err != nil {
				logger.Warnf("Kafka message unmarshal error error=%s", err.Error())
				continue
			}
			logger.Infof("compile request received video_uuid=%s user_uuid=%s clips=%d", m.VideoUUID, m.UserUUID, len(m.Clips))

			req := &cqe.CreateCompileJobReq{
				UserUUID:  m.UserUUID,
				VideoUUID: m.VideoUUID,
				Clips:     m.Clips,
				Durations: m.Durations,
				Audio:     m.Audio,
				Output:    m.Output,
			}
			if _, err := c.app.CreateCompileJob(context.Background(), req); err != nil {
				logger.Warnf("CreateCompileJob failed error=%s video_uuid=%s", err.Error(), m.VideoUUID)
			}
		}
	}()
	return nil
}

func (c *compileRequestConsumer) Stop() error {
	if c.cancel != nil {
		c.cancel()
	}
	return nil
}

func (c *compileRequestConsumer) GetName() string { return "compileRequestConsumer" }
