package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strconv"

	"stream-compiler-service/ddd/domain/vo"
	"stream-compiler-service/pkg/errno"
)

// ExportFormat 时间线导出格式
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportSRT  ExportFormat = "srt"
	ExportVTT  ExportFormat = "vtt"
	ExportCSV  ExportFormat = "csv"
	ExportXML  ExportFormat = "xml"
)

// IsValid 是否为支持的导出格式
func (f ExportFormat) IsValid() bool {
	switch f {
	case ExportJSON, ExportSRT, ExportVTT, ExportCSV, ExportXML:
		return true
	}
	return false
}

// ContentType 对应的MIME类型
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportJSON:
		return "application/json"
	case ExportSRT:
		return "application/x-subrip"
	case ExportVTT:
		return "text/vtt"
	case ExportCSV:
		return "text/csv"
	case ExportXML:
		return "application/xml"
	}
	return "application/octet-stream"
}

// FileExtension 导出文件扩展名
func (f ExportFormat) FileExtension() string { return string(f) }

// SessionExporter 时间线导出服务接口，纯函数：同一会话同一格式输出逐字节一致
type SessionExporter interface {
	Export(session *vo.GameSession, format ExportFormat) ([]byte, error)
}

type sessionExporterImpl struct{}

// NewSessionExporter 创建时间线导出服务
func NewSessionExporter() SessionExporter {
	return &sessionExporterImpl{}
}

func (e *sessionExporterImpl) Export(session *vo.GameSession, format ExportFormat) ([]byte, error) {
	switch format {
	case ExportJSON:
		return e.exportJSON(session)
	case ExportSRT:
		return e.exportSRT(session)
	case ExportVTT:
		return e.exportVTT(session)
	case ExportCSV:
		return e.exportCSV(session)
	case ExportXML:
		return e.exportXML(session)
	}
	return nil, errno.NewBizError(errno.ErrExportFormatUnsupported, fmt.Errorf("format %q", format))
}

func (e *sessionExporterImpl) exportJSON(session *vo.GameSession) ([]byte, error) {
	return json.MarshalIndent(session, "", "  ")
}

func (e *sessionExporterImpl) exportSRT(session *vo.GameSession) ([]byte, error) {
	var buf bytes.Buffer
	for i, event := range session.Events {
		fmt.Fprintf(&buf, "%d\n", i+1)
		fmt.Fprintf(&buf, "%s --> %s\n", formatSRTTime(event.TimestampMs), formatSRTTime(event.EndTimeMs()))
		buf.WriteString(cueText(event))
		buf.WriteString("\n\n")
	}
	return buf.Bytes(), nil
}

func (e *sessionExporterImpl) exportVTT(session *vo.GameSession) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("WEBVTT\n\n")
	for _, event := range session.Events {
		fmt.Fprintf(&buf, "%s --> %s\n", formatVTTTime(event.TimestampMs), formatVTTTime(event.EndTimeMs()))
		buf.WriteString(cueText(event))
		buf.WriteString("\n\n")
	}
	return buf.Bytes(), nil
}

func (e *sessionExporterImpl) exportCSV(session *vo.GameSession) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "type", "timestamp", "duration", "question_number", "metadata_json"}); err != nil {
		return nil, err
	}
	for _, event := range session.Events {
		metadataJSON := ""
		if len(event.Metadata) > 0 {
			raw, err := json.Marshal(event.Metadata)
			if err != nil {
				return nil, err
			}
			metadataJSON = string(raw)
		}
		row := []string{
			event.ID,
			event.Type.String(),
			strconv.FormatInt(event.TimestampMs, 10),
			strconv.FormatInt(event.DurationMs, 10),
			strconv.Itoa(event.QuestionNumber),
			metadataJSON,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type xmlEvent struct {
	XMLName        xml.Name `xml:"event"`
	ID             string   `xml:"id,attr"`
	Type           string   `xml:"type,attr"`
	TimestampMs    int64    `xml:"timestamp"`
	DurationMs     int64    `xml:"duration"`
	QuestionNumber int      `xml:"question_number,omitempty"`
	Metadata       string   `xml:"metadata,omitempty"`
}

type xmlSession struct {
	XMLName         xml.Name   `xml:"game_session"`
	SessionID       string     `xml:"session_id,attr"`
	VideoID         string     `xml:"video_id,attr"`
	FormatVersion   string     `xml:"format_version,attr"`
	TotalDurationMs int64      `xml:"total_duration"`
	QuestionCount   int        `xml:"question_count"`
	Events          []xmlEvent `xml:"events>event"`
}

func (e *sessionExporterImpl) exportXML(session *vo.GameSession) ([]byte, error) {
	doc := xmlSession{
		SessionID:       session.SessionID,
		VideoID:         session.VideoID,
		FormatVersion:   session.FormatVersion,
		TotalDurationMs: session.TotalDurationMs,
		QuestionCount:   session.QuestionCount,
		Events:          make([]xmlEvent, 0, len(session.Events)),
	}
	for _, event := range session.Events {
		metadataJSON := ""
		if len(event.Metadata) > 0 {
			raw, err := json.Marshal(event.Metadata)
			if err != nil {
				return nil, err
			}
			metadataJSON = string(raw)
		}
		doc.Events = append(doc.Events, xmlEvent{
			ID:             event.ID,
			Type:           event.Type.String(),
			TimestampMs:    event.TimestampMs,
			DurationMs:     event.DurationMs,
			QuestionNumber: event.QuestionNumber,
			Metadata:       metadataJSON,
		})
	}
	raw, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), raw...), nil
}

// cueText 字幕条目正文
func cueText(event vo.GameEvent) string {
	text := event.Type.String()
	if event.QuestionNumber > 0 {
		text += fmt.Sprintf(" (question %d)", event.QuestionNumber)
	}
	if value, ok := event.Metadata["countdown_value"]; ok {
		text += fmt.Sprintf(" [%v]", value)
	}
	return text
}

// formatSRTTime HH:MM:SS,mmm
func formatSRTTime(ms int64) string {
	h, m, s, milli := splitTime(ms)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, milli)
}

// formatVTTTime HH:MM:SS.mmm
func formatVTTTime(ms int64) string {
	h, m, s, milli := splitTime(ms)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, milli)
}

func splitTime(ms int64) (h, m, s, milli int64) {
	milli = ms % 1000
	totalSeconds := ms / 1000
	s = totalSeconds % 60
	m = (totalSeconds / 60) % 60
	h = totalSeconds / 3600
	return
}
