package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stream-compiler-service/ddd/application/cqe"
	"stream-compiler-service/ddd/domain/service"
	"stream-compiler-service/ddd/domain/vo"
	"stream-compiler-service/pkg/errno"
)

type memorySessionRepo struct {
	sessions map[string]*vo.GameSession
}

func (r *memorySessionRepo) SaveSession(ctx context.Context, session *vo.GameSession) error {
	if r.sessions == nil {
		r.sessions = make(map[string]*vo.GameSession)
	}
	r.sessions[session.SessionID] = session
	return nil
}

func (r *memorySessionRepo) GetSessionByID(ctx context.Context, sessionID string) (*vo.GameSession, error) {
	return r.sessions[sessionID], nil
}

func (r *memorySessionRepo) GetSessionByVideoID(ctx context.Context, videoID string) (*vo.GameSession, error) {
	for _, s := range r.sessions {
		if s.VideoID == videoID {
			return s, nil
		}
	}
	return nil, nil
}

func (r *memorySessionRepo) DeleteSession(ctx context.Context, sessionID string) error {
	delete(r.sessions, sessionID)
	return nil
}

func fixtureSession() *vo.GameSession {
	return &vo.GameSession{
		SessionID:       "session-1",
		VideoID:         "video-1",
		TotalDurationMs: 30000,
		QuestionCount:   1,
		Events: []vo.GameEvent{
			{ID: "evt-1", Type: vo.EventGameStart, TimestampMs: 0, DurationMs: 3000},
			{ID: "evt-2", Type: vo.EventQuestionStart, TimestampMs: 3000, DurationMs: 12000, QuestionNumber: 1},
			{ID: "evt-3", Type: vo.EventCountdownStart, TimestampMs: 15000, DurationMs: 10000, QuestionNumber: 1},
			{ID: "evt-4", Type: vo.EventGameEnd, TimestampMs: 30000, DurationMs: 0},
		},
		CreatedAt:     time.Now(),
		FormatVersion: vo.SessionFormatVersion,
	}
}

func newSessionApp(t *testing.T) (SessionApp, *memorySessionRepo) {
	t.Helper()
	repo := &memorySessionRepo{}
	require.NoError(t, repo.SaveSession(context.Background(), fixtureSession()))
	return NewSessionAppWith(repo, service.NewSessionExporter()), repo
}

func TestSessionApp_GetSession(t *testing.T) {
	svc, _ := newSessionApp(t)

	got, err := svc.GetSession(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Equal(t, "video-1", got.VideoID)
	assert.Equal(t, 4, got.EventCount)
	assert.Equal(t, vo.SessionFormatVersion, got.FormatVersion)

	_, err = svc.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, errno.ErrSessionNotFound)
}

func TestSessionApp_GetSessionByVideo(t *testing.T) {
	svc, _ := newSessionApp(t)

	got, err := svc.GetSessionByVideo(context.Background(), "video-1")
	require.NoError(t, err)
	assert.Equal(t, "session-1", got.SessionID)

	_, err = svc.GetSessionByVideo(context.Background(), "missing")
	assert.ErrorIs(t, err, errno.ErrSessionNotFound)
}

func TestSessionApp_ExportSession(t *testing.T) {
	svc, _ := newSessionApp(t)

	export, err := svc.ExportSession(context.Background(), &cqe.ExportGameSessionReq{SessionUUID: "session-1", Format: "srt"})
	require.NoError(t, err)
	assert.Equal(t, "session-1.srt", export.FileName)
	assert.Equal(t, "application/x-subrip", export.ContentType)
	assert.NotEmpty(t, export.Data)

	_, err = svc.ExportSession(context.Background(), &cqe.ExportGameSessionReq{SessionUUID: "session-1", Format: "docx"})
	assert.ErrorIs(t, err, errno.ErrExportFormatUnsupported)
}

func TestSessionApp_JoinContext(t *testing.T) {
	svc, _ := newSessionApp(t)

	got, err := svc.JoinContext(context.Background(), &cqe.JoinContextReq{SessionUUID: "session-1", VideoTimeMs: 5000})
	require.NoError(t, err)
	require.NotNil(t, got.Context.CurrentEvent)
	assert.Equal(t, vo.EventQuestionStart, got.Context.CurrentEvent.Type)
	assert.True(t, got.Context.ShouldShowQuestion)
	assert.Equal(t, 1, got.Context.QuestionNumber)
	assert.Equal(t, int64(2000), got.Context.TimeInCurrentMs)

	_, err = svc.JoinContext(context.Background(), &cqe.JoinContextReq{SessionUUID: "session-1", VideoTimeMs: -1})
	assert.ErrorIs(t, err, errno.ErrInvalidParam)
}
