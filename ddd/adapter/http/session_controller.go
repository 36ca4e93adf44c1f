package http

import (
	"fmt"
	nethttp "net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	appsvc "stream-compiler-service/ddd/application/app"
	"stream-compiler-service/ddd/application/cqe"
	"stream-compiler-service/pkg/assert"
	"stream-compiler-service/pkg/manager"
	"stream-compiler-service/pkg/restapi"
)

var (
	sessionControllerOnce      sync.Once
	singletonSessionController *sessionControllerImpl
)

func init() {
	manager.RegisterControllerPlugin(&SessionControllerPlugin{})
}

type SessionControllerPlugin struct {
}

func (p *SessionControllerPlugin) Name() string {
	return "sessionControllerPlugin"
}

func (p *SessionControllerPlugin) MustCreateController(deps *manager.Dependencies) manager.Controller {
	assert.NotCircular()
	sessionControllerOnce.Do(func() {
		singletonSessionController = &sessionControllerImpl{
			sessionApp: appsvc.DefaultSessionApp(),
		}
	})
	assert.NotNil(singletonSessionController)
	return singletonSessionController
}

// sessionControllerImpl 游戏会话时间轴HTTP接口
type sessionControllerImpl struct {
	sessionApp appsvc.SessionApp
}

func (c *sessionControllerImpl) RegisterRoutes(group *gin.RouterGroup) {
	sessions := group.Group("/sessions")
	sessions.GET("/:session_uuid", c.GetSession)
	sessions.GET("/:session_uuid/export", c.ExportSession)
	sessions.GET("/:session_uuid/join-context", c.JoinContext)
	group.GET("/videos/:video_uuid/session", c.GetSessionByVideo)
}

// GetSession 获取会话时间轴
func (c *sessionControllerImpl) GetSession(ctx *gin.Context) {
	req := cqe.GetGameSessionReq{
		SessionUUID: ctx.Param("session_uuid"),
	}
	if err := req.Validate(); err != nil {
		restapi.Failed(ctx, err)
		return
	}

	session, err := c.sessionApp.GetSession(ctx.Request.Context(), req.SessionUUID)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, session)
}

// GetSessionByVideo 按成片查询会话时间轴
func (c *sessionControllerImpl) GetSessionByVideo(ctx *gin.Context) {
	req := cqe.GetSessionByVideoReq{
		VideoUUID: ctx.Param("video_uuid"),
	}
	if err := req.Validate(); err != nil {
		restapi.Failed(ctx, err)
		return
	}

	session, err := c.sessionApp.GetSessionByVideo(ctx.Request.Context(), req.VideoUUID)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, session)
}

// ExportSession 导出时间轴文件，格式由format参数决定
func (c *sessionControllerImpl) ExportSession(ctx *gin.Context) {
	req := cqe.ExportGameSessionReq{
		SessionUUID: ctx.Param("session_uuid"),
		Format:      ctx.Query("format"),
	}
	if err := req.Validate(); err != nil {
		restapi.Failed(ctx, err)
		return
	}

	export, err := c.sessionApp.ExportSession(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
	ctx.Data(nethttp.StatusOK, export.ContentType, export.Data)
}

// JoinContext 计算中途加入时应呈现的上下文
func (c *sessionControllerImpl) JoinContext(ctx *gin.Context) {
	videoTimeMs, err := strconv.ParseInt(ctx.DefaultQuery("video_time_ms", "0"), 10, 64)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	req := cqe.JoinContextReq{
		SessionUUID: ctx.Param("session_uuid"),
		VideoTimeMs: videoTimeMs,
	}
	if err := req.Validate(); err != nil {
		restapi.Failed(ctx, err)
		return
	}

	joinCtx, err := c.sessionApp.JoinContext(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, joinCtx)
}
