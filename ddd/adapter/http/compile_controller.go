package http

import (
	"sync"

	"github.com/gin-gonic/gin"

	appsvc "stream-compiler-service/ddd/application/app"
	"stream-compiler-service/ddd/application/cqe"
	"stream-compiler-service/pkg/assert"
	"stream-compiler-service/pkg/manager"
	"stream-compiler-service/pkg/restapi"
)

var (
	compileControllerOnce      sync.Once
	singletonCompileController *compileControllerImpl
)

func init() {
	manager.RegisterControllerPlugin(&CompileControllerPlugin{})
}

type CompileControllerPlugin struct {
}

func (p *CompileControllerPlugin) Name() string {
	return "compileControllerPlugin"
}

func (p *CompileControllerPlugin) MustCreateController(deps *manager.Dependencies) manager.Controller {
	assert.NotCircular()
	compileControllerOnce.Do(func() {
		singletonCompileController = &compileControllerImpl{
			compileApp: appsvc.DefaultCompileApp(),
		}
	})
	assert.NotNil(singletonCompileController)
	return singletonCompileController
}

// compileControllerImpl 合成作业HTTP接口
type compileControllerImpl struct {
	compileApp appsvc.CompileApp
}

func (c *compileControllerImpl) RegisterRoutes(group *gin.RouterGroup) {
	jobs := group.Group("/compile-jobs")
	jobs.POST("", c.CreateCompileJob)
	jobs.GET("", c.ListCompileJobs)
	jobs.GET("/:job_uuid", c.GetCompileJob)
	jobs.GET("/:job_uuid/progress", c.GetCompileProgress)
	jobs.POST("/:job_uuid/cancel", c.CancelCompileJob)
}

// CreateCompileJob 创建合成作业
func (c *compileControllerImpl) CreateCompileJob(ctx *gin.Context) {
	var req cqe.CreateCompileJobReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		restapi.Failed(ctx, err)
		return
	}
	req.UserUUID = ctx.GetHeader("X-User-UUID")

	job, err := c.compileApp.CreateCompileJob(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, job)
}

// GetCompileJob 查询作业详情
func (c *compileControllerImpl) GetCompileJob(ctx *gin.Context) {
	req := cqe.QueryCompileJobReq{
		JobUUID:  ctx.Param("job_uuid"),
		UserUUID: ctx.GetHeader("X-User-UUID"),
	}
	if err := req.Validate(); err != nil {
		restapi.Failed(ctx, err)
		return
	}

	job, err := c.compileApp.GetCompileJob(ctx.Request.Context(), req.JobUUID)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, job)
}

// ListCompileJobs 查询用户作业列表
func (c *compileControllerImpl) ListCompileJobs(ctx *gin.Context) {
	var req cqe.ListCompileJobsReq
	if err := ctx.ShouldBindQuery(&req); err != nil {
		restapi.Failed(ctx, err)
		return
	}
	req.UserUUID = ctx.GetHeader("X-User-UUID")

	list, err := c.compileApp.ListCompileJobs(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, list)
}

// GetCompileProgress 查询作业进度
func (c *compileControllerImpl) GetCompileProgress(ctx *gin.Context) {
	req := cqe.GetCompileProgressReq{
		JobUUID: ctx.Param("job_uuid"),
	}
	if err := req.Validate(); err != nil {
		restapi.Failed(ctx, err)
		return
	}

	progress, err := c.compileApp.GetCompileProgress(ctx.Request.Context(), req.JobUUID)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, progress)
}

// CancelCompileJob 取消作业，运行中的作业在片段边界退出
func (c *compileControllerImpl) CancelCompileJob(ctx *gin.Context) {
	req := cqe.CancelCompileJobReq{
		JobUUID:  ctx.Param("job_uuid"),
		UserUUID: ctx.GetHeader("X-User-UUID"),
	}
	if err := req.Validate(); err != nil {
		restapi.Failed(ctx, err)
		return
	}

	if err := c.compileApp.CancelCompileJob(ctx.Request.Context(), req.JobUUID); err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, gin.H{"message": "Compile job cancelled successfully"})
}
