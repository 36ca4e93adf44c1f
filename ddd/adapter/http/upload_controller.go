package http

import (
	"sync"

	"github.com/gin-gonic/gin"

	appsvc "stream-compiler-service/ddd/application/app"
	"stream-compiler-service/ddd/application/cqe"
	"stream-compiler-service/pkg/assert"
	"stream-compiler-service/pkg/errno"
	"stream-compiler-service/pkg/manager"
	"stream-compiler-service/pkg/restapi"
)

var (
	uploadControllerOnce      sync.Once
	singletonUploadController *uploadControllerImpl
)

func init() {
	manager.RegisterControllerPlugin(&UploadControllerPlugin{})
}

type UploadControllerPlugin struct {
}

func (p *UploadControllerPlugin) Name() string {
	return "uploadControllerPlugin"
}

func (p *UploadControllerPlugin) MustCreateController(deps *manager.Dependencies) manager.Controller {
	assert.NotCircular()
	uploadControllerOnce.Do(func() {
		singletonUploadController = &uploadControllerImpl{
			uploadApp: appsvc.DefaultUploadApp(),
		}
	})
	assert.NotNil(singletonUploadController)
	return singletonUploadController
}

// uploadControllerImpl 素材上传HTTP接口
type uploadControllerImpl struct {
	uploadApp appsvc.UploadApp
}

func (c *uploadControllerImpl) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/clips/upload", c.UploadClip)
}

// UploadClip 上传题目素材，超过阈值的文件走分片上传
func (c *uploadControllerImpl) UploadClip(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		restapi.Failed(ctx, errno.ErrFileNameIllegal)
		return
	}

	req := cqe.UploadClipReq{
		UserUUID: ctx.GetHeader("X-User-UUID"),
		FileName: ctx.DefaultPostForm("file_name", fileHeader.Filename),
	}
	if err := req.Validate(); err != nil {
		restapi.Failed(ctx, err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		restapi.Failed(ctx, errno.NewBizError(errno.ErrUploadError, err))
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	result, err := c.uploadApp.UploadClip(ctx.Request.Context(), &req, file, fileHeader.Size, contentType)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, result)
}
