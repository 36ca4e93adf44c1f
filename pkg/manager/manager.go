package manager

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"stream-compiler-service/pkg/config"
	"stream-compiler-service/pkg/logger"
)

// Resource 基础资源（数据库、缓存、消息队列等）
type Resource interface {
	MustOpen()
	Close()
}

// ResourcePlugin 资源插件，通过init注册
type ResourcePlugin interface {
	Name() string
	MustCreateResource() Resource
}

// Component 后台组件（worker、consumer等）
type Component interface {
	GetName() string
	Start() error
	Stop() error
}

// ComponentPlugin 组件插件，通过init注册
type ComponentPlugin interface {
	Name() string
	MustCreateComponent(deps *Dependencies) Component
}

// Controller HTTP控制器
type Controller interface {
	RegisterRoutes(group *gin.RouterGroup)
}

// ControllerPlugin 控制器插件，通过init注册
type ControllerPlugin interface {
	Name() string
	MustCreateController(deps *Dependencies) Controller
}

// Dependencies 依赖注入容器
type Dependencies struct {
	DB     *gorm.DB
	Config *config.Config
}

var (
	mu                sync.Mutex
	resourcePlugins   []ResourcePlugin
	componentPlugins  []ComponentPlugin
	controllerPlugins []ControllerPlugin
	openedResources   []Resource
	startedComponents []Component
	controllers       []Controller
)

// RegisterResourcePlugin 注册资源插件
func RegisterResourcePlugin(p ResourcePlugin) {
	mu.Lock()
	defer mu.Unlock()
	resourcePlugins = append(resourcePlugins, p)
}

// RegisterComponentPlugin 注册组件插件
func RegisterComponentPlugin(p ComponentPlugin) {
	mu.Lock()
	defer mu.Unlock()
	componentPlugins = append(componentPlugins, p)
}

// RegisterControllerPlugin 注册控制器插件
func RegisterControllerPlugin(p ControllerPlugin) {
	mu.Lock()
	defer mu.Unlock()
	controllerPlugins = append(controllerPlugins, p)
}

// MustInitResources 打开所有注册的资源，失败直接panic
func MustInitResources() {
	mu.Lock()
	defer mu.Unlock()
	for _, p := range resourcePlugins {
		res := p.MustCreateResource()
		res.MustOpen()
		openedResources = append(openedResources, res)
		logger.Infof("Resource opened name=%s", p.Name())
	}
}

// CloseResources 逆序关闭所有资源
func CloseResources() {
	mu.Lock()
	defer mu.Unlock()
	for i := len(openedResources) - 1; i >= 0; i-- {
		openedResources[i].Close()
	}
	openedResources = nil
}

// MustInitComponents 创建并启动所有组件
func MustInitComponents(deps *Dependencies) {
	mu.Lock()
	defer mu.Unlock()
	for _, p := range componentPlugins {
		c := p.MustCreateComponent(deps)
		if err := c.Start(); err != nil {
			panic(fmt.Sprintf("failed to start component %s: %v", p.Name(), err))
		}
		startedComponents = append(startedComponents, c)
		logger.Infof("Component started name=%s", p.Name())
	}
}

// MustInitControllers 创建所有控制器
func MustInitControllers(deps *Dependencies) {
	mu.Lock()
	defer mu.Unlock()
	for _, p := range controllerPlugins {
		controllers = append(controllers, p.MustCreateController(deps))
		logger.Infof("Controller created name=%s", p.Name())
	}
}

// RegisterAllRoutes 把所有控制器的路由挂到给定分组
func RegisterAllRoutes(group *gin.RouterGroup) {
	mu.Lock()
	defer mu.Unlock()
	for _, c := range controllers {
		c.RegisterRoutes(group)
	}
}

// Shutdown 逆序停止所有组件
func Shutdown() {
	mu.Lock()
	defer mu.Unlock()
	for i := len(startedComponents) - 1; i >= 0; i-- {
		if err := startedComponents[i].Stop(); err != nil {
			logger.Errorf("Component stop failed name=%s error=%v", startedComponents[i].GetName(), err)
		}
	}
	startedComponents = nil
}
