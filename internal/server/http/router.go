package http

import (
	"context"
	"time"

	"go-crmhub/internal/config"
	"go-crmhub/internal/discovery/etcd"
	"go-crmhub/internal/logging"
	"go-crmhub/internal/mq/kafka"
	redisrepo "go-crmhub/internal/repository/redis"
	"go-crmhub/internal/security/jwt"
	handlerset "go-crmhub/internal/server/http/handler"
	apih "go-crmhub/internal/server/http/handler/api"
	"go-crmhub/internal/server/http/middleware"
	obs "go-crmhub/internal/server/http/middleware/observability"
	sec "go-crmhub/internal/server/http/middleware/security"
	"go-crmhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// NewRouter 仅负责分组与中间件装配，具体业务放在 handler 层
func NewRouter(jwtm *jwt.Manager, logger *logging.Logger, producer *kafka.Producer, accessProducer *kafka.Producer, accessSender *kafka.AccessAsyncSender, db *gorm.DB, redis *redisrepo.Client, authSvc *service.AuthService, userSvc *service.UserService, groupSvc *service.GroupService, contactSvc *service.ContactService, templateSvc *service.TemplateService, logSvc *service.LogService, etcdCli *etcd.Client, cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ConfigInjector(cfg), gin.Recovery(), middleware.CORS(), obs.TraceMiddleware(), obs.LoggerContextMiddleware(logger), middleware.ResponseWrapper(), obs.Metrics())

	// 健康检查
	hc := NewHealthChecker(db, redis, producer, etcdCli)
	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, hc.Liveness()) })
	r.GET("/readyz", func(c *gin.Context) {
		if c.Query("refresh") == "1" {
			hc.cacheMu.Lock()
			hc.cacheExpiry = time.Time{}
			hc.cacheMu.Unlock()
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()
		res, code := hc.Readiness(ctx)
		c.JSON(code, res)
	})
	// Prometheus
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := handlerset.NewHandlerSet(apih.Dependencies{
		Auth: authSvc, User: userSvc, Group: groupSvc, Contact: contactSvc, Template: templateSvc, Log: logSvc,
		JWT: jwtm, Config: cfg, Cache: groupSvc.Cache, Producer: producer, Logger: logger,
	})

	// 访问日志：异步批量发送优先，未启用时退化为同步
	accessLog := obs.AccessLogKafka(logger, accessProducer)
	if accessSender != nil {
		accessLog = obs.AccessLogKafkaAsync(logger, accessSender)
	}

	// 登录/公共接口
	pub := r.Group("/api")
	{
		pub.POST("/Login/index", h.Auth.Login)
		pub.POST("/Login/refresh", h.Auth.Refresh)
		pub.POST("/Login/logout", h.Auth.Logout)
	}

	// 认证 + 访问审计
	authGrp := r.Group("/api", sec.Auth(jwtm, logger, authSvc), accessLog)
	{
		userGroup := authGrp.Group("/User")
		{
			userGroup.GET("/index", h.User.List)
			userGroup.POST("/add", h.User.Add)
			userGroup.POST("/edit", h.User.Edit)
			userGroup.POST("/reconcileGroups", h.User.ReconcileGroups)
			userGroup.GET("/groups", h.User.Groups)
			userGroup.GET("/changeStatus", h.User.ChangeStatus)
			userGroup.GET("/del", h.User.Delete)
		}
		groupGroup := authGrp.Group("/Group")
		{
			groupGroup.GET("/index", h.Group.Index)
			groupGroup.POST("/add", h.Group.Add)
			groupGroup.POST("/edit", h.Group.Edit)
			groupGroup.GET("/changeStatus", h.Group.ChangeStatus)
			groupGroup.GET("/del", h.Group.Delete)
			groupGroup.GET("/addMember", h.Group.AddMember)
			groupGroup.POST("/membership", h.Group.CreateMembership)
			groupGroup.GET("/delMember", h.Group.DelMember)
			groupGroup.GET("/members", h.Group.Members)
		}
		contactGroup := authGrp.Group("/Contact")
		{
			contactGroup.GET("/index", h.Contact.List)
			contactGroup.POST("/save", h.Contact.Save)
			contactGroup.GET("/del", h.Contact.Delete)
		}
		tplGroup := authGrp.Group("/Template")
		{
			tplGroup.GET("/index", h.Template.Index)
			tplGroup.POST("/save", h.Template.Save)
			tplGroup.GET("/changeStatus", h.Template.ChangeStatus)
			tplGroup.GET("/del", h.Template.Delete)
			tplGroup.POST("/send", h.Template.Send)
		}
		logGroup := authGrp.Group("/Log")
		{
			logGroup.GET("/index", h.Log.List)
			logGroup.GET("/del", h.Log.Delete)
		}
		cacheGroup := authGrp.Group("/Cache")
		{
			cacheGroup.GET("/metrics", h.Cache.Metrics)
			cacheGroup.GET("/reset", h.Cache.Reset)
		}
	}

	// 统一 404
	r.NoRoute(func(c *gin.Context) {
		c.JSON(200, gin.H{"code": -8, "msg": "not found", "data": gin.H{}})
	})
	return r
}
