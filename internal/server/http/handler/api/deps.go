package api

import (
	"go-crmhub/internal/config"
	"go-crmhub/internal/logging"
	"go-crmhub/internal/mq/kafka"
	"go-crmhub/internal/pkg/cache"
	"go-crmhub/internal/security/jwt"
	"go-crmhub/internal/service"
)

// Dependencies api 子包依赖集合
type Dependencies struct {
	Auth     *service.AuthService
	User     *service.UserService
	Group    *service.GroupService
	Contact  *service.ContactService
	Template *service.TemplateService
	Log      *service.LogService
	JWT      *jwt.Manager
	Config   *config.Config
	Cache    cache.Cache
	Producer *kafka.Producer
	Logger   *logging.Logger
}
