package handler

import (
	apih "go-crmhub/internal/server/http/handler/api"
)

// HandlerSet 聚合 api 子包的 handler，供 router 使用
type HandlerSet struct {
	Auth     *apih.AuthHandler
	User     *apih.UserHandler
	Group    *apih.GroupHandler
	Contact  *apih.ContactHandler
	Template *apih.TemplateHandler
	Log      *apih.LogHandler
	Cache    *apih.CacheHandler
}

func NewHandlerSet(d apih.Dependencies) *HandlerSet {
	return &HandlerSet{
		Auth:     apih.NewAuthHandler(d),
		User:     apih.NewUserHandler(d),
		Group:    apih.NewGroupHandler(d),
		Contact:  apih.NewContactHandler(d),
		Template: apih.NewTemplateHandler(d),
		Log:      apih.NewLogHandler(d),
		Cache:    apih.NewCacheHandler(d),
	}
}
