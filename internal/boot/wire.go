package boot

import (
	"time"

	"go-crmhub/internal/config"
	"go-crmhub/internal/discovery/etcd"
	"go-crmhub/internal/logging"
	"go-crmhub/internal/mq/kafka"
	"go-crmhub/internal/pkg/cache"
	"go-crmhub/internal/repository/dao"
	redisrepo "go-crmhub/internal/repository/redis"
	jwtsec "go-crmhub/internal/security/jwt"
	httpSrv "go-crmhub/internal/server/http"
	"go-crmhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"gorm.io/gorm"
)

// ProvideConfig wraps config.Load for wire with external path param
func ProvideConfig(path string) (*config.Config, error) { return config.Load(path) }

// AccessLogProducer 区分访问日志 topic 的 producer，便于注入
type AccessLogProducer struct{ *kafka.Producer }

func ProvideAccessProducer(c *config.Config) AccessLogProducer {
	return AccessLogProducer{NewAccessProducer(c)}
}

// ProvideAccessSender 仅在开启异步访问日志时返回实例
func ProvideAccessSender(c *config.Config, l *logging.Logger, p AccessLogProducer) *kafka.AccessAsyncSender {
	if !c.Kafka.AccessAsync {
		return nil
	}
	return kafka.NewAccessAsyncSender(p.Producer, l, c.Kafka.AccessQueueSize, c.Kafka.AccessWorkers, c.Kafka.AccessMaxBatch, time.Duration(c.Kafka.AccessMaxWaitMS)*time.Millisecond)
}

// ProvideRouter 装配路由
func ProvideRouter(j *jwtsec.Manager, l *logging.Logger, p *kafka.Producer, ap AccessLogProducer, sender *kafka.AccessAsyncSender, db *gorm.DB, r *redisrepo.Client, a *service.AuthService, u *service.UserService, g *service.GroupService, ct *service.ContactService, tp *service.TemplateService, logSvc *service.LogService, e *etcd.Client, c *config.Config) *gin.Engine {
	return httpSrv.NewRouter(j, l, p, ap.Producer, sender, db, r, a, u, g, ct, tp, logSvc, e, c)
}

func ProvideApp(c *config.Config, l *logging.Logger, db *gorm.DB, r *redisrepo.Client, k *kafka.Producer, ap AccessLogProducer, sender *kafka.AccessAsyncSender, e *etcd.Client, j *jwtsec.Manager, engine *gin.Engine) *App {
	return NewApp(c, l, db, r, k, ap.Producer, sender, e, j, engine)
}

// ProvideLayeredCache 构建一个通用 LayeredCache（L1 本地 60s, L2 Redis）
func ProvideLayeredCache(r *redisrepo.Client) cache.Cache {
	l1 := cache.NewSimpleAdapter(cache.New(60 * time.Second))
	l2 := cache.NewRedisAdapter(r)
	return cache.NewLayered(l1, l2)
}

var ProviderSet = wire.NewSet(
	ProvideConfig,
	NewLogger,
	NewPostgres,
	NewRedis,
	NewKafkaProducer,
	ProvideAccessProducer,
	ProvideAccessSender,
	NewEtcd,
	NewJWTManager,
	ProvideLayeredCache,
	// DAO
	dao.NewTenantDAO,
	dao.NewUserDAO,
	dao.NewGroupDAO,
	dao.NewMembershipDAO,
	dao.NewContactDAO,
	dao.NewTemplateDAO,
	dao.NewUserActionDAO,
	// Service
	NewAuthServiceDefault,
	NewUserServiceWithLayered,
	NewGroupServiceWithLayered,
	service.NewContactService,
	service.NewTemplateService,
	service.NewLogService,
	ProvideRouter,
	ProvideApp,
)

// ===== Custom providers =====
func NewAuthServiceDefault(u *dao.UserDAO, t *dao.TenantDAO, m *jwtsec.Manager, r *redisrepo.Client, c *config.Config) *service.AuthService {
	return service.NewAuthService(u, t, m, r, c.Redis.JTIPrefix)
}

func NewUserServiceWithLayered(u *dao.UserDAO, g *dao.GroupDAO, rel *dao.MembershipDAO, db *gorm.DB, lc cache.Cache) *service.UserService {
	return service.NewUserServiceWithCache(u, g, rel, db, lc)
}

func NewGroupServiceWithLayered(g *dao.GroupDAO, u *dao.UserDAO, rel *dao.MembershipDAO, db *gorm.DB, lc cache.Cache) *service.GroupService {
	return service.NewGroupServiceWithCache(g, u, rel, db, lc)
}
