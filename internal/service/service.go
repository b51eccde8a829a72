package service

import (
	"errors"

	"github.com/Minsekko/SJP-HR/internal/config"
	"github.com/Minsekko/SJP-HR/internal/repository"
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
)

// 错误定义
var (
	// ErrValidation 创建请求缺少必填字段
	ErrValidation = errors.New("validation failed")
)

// Services 服务集合
type Services struct {
	Auth     *AuthService
	HR       *HRService
	Approval *ApprovalService
	Finance  *FinanceService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, rdb *redis.Client, minioClient *minio.Client, cfg *config.Config) *Services {
	return &Services{
		Auth:     NewAuthService(repos.User, repos.Employee, rdb, cfg),
		HR:       NewHRService(repos.Employee, repos.Department, repos.Attendance, repos.Leave),
		Approval: NewApprovalService(repos.Approval, repos.Employee, minioClient, cfg.MinIO.Bucket),
		Finance:  NewFinanceService(repos.Finance, repos.Employee),
	}
}
