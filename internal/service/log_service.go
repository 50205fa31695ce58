package service

import (
	"context"

	"go-crmhub/internal/domain/apperr"
	"go-crmhub/internal/domain/model"
	"go-crmhub/internal/repository/dao"
)

type LogService struct {
	Actions *dao.UserActionDAO
}

func NewLogService(a *dao.UserActionDAO) *LogService { return &LogService{Actions: a} }

type ListActionsParams struct {
	TenantID    int64
	Type        int
	Keywords    string
	Page, Limit int
}

type ListActionsResult struct {
	List  []model.UserAction `json:"list"`
	Total int64              `json:"total"`
}

func (s *LogService) List(ctx context.Context, p ListActionsParams) (*ListActionsResult, error) {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = 20
	}
	list, total, err := s.Actions.List(ctx, p.TenantID, p.Type, p.Keywords, p.Page, p.Limit)
	if err != nil {
		return nil, err
	}
	return &ListActionsResult{List: list, Total: total}, nil
}

func (s *LogService) Delete(ctx context.Context, tenantID, id int64) error {
	if id <= 0 {
		return apperr.NewValidation("id", "required")
	}
	return s.Actions.Delete(ctx, tenantID, id)
}
