package service

import (
	"context"
	"encoding/json"
	"time"

	"go-crmhub/internal/domain/apperr"
	"go-crmhub/internal/domain/model"
	"go-crmhub/internal/repository/dao"
)

type ContactService struct {
	Contacts *dao.ContactDAO
}

func NewContactService(c *dao.ContactDAO) *ContactService {
	return &ContactService{Contacts: c}
}

type ListContactsParams struct {
	TenantID    int64
	Name, Phone string
	Page, Limit int
}

type ListContactsResult struct {
	List  []model.Contact `json:"list"`
	Total int64           `json:"total"`
}

func (s *ContactService) List(ctx context.Context, p ListContactsParams) (*ListContactsResult, error) {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = 20
	}
	list, total, err := s.Contacts.List(ctx, p.TenantID, p.Name, p.Phone, (p.Page-1)*p.Limit, p.Limit)
	if err != nil {
		return nil, err
	}
	return &ListContactsResult{List: list, Total: total}, nil
}

type SaveContactParams struct {
	TenantID int64
	ID       int64 // 0 creates
	Name     string
	Phone    string
	Email    string
	Attrs    map[string]string
}

func (s *ContactService) Save(ctx context.Context, p SaveContactParams) (int64, error) {
	if p.Name == "" {
		return 0, apperr.NewValidation("name", "required")
	}
	if p.Phone == "" && p.Email == "" {
		return 0, apperr.NewValidation("phone", "phone or email required")
	}
	attrs := ""
	if len(p.Attrs) > 0 {
		b, err := json.Marshal(p.Attrs)
		if err != nil {
			return 0, apperr.NewValidation("attrs", "invalid attrs")
		}
		attrs = string(b)
	}
	now := time.Now().Unix()
	if p.ID == 0 {
		c := &model.Contact{TenantID: p.TenantID, Name: p.Name, Phone: p.Phone, Email: p.Email, Attrs: attrs, Status: 1, CreateTime: now, UpdateTime: now}
		if err := s.Contacts.Create(ctx, c); err != nil {
			return 0, err
		}
		return c.ID, nil
	}
	c, err := s.Contacts.FindByID(ctx, p.TenantID, p.ID)
	if err != nil {
		return 0, err
	}
	if c == nil {
		return 0, &apperr.NotFound{Entity: "contact", ID: p.ID}
	}
	c.Name = p.Name
	c.Phone = p.Phone
	c.Email = p.Email
	if attrs != "" {
		c.Attrs = attrs
	}
	c.UpdateTime = now
	if err := s.Contacts.Update(ctx, c); err != nil {
		return 0, err
	}
	return c.ID, nil
}

func (s *ContactService) Delete(ctx context.Context, tenantID, id int64) error {
	if id <= 0 {
		return apperr.NewValidation("id", "required")
	}
	return s.Contacts.Delete(ctx, tenantID, id)
}
