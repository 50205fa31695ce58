package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"go-crmhub/internal/domain/apperr"
	"go-crmhub/internal/domain/model"
	"go-crmhub/internal/metrics"
	"go-crmhub/internal/mq/kafka"
	"go-crmhub/internal/repository/dao"
)

// 占位符形如 {{name}}，变量名限字母数字下划线
var tplVarRe = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

type TemplateService struct {
	Templates *dao.TemplateDAO
	Contacts  *dao.ContactDAO
	Producer  *kafka.Producer
}

func NewTemplateService(t *dao.TemplateDAO, c *dao.ContactDAO, p *kafka.Producer) *TemplateService {
	return &TemplateService{Templates: t, Contacts: c, Producer: p}
}

func (s *TemplateService) List(ctx context.Context, tenantID int64) ([]model.MessageTemplate, error) {
	return s.Templates.List(ctx, tenantID)
}

type SaveTemplateParams struct {
	TenantID int64
	ID       int64 // 0 creates
	Name     string
	Body     string
	Channel  string
}

func (s *TemplateService) Save(ctx context.Context, p SaveTemplateParams) (int64, error) {
	if p.Name == "" {
		return 0, apperr.NewValidation("name", "required")
	}
	if p.Channel != "sms" && p.Channel != "email" {
		return 0, apperr.NewValidation("channel", "must be sms or email")
	}
	now := time.Now().Unix()
	if p.ID == 0 {
		t := &model.MessageTemplate{TenantID: p.TenantID, Name: p.Name, Body: p.Body, Channel: p.Channel, Status: 1, CreateTime: now, UpdateTime: now}
		if err := s.Templates.Create(ctx, t); err != nil {
			return 0, err
		}
		return t.ID, nil
	}
	t, err := s.Templates.FindByID(ctx, p.TenantID, p.ID)
	if err != nil {
		return 0, err
	}
	if t == nil {
		return 0, &apperr.NotFound{Entity: "template", ID: p.ID}
	}
	t.Name = p.Name
	t.Body = p.Body
	t.Channel = p.Channel
	t.UpdateTime = now
	if err := s.Templates.Update(ctx, t); err != nil {
		return 0, err
	}
	return t.ID, nil
}

func (s *TemplateService) Delete(ctx context.Context, tenantID, id int64) error {
	if id <= 0 {
		return apperr.NewValidation("id", "required")
	}
	return s.Templates.Delete(ctx, tenantID, id)
}

func (s *TemplateService) ChangeStatus(ctx context.Context, tenantID, id int64, status int8) error {
	return s.Templates.UpdateStatus(ctx, tenantID, id, status)
}

// Render substitutes {{var}} placeholders from vars. Unknown variables are
// left in place so a bad send is visible instead of silently blank.
func Render(body string, vars map[string]string) string {
	return tplVarRe.ReplaceAllStringFunc(body, func(m string) string {
		name := tplVarRe.FindStringSubmatch(m)[1]
		if v, ok := vars[name]; ok {
			return v
		}
		return m
	})
}

// contactVars merges the contact's stock fields with its attrs JSON.
func contactVars(c *model.Contact) map[string]string {
	vars := map[string]string{}
	if c.Attrs != "" {
		_ = json.Unmarshal([]byte(c.Attrs), &vars)
	}
	vars["name"] = c.Name
	vars["phone"] = c.Phone
	vars["email"] = c.Email
	return vars
}

type SendResult struct {
	Queued  int     `json:"queued"`
	Skipped []int64 `json:"skipped"` // contact ids with no usable recipient
}

// Send renders the template for each contact and publishes one dispatch event
// per recipient. Delivery itself happens in the dispatch consumer.
func (s *TemplateService) Send(ctx context.Context, tenantID, templateID int64, contactIDs []int64) (*SendResult, error) {
	if len(contactIDs) == 0 {
		return nil, apperr.NewValidation("contact_ids", "required")
	}
	t, err := s.Templates.FindByID(ctx, tenantID, templateID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, &apperr.NotFound{Entity: "template", ID: templateID}
	}
	if t.Status != 1 {
		return nil, apperr.NewValidation("template_id", "template disabled")
	}
	contacts, err := s.Contacts.FindByIDs(ctx, tenantID, contactIDs)
	if err != nil {
		return nil, err
	}
	found := make(map[int64]struct{}, len(contacts))
	for _, c := range contacts {
		found[c.ID] = struct{}{}
	}
	for _, id := range contactIDs {
		if _, ok := found[id]; !ok {
			return nil, apperr.NewValidation("contact_ids", fmt.Sprintf("contact %d not found", id))
		}
	}
	res := &SendResult{}
	for i := range contacts {
		c := &contacts[i]
		recipient := c.Phone
		if t.Channel == "email" {
			recipient = c.Email
		}
		if recipient == "" {
			res.Skipped = append(res.Skipped, c.ID)
			metrics.MessageDispatchTotal.WithLabelValues(t.Channel, "skipped").Inc()
			continue
		}
		evt := map[string]interface{}{
			"type":        "dispatch",
			"tenant_id":   tenantID,
			"template_id": t.ID,
			"contact_id":  c.ID,
			"channel":     t.Channel,
			"recipient":   recipient,
			"body":        Render(t.Body, contactVars(c)),
			"ts":          time.Now().Unix(),
		}
		b, _ := json.Marshal(evt)
		if err := s.Producer.Send(ctx, []byte(strconv.FormatInt(tenantID, 10)), b); err != nil {
			metrics.MessageDispatchTotal.WithLabelValues(t.Channel, "error").Inc()
			return res, err
		}
		metrics.MessageDispatchTotal.WithLabelValues(t.Channel, "queued").Inc()
		res.Queued++
	}
	return res, nil
}
