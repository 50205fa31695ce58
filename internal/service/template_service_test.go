package service

import (
	"testing"
	"time"

	"go-crmhub/internal/domain/apperr"
	"go-crmhub/internal/domain/model"
	"go-crmhub/internal/repository/dao"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	body := "Hi {{name}}, your code is {{ code }}."
	out := Render(body, map[string]string{"name": "Alice", "code": "1234"})
	assert.Equal(t, "Hi Alice, your code is 1234.", out)
}

func TestRenderUnknownVarLeftInPlace(t *testing.T) {
	out := Render("Hi {{name}} {{missing}}", map[string]string{"name": "Bob"})
	assert.Equal(t, "Hi Bob {{missing}}", out)
}

func TestContactVars(t *testing.T) {
	c := &model.Contact{Name: "Alice", Phone: "13800000000", Email: "a@x.io", Attrs: `{"plan":"pro"}`}
	vars := contactVars(c)
	assert.Equal(t, "Alice", vars["name"])
	assert.Equal(t, "13800000000", vars["phone"])
	assert.Equal(t, "pro", vars["plan"])
}

func TestContactVarsStockFieldsWinOverAttrs(t *testing.T) {
	c := &model.Contact{Name: "Alice", Attrs: `{"name":"shadow"}`}
	vars := contactVars(c)
	assert.Equal(t, "Alice", vars["name"])
}

func (f *fixture) templateSvc() *TemplateService {
	return NewTemplateService(dao.NewTemplateDAO(f.db), dao.NewContactDAO(f.db), nil)
}

func (f *fixture) addContact(t *testing.T, c model.Contact) int64 {
	t.Helper()
	c.TenantID = f.tid
	c.Status = 1
	c.CreateTime = time.Now().Unix()
	require.NoError(t, f.db.Create(&c).Error)
	return c.ID
}

func TestSendRequiresContactIDs(t *testing.T) {
	f := newFixture(t)
	_, err := f.templateSvc().Send(bg(), f.tid, 1, nil)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestSendUnknownContactRejected(t *testing.T) {
	f := newFixture(t)
	svc := f.templateSvc()
	tplID, err := svc.Save(bg(), SaveTemplateParams{TenantID: f.tid, Name: "welcome", Body: "hi {{name}}", Channel: "sms"})
	require.NoError(t, err)

	_, err = svc.Send(bg(), f.tid, tplID, []int64{9999})
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestSendSkipsContactsWithoutRecipient(t *testing.T) {
	f := newFixture(t)
	svc := f.templateSvc()
	tplID, err := svc.Save(bg(), SaveTemplateParams{TenantID: f.tid, Name: "welcome", Body: "hi {{name}}", Channel: "sms"})
	require.NoError(t, err)
	// 只有邮箱没有手机号，sms 渠道下无可用收件地址
	cid := f.addContact(t, model.Contact{Name: "Alice", Email: "a@x.io"})

	res, err := svc.Send(bg(), f.tid, tplID, []int64{cid})
	require.NoError(t, err)
	assert.Zero(t, res.Queued)
	assert.Equal(t, []int64{cid}, res.Skipped)
}
