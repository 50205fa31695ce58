package response

import (
	"go-crmhub/internal/domain/apperr"
	"go-crmhub/internal/util/retcode"

	"github.com/gin-gonic/gin"
)

type Body struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

func JSON(c *gin.Context, code int, msg string, data interface{}) {
	c.JSON(200, Body{Code: code, Msg: msg, Data: data})
}

func Success(c *gin.Context, data interface{}) {
	JSON(c, retcode.SUCCESS, "success", data)
}

// Error 约定 code 为业务码(负值)；传入 >=0 的值转为 INVALID 以免误传 HTTP 状态码。
func Error(c *gin.Context, code int, msg string) {
	if code >= 0 {
		code = retcode.INVALID
	}
	JSON(c, code, msg, nil)
}

// FromError maps the apperr taxonomy to envelope codes so handlers don't
// repeat the switch.
func FromError(c *gin.Context, err error) {
	switch {
	case apperr.IsValidation(err):
		Error(c, retcode.EMPTY_PARAMS, err.Error())
	case apperr.IsConstraint(err):
		Error(c, retcode.DATA_EXISTS, err.Error())
	case apperr.IsNotFound(err):
		Error(c, retcode.RECORD_NOT_FOUND, err.Error())
	default:
		Error(c, retcode.EXCEPTION, err.Error())
	}
}
