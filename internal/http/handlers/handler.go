package handlers

import (
	"errors"
	"strconv"

	"github.com/litemall-next/internal/http/response"
	"github.com/litemall-next/internal/provider"
	"github.com/litemall-next/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler API 处理器入口
type Handler struct {
	*provider.Container
}

// New 创建处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func toResponseWarnings(warnings []service.Warning) []response.Warning {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]response.Warning, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, response.Warning{
			Kind:    w.Kind,
			Subject: w.Subject,
			Message: w.Message(),
		})
	}
	return out
}

// mappedHandlerError 业务错误到接口响应的映射
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

var commonErrorRules = []mappedHandlerError{
	{target: service.ErrUserIDRequired, code: response.CodeBadRequest, msg: "user_id is required"},
	{target: service.ErrInvalidQuantity, code: response.CodeBadRequest, msg: "quantity must be positive"},
	{target: service.ErrInvalidProduct, code: response.CodeBadRequest, msg: "invalid product"},
	{target: service.ErrProductNotFound, code: response.CodeNotFound, msg: "product not found"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, msg: "product not available"},
	{target: service.ErrInsufficientStock, code: response.CodeConflict, msg: "insufficient stock"},
	{target: service.ErrCartItemNotFound, code: response.CodeNotFound, msg: "cart item not found"},
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
	{target: service.ErrOrderEmpty, code: response.CodeBadRequest, msg: "order has no items"},
	{target: service.ErrOrderStatusInvalid, code: response.CodeBadRequest, msg: "invalid status transition"},
}

func respondServiceError(c *gin.Context, err error, fallbackMsg string) {
	for _, rule := range commonErrorRules {
		if errors.Is(err, rule.target) {
			response.Error(c, rule.code, rule.msg)
			return
		}
	}
	response.Error(c, response.CodeInternal, fallbackMsg)
}
