package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/VitaminP8/discuss/internal/model"
)

var validate = validator.New()

// bind читает JSON и проверяет теги validate. Ошибка - ValidationError.
func bind(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return model.Validationf("invalid request body: %v", err)
	}
	if err := validate.Struct(dst); err != nil {
		return model.Validationf("%v", err)
	}
	return nil
}

func statusOf(err error) int {
	if errors.Is(err, model.ErrAlreadyDeleted) {
		return http.StatusGone
	}
	switch model.KindOf(err) {
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindAuthorization:
		return http.StatusForbidden
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindInFlight:
		return http.StatusConflict
	}
	return http.StatusServiceUnavailable
}

func (r *Resolver) fail(c *gin.Context, handler string, err error) {
	status := statusOf(err)
	kind := model.KindOf(err).String()
	if status >= http.StatusInternalServerError {
		r.Logger.Error("request failed", "handler", handler, "kind", kind, "error", err)
	} else {
		r.Logger.Debug("request rejected", "handler", handler, "kind", kind, "error", err)
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Kind: kind})
}
