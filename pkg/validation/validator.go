// Package validation 封装 go-playground/validator，统一把校验失败转换为 INVALID_INPUT 错误。
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/rushteam/movierec/core"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Get 返回全局 validator 实例（线程安全）。
func Get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Struct 校验结构体；失败时返回 module 下的 INVALID_INPUT 错误，消息列出全部字段问题。
func Struct(module string, s any) error {
	err := Get().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return core.WrapDomainError(module, core.ErrorCodeInvalidInput, "validation failed", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, translate(fe))
	}
	return core.NewDomainError(module, core.ErrorCodeInvalidInput, strings.Join(msgs, "; "))
}

var withParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"min":   "%s must contain at least %s element(s)",
	"max":   "%s must contain at most %s element(s)",
}

func translate(fe validator.FieldError) string {
	field := fe.Namespace()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "url", "http_url":
		return field + " must be a valid URL"
	case "hostname_port":
		return field + " must be host:port"
	}
	if tmpl, ok := withParam[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, field, strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return fmt.Sprintf("%s failed on %s", field, fe.Tag())
}
