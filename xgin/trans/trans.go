// Package trans 将 validator 的校验错误翻译为中文
package trans

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zht "github.com/go-playground/validator/v10/translations/zh"

	"github.com/xiaoshicae/x-one/xerror"
)

var (
	mu         sync.RWMutex
	translator ut.Translator
)

// RegisterZH 向 gin 默认 validator 注册中文翻译，重复调用只生效一次
func RegisterZH() error {
	mu.Lock()
	defer mu.Unlock()
	if translator != nil {
		return nil
	}

	zhLocale := zh.New()
	t, ok := ut.New(zhLocale, zhLocale).GetTranslator("zh")
	if !ok {
		return xerror.Newf("xgin", "trans", "zh translator not found")
	}
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return xerror.Newf("xgin", "trans", "gin validator engine is not *validator.Validate")
	}
	if err := zht.RegisterDefaultTranslations(v, t); err != nil {
		return xerror.New("xgin", "trans", err)
	}
	translator = t
	return nil
}

func getTranslator() ut.Translator {
	mu.RLock()
	defer mu.RUnlock()
	return translator
}

// ZHErr 翻译后的错误，Unwrap 返回原始的 validator.ValidationErrors
type ZHErr struct {
	Msg   string
	Cause error
}

func (e *ZHErr) Error() string { return e.Msg }

func (e *ZHErr) Unwrap() error { return e.Cause }

// ToZHErr 翻译校验错误；未注册翻译或非校验错误时原样返回
func ToZHErr(err error) error {
	if err == nil {
		return nil
	}
	t := getTranslator()
	if t == nil {
		return err
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}

	byField := make(map[string][]string, len(ves))
	for _, fe := range ves {
		byField[fe.Field()] = append(byField[fe.Field()], fe.Translate(t))
	}
	fields := make([]string, 0, len(byField))
	for f := range byField {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, strings.Join(byField[f], ", "))
	}
	return &ZHErr{Msg: strings.Join(msgs, ", "), Cause: err}
}

// ToZHErrMsg 同 ToZHErr，返回错误信息，err 为 nil 时返回空串
func ToZHErrMsg(err error) string {
	if err = ToZHErr(err); err != nil {
		return err.Error()
	}
	return ""
}
