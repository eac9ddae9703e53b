package errs

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// CodeError carries a stable business code alongside the message so the
// gateway can map failures onto wire frames and HTTP statuses without
// string matching.
type CodeError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

func NewCodeError(code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg}
}

func (e *CodeError) Error() string {
	v := make([]string, 0, 3)
	v = append(v, strconv.Itoa(e.Code), e.Msg)
	if e.Detail != "" {
		v = append(v, e.Detail)
	}
	return strings.Join(v, " ")
}

// WithDetail returns a copy carrying extra detail; the template value
// stays untouched so predefined errors remain comparable.
func (e *CodeError) WithDetail(detail string) *CodeError {
	d := detail
	if e.Detail != "" {
		d = e.Detail + ", " + detail
	}
	return &CodeError{Code: e.Code, Msg: e.Msg, Detail: d}
}

// WrapMsg clones the template, attaches detail and a stack.
func (e *CodeError) WrapMsg(msg string, kv ...any) error {
	c := &CodeError{Code: e.Code, Msg: e.Msg, Detail: e.Detail}
	if msg != "" || len(kv) > 0 {
		detail := toString(msg, kv)
		if c.Detail == "" {
			c.Detail = detail
		} else {
			c.Detail += ", " + detail
		}
	}
	return errors.WithStack(c)
}

func (e *CodeError) Wrap() error {
	return errors.WithStack(e)
}

// Is matches by code only, so wrapped/detailed copies still compare
// equal to the predefined template.
func (e *CodeError) Is(err error) bool {
	var t *CodeError
	if !stderrors.As(err, &t) {
		return false
	}
	return t.Code == e.Code
}

// AsCode extracts the CodeError from anywhere in the chain.
func AsCode(err error) (*CodeError, bool) {
	var t *CodeError
	if stderrors.As(err, &t) {
		return t, true
	}
	return nil, false
}

// CodeOf extracts the business code from anywhere in the chain;
// unknown errors report as internal.
func CodeOf(err error) int {
	var t *CodeError
	if stderrors.As(err, &t) {
		return t.Code
	}
	return ServerInternalError
}

func New(msg string, kv ...any) error {
	return errors.New(toString(msg, kv))
}

func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(err)
}

func WrapMsg(err error, msg string, kv ...any) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, toString(msg, kv))
}

func toString(msg string, kv []any) string {
	var sb strings.Builder
	sb.WriteString(msg)
	for i := 0; i < len(kv); i += 2 {
		if i+1 < len(kv) {
			sb.WriteString(fmt.Sprintf(" %v=%v", kv[i], kv[i+1]))
		} else {
			sb.WriteString(fmt.Sprintf(" %v", kv[i]))
		}
	}
	return sb.String()
}
