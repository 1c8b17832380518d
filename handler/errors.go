package handler

import (
	"errors"
	"net/http"
)

// ErrorKind 请求失败的类别，只在 HTTP 边界上映射成状态码
type ErrorKind int

const (
	MissingInput ErrorKind = iota
	DecodeFailure
	ProcessingFailure
)

func (k ErrorKind) String() string {
	switch k {
	case MissingInput:
		return "missing_input"
	case DecodeFailure:
		return "decode_failure"
	default:
		return "processing_failure"
	}
}

// Status 缺少 image 字段返回 400，其余一律 500
func (k ErrorKind) Status() int {
	if k == MissingInput {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

var errNoImage = errors.New("No image provided")

func kindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ProcessingFailure
}
