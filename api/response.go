package api

import (
	"github.com/dfryer1193/wizardry/wizard/domain"
)

const (
	msgOK         = "OK"
	msgBadRequest = "Bad Request"
	msgNotFound   = "Not Found"
)

// Response is the envelope every endpoint answers with.
type Response[T any] struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data *T     `json:"data,omitempty"`
}

func OK[T any](data T) Response[T] {
	return Response[T]{Code: 200, Msg: msgOK, Data: &data}
}

func Message[T any](msg string) Response[T] {
	return Response[T]{Code: 200, Msg: msg}
}

// BadRequest uses "Bad Request" when msg is empty.
func BadRequest[T any](msg string) Response[T] {
	if msg == "" {
		msg = msgBadRequest
	}
	return Response[T]{Code: 400, Msg: msg}
}

func NotFound[T any]() Response[T] {
	return Response[T]{Code: 404, Msg: msgNotFound}
}

func InternalServerError[T any](msg string) Response[T] {
	return Response[T]{Code: 500, Msg: msg}
}

// FromError wraps a classified failure. Only internal errors carry the
// underlying description.
func FromError[T any](err error) Response[T] {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return NotFound[T]()
	case domain.KindBadRequest:
		return BadRequest[T](domain.Message(err))
	case domain.KindStorageIO, domain.KindPersistence:
		return InternalServerError[T](err.Error())
	default:
		return InternalServerError[T](err.Error())
	}
}
