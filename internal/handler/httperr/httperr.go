package httperr

import (
	"github.com/gin-gonic/gin"
)

type errorBody struct {
	Message string `json:"message"`
}

// Response is the error envelope every handler returns. Detail carries
// recovery data, like fresh candidates on a lost slot race.
type Response struct {
	Status int       `json:"-"`
	Error  errorBody `json:"error"`
	Detail any       `json:"detail,omitempty"`
}

func NewResponse(status int, msg string, detail any) Response {
	return Response{
		Status: status,
		Error:  errorBody{Message: msg},
		Detail: detail,
	}
}

// AbortWithError records the original error on the gin context for the
// error middleware, then writes the envelope. SetType/SetMeta run on the
// *gin.Error the context stores; passing a gin.Error value to c.Error would
// get it rewrapped as private and lose both.
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("httperr: nil error")
	}

	resp := NewResponse(status, msg, detail)
	_ = c.Error(err).SetType(gin.ErrorTypePublic).SetMeta(resp)
	c.AbortWithStatusJSON(status, resp)
}
