package middleware

import (
	"fmt"
	"net/http"

	"github.com/dfryer1193/wizardry/api"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// HandlePanics answers a recovered panic with an internal-error envelope.
func HandlePanics() gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		msg := "internal server error"
		if err, ok := recovered.(error); ok {
			msg = err.Error()
		} else if recovered != nil {
			msg = fmt.Sprint(recovered)
		}

		log.Error().Str("path", c.Request.URL.Path).Str("panic", msg).Msg("Recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.InternalServerError[any](msg))
	}
}
