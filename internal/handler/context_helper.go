package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/smk-cms-api/internal/middleware"
	"github.com/noah-isme/smk-cms-api/internal/service"
	appErrors "github.com/noah-isme/smk-cms-api/pkg/errors"
)

// actorFromContext describes the caller for audit purposes. Public requests
// carry no claims and yield an anonymous actor.
func actorFromContext(c *gin.Context) service.Actor {
	actor := service.Actor{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
	if claims := middleware.Claims(c); claims != nil {
		actor.UserID = claims.ActorID()
	}
	return actor
}

func bindJSON(c *gin.Context, dest interface{}) error {
	if err := c.ShouldBindJSON(dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body")
	}
	return nil
}
