package controller

import (
	"coach_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// currentUserID returns the authenticated user id, answering 401 when the
// request carries no claims.
func currentUserID(ctx *gin.Context) (uint, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return 0, false
	}
	return claims.UserID, true
}
