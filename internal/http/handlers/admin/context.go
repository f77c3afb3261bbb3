package admin

import (
	handlershared "github.com/settle-next/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getManagerID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, "manager_id", "error.manager_id_invalid", "error.manager_id_type_invalid")
}
