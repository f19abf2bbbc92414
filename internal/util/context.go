package util

import (
	"github.com/gin-gonic/gin"
)

// BindJSON decodes the request body into dest, answering 400 on failure
func BindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		RespondBadRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// IDParam returns the :id path parameter, answering 400 when it is empty
func IDParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if id == "" {
		RespondBadRequest(c, "id is required")
		return "", false
	}
	return id, true
}
