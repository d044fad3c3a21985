// Package api holds the response shapes shared by every HTTP handler.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MsgNoData is returned whenever an upstream had nothing for the request.
const MsgNoData = "no data available"

// ErrorResponse はエラー応答のJSON形式です。
type ErrorResponse struct {
	Error string `json:"error"`
}

// NoData は404とともに"no data available"を返します。
func NoData(c *gin.Context) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: MsgNoData})
}

// BadRequest は400とともにmsgを返します。
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}
