package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/mobilien/mobi-agent/app/core"
)

type HttpSrv struct {
	Core   *core.Core
	Engine *gin.Engine
}
