package api

import (
	"github.com/gin-gonic/gin"

	"github.com/snippetvault/snippetvault/internal/handlers"
)

func registerSnippetRoutes(r *gin.RouterGroup, handler *handlers.SnippetHandler) {
	if r == nil || handler == nil {
		return
	}

	snippets := r.Group("/snippets")
	{
		snippets.GET("", handler.List)
		snippets.GET(":id", handler.Get)
		snippets.POST("", handler.Create)
		snippets.PUT(":id", handler.Update)
		snippets.DELETE(":id", handler.Delete)
	}
}
