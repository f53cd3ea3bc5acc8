package route

import (
	"github.com/SeakMengs/EventHub/internal/controller"
	"github.com/SeakMengs/EventHub/internal/middleware"
	"github.com/gin-gonic/gin"
)

func V1_Templates(r *gin.RouterGroup, tc *controller.TemplateController, tbc *controller.TemplateBuilderController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/templates")
	v1.Use(middleware.AuthMiddleware)
	{
		v1.POST("", tc.CreateTemplate)
		v1.GET("/:templateId", tc.GetTemplateById)
		v1.GET("/:templateId/preview", tc.PreviewTemplate)
		v1.PATCH("/:templateId/builder", tbc.TemplateBuilder)
	}
}
