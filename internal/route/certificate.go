package route

import (
	"github.com/SeakMengs/EventHub/internal/controller"
	"github.com/SeakMengs/EventHub/internal/middleware"
	"github.com/gin-gonic/gin"
)

func V1_EventCertificates(r *gin.RouterGroup, cc *controller.CertificateController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/events/:eventId/certificates")
	v1.Use(middleware.AuthMiddleware)
	{
		v1.GET("", cc.GetCertificatesByEventId)
		v1.POST("/generate", cc.GenerateCertificates)
		v1.POST("/generate/async", cc.GenerateCertificatesAsync)
		v1.GET("/download", cc.CertificatesToZipByEventId)
	}
}

func V1_Certificates(r *gin.RouterGroup, cc *controller.CertificateController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/certificates")
	v1.Use(middleware.AuthMiddleware)
	{
		v1.GET("/:certificateId/download", cc.DownloadCertificate)
		v1.POST("/:certificateId/send", cc.SendCertificate)
	}
}

func V1_Verify(r *gin.RouterGroup, cc *controller.CertificateController) {
	v1 := r.Group("/v1/verify")
	{
		v1.GET("/:certificateNumber", cc.VerifyCertificate)
	}
}
