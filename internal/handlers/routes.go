package handlers

import (
	"github.com/gin-gonic/gin"
)

// Router builds the gin engine with every route registered.
func (h *Handler) Router(mode string) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	r := gin.New()
	r.MaxMultipartMemory = h.maxUpload + 1<<20
	r.Use(RequestLogger(h.logger))
	r.Use(gin.Recovery())
	r.Use(CORS())

	r.GET("/health", h.Health)
	r.GET("/sitemap.xml", h.SitemapXML)
	r.GET("/storage/*path", h.Storage)

	api := r.Group("/api/qrcode")
	{
		api.GET("/generate", h.GenerateGET)
		api.POST("/generate", h.GeneratePOST)
		api.GET("/cached", h.Cached)
	}

	r.GET("/", h.Home)
	r.NoRoute(h.NotFound)
	return r
}
