// Package httpapi exposes the registration form, the submission endpoint and
// the admin dashboard over gin.
package httpapi

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"staffregister/internal/httpmiddleware"
)

//go:embed templates/*.html
var templatesFS embed.FS

// HealthFunc reports component health for /healthz.
type HealthFunc func(ctx context.Context) (gin.H, bool)

// Options configures the router.
type Options struct {
	StaticDir    string
	TemplatesDir string
	Limiter      httpmiddleware.Limiter
	Health       HealthFunc
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(h *Handler, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(securityHeaders())
	if opts.Limiter != nil {
		r.Use(httpmiddleware.RateLimit(opts.Limiter))
	}

	funcs := template.FuncMap{"signatureURL": signatureURL}
	if opts.TemplatesDir != "" {
		r.SetFuncMap(funcs)
		r.LoadHTMLGlob(strings.TrimRight(opts.TemplatesDir, "/") + "/*.html")
	} else {
		r.SetHTMLTemplate(template.Must(template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")))
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		if opts.Health == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		body, ok := opts.Health(c.Request.Context())
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, body)
	})

	r.GET("/", h.Form)
	r.POST("/submit-form/", h.SubmitForm)
	r.GET("/admin", h.Admin)
	r.GET("/api/records", h.Records)

	if opts.StaticDir != "" {
		r.Static("/static", opts.StaticDir)
	}
	return r
}

// securityHeaders sets conservative browser security headers.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}

// signatureURL extracts an image URL from a stored signature cell, or returns
// "" when the cell holds raw signature data.
func signatureURL(cell string) string {
	if strings.HasPrefix(cell, `=IMAGE("`) && strings.HasSuffix(cell, `")`) {
		return strings.TrimSuffix(strings.TrimPrefix(cell, `=IMAGE("`), `")`)
	}
	if strings.HasPrefix(cell, "http://") || strings.HasPrefix(cell, "https://") {
		return cell
	}
	return ""
}
