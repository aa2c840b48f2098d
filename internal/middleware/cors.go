package middleware

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// PublicPaths are readable from any origin
var PublicPaths = []string{"/api/answer", "/api/facts", "/api/qa", "/api/dataset", "/healthz", "/public/"}

// CORSMiddleware lets any origin read the public content endpoints and
// restricts every other route to siteOrigin. allowLocalhost also admits
// http://localhost and http://127.0.0.1 on any port for development.
func CORSMiddleware(siteOrigin string, allowLocalhost bool) gin.HandlerFunc {
	public := cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowHeaders:    []string{"Content-Type"},
		MaxAge:          12 * time.Hour,
	})

	restrictedCfg := cors.Config{
		AllowOrigins: []string{siteOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	if allowLocalhost {
		restrictedCfg.AllowOriginFunc = isLocalOrigin
	}
	restricted := cors.New(restrictedCfg)

	return func(c *gin.Context) {
		if isPublicPath(c.Request.URL.Path) {
			public(c)
			return
		}
		restricted(c)
	}
}

func isPublicPath(path string) bool {
	for _, p := range PublicPaths {
		if path == p || (strings.HasSuffix(p, "/") && strings.HasPrefix(path, p)) {
			return true
		}
	}
	return false
}

func isLocalOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Scheme != "http" {
		return false
	}
	host := u.Hostname()
	return host == "localhost" || host == "127.0.0.1"
}
