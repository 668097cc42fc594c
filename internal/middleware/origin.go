package middleware

import (
	"os"
	"strings"

	"github.com/Ss2809/Chat/internal/httpx"
	"github.com/gofiber/fiber/v2"
)

// OriginAllowed rejects browser requests from origins outside the configured
// allowlist. Matters most for the WebSocket handshake, which CORS does not
// cover. An empty allowlist disables the check (non-browser clients send no
// Origin at all).
func OriginAllowed() fiber.Handler {
	allowed := map[string]struct{}{}
	for _, o := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		origin := strings.TrimSpace(c.Get("Origin"))
		if origin == "" || len(allowed) == 0 {
			return c.Next()
		}
		if _, ok := allowed[origin]; !ok {
			return httpx.Forbidden(c, "forbidden_origin", "Origin not allowed")
		}
		return c.Next()
	}
}
