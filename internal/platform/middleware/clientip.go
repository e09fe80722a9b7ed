package middleware

import (
	"net"

	"github.com/labstack/echo/v4"
)

// ClientIPExtractor returns the server's IPExtractor. Without trusted proxies
// the peer address is the client; otherwise X-Forwarded-For is walked from
// the right, skipping only hops inside the trusted ranges.
func ClientIPExtractor(trusted []*net.IPNet) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, n := range trusted {
		opts = append(opts, echo.TrustIPRange(n))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

// clientIP is the limiter key. echo's RealIP believes forwarding headers
// unless an extractor is set, so fall back to the peer address.
func clientIP(c echo.Context) string {
	if e := c.Echo(); e != nil && e.IPExtractor != nil {
		return e.IPExtractor(c.Request())
	}
	return echo.ExtractIPDirect()(c.Request())
}
