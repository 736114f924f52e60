package middleware

import (
	"fmt"
	"net"

	"github.com/labstack/echo/v4"
)

// NewIPExtractor decides how c.RealIP() finds the client. Without trusted proxies the
// TCP peer address is used and forwarding headers are ignored. With them,
// X-Forwarded-For is walked from the right and the first hop outside the trusted
// ranges wins.
func NewIPExtractor(trustedProxies []string) (echo.IPExtractor, error) {
	if len(trustedProxies) == 0 {
		return echo.ExtractIPDirect(), nil
	}

	options := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, cidr := range trustedProxies {
		_, ipRange, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy range %q: %w", cidr, err)
		}
		options = append(options, echo.TrustIPRange(ipRange))
	}

	return echo.ExtractIPFromXFFHeader(options...), nil
}
