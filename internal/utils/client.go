package utils

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// ClientInfo describes the caller of an admin request for the audit trail
type ClientInfo struct {
	IP        string
	UserAgent string
	Device    DeviceInfo
}

// Client extracts the caller's address and device from the request
func Client(c *gin.Context) ClientInfo {
	userAgent := c.Request.UserAgent()
	return ClientInfo{
		IP:        RealIP(c),
		UserAgent: userAgent,
		Device:    ParseUserAgent(userAgent),
	}
}

// RealIP returns the first public address in X-Real-IP or X-Forwarded-For,
// falling back to gin's ClientIP.
func RealIP(c *gin.Context) string {
	if realIP := strings.TrimSpace(c.Request.Header.Get("X-Real-IP")); isPublicIP(realIP) {
		return realIP
	}

	forwarded := c.Request.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		hops := strings.Split(forwarded, ",")
		for _, hop := range hops {
			if ip := strings.TrimSpace(hop); isPublicIP(ip) {
				return ip
			}
		}
		if first := strings.TrimSpace(hops[0]); net.ParseIP(first) != nil {
			return first
		}
	}

	return c.ClientIP()
}

func isPublicIP(s string) bool {
	ip := net.ParseIP(s)
	if ip == nil {
		return false
	}
	return !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified()
}
