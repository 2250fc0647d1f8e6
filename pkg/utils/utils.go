package utils

import (
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/mobilien/mobi-agent/pkg/errors"
	"github.com/mobilien/mobi-agent/pkg/i18n"
)

// GenChatSessionID generates a widget-compatible conversation id of the
// form session_<millis>_<token>.
func GenChatSessionID() string {
	return fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), strings.ToLower(RandomStr(9)))
}

func GenRandomID() string {
	return RandomStr(32)
}

func RandomStr(l int) string {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	seed := "1234567890qwertyuiopasdfghjklzxcvbnmQWERTYUIOPASDFGHJKLZXCVBNM"
	str := ""
	length := len(seed)
	for i := 0; i < l; i++ {
		point := r.Intn(length)
		str = str + seed[point:point+1]
	}
	return str
}

func Random(min, max int) int {
	if min == max {
		return max
	}
	max = max + 1
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	return min + r.Intn(max-min)
}

func BindArgsWithGin(c *gin.Context, req interface{}) error {
	err := c.ShouldBindWith(req, binding.Default(c.Request.Method, c.ContentType()))
	if err != nil {
		return errors.New(fmt.Sprintf("Gin.ShouldBindWith.%s.%s", c.Request.Method, c.Request.URL.Path), i18n.ERROR_INVALIDARGUMENT, err).Code(http.StatusBadRequest)
	}
	return nil
}

// ClientIP resolves the caller address the way the reverse-proxied widget
// deployments expect: X-Forwarded-For first, then the CDN headers, then
// the socket address, with the IPv4-in-IPv6 prefix stripped.
func ClientIP(c *gin.Context) string {
	ip := ""
	if xff := c.Request.Header.Get("X-Forwarded-For"); xff != "" {
		ip = strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if ip == "" {
		ip = c.Request.Header.Get("CF-Connecting-IP")
	}
	if ip == "" {
		ip = c.Request.Header.Get("X-Real-IP")
	}
	if ip == "" {
		ip = c.ClientIP()
	}
	return strings.TrimPrefix(ip, "::ffff:")
}
