package response

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mobilien/mobi-agent/pkg/errors"
	"github.com/mobilien/mobi-agent/pkg/i18n"
	"github.com/mobilien/mobi-agent/pkg/utils"
)

func ProvideResponseLocalizer(l i18n.Localizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("i18n", l)
	}
}

func InjectResponseLocalizer(c *gin.Context) i18n.Localizer {
	return c.MustGet("i18n").(i18n.Localizer)
}

const (
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-Id"
)

// ErrorBody is the wire shape the chat widget expects on failure.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func GetLangFromRequestOrDefault(c *gin.Context) string {
	lang := c.Request.Header.Get("Accept-Language")
	if len(lang) >= 2 {
		lang = lang[:2]
	}
	if i18n.ALLOW_LANG[lang] {
		return lang
	}
	return i18n.DEFAULT_LANG
}

// APIError responds with a localized error body. The upstream status is
// preserved when the failure carries one.
func APIError(c *gin.Context, err error) {
	c.Abort()
	l := InjectResponseLocalizer(c)

	body := ErrorBody{}
	var httpStatus int
	if cerrptr, ok := err.(*errors.CustomizedError); !ok {
		httpStatus = http.StatusInternalServerError
		body.Error = err.Error()
	} else {
		httpStatus = cerrptr.GetCode()
		body.Error = l.Get(GetLangFromRequestOrDefault(c), cerrptr.Message())
		body.Details = cerrptr.Details()
	}

	c.JSON(httpStatus, body)
	printErrorLog(c, httpStatus, err)
}

func printErrorLog(c *gin.Context, status int, err error) {
	slog.Error("response error",
		slog.String("request_uri", c.Request.URL.Path),
		slog.String("request_id", c.GetString(RequestIDKey)),
		slog.Int("code", status),
		slog.String("error", err.Error()),
	)
}

// APISuccess responds 200 with the payload as-is; the widget consumes
// bare objects, not an envelope.
func APISuccess(c *gin.Context, response interface{}) {
	c.Abort()
	c.JSON(http.StatusOK, response)
	slog.Info("request success",
		slog.String("request_uri", c.Request.URL.Path),
		slog.String("request_id", c.GetString(RequestIDKey)),
		slog.String("method", c.Request.Method),
	)
}

// NewResponse tags every request with an id, echoed in the response
// headers for support diagnostics.
func NewResponse() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := utils.GenRandomID()
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
	}
}
