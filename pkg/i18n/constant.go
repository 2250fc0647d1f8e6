package i18n

var ALLOW_LANG = map[string]bool{
	"en": true,
	"hu": true,
}

const DEFAULT_LANG = "hu"

const (
	ERROR_INTERNAL          = "error.internal"
	ERROR_INVALIDARGUMENT   = "error.invalidargument"
	ERROR_AI_NOT_CONFIGURED = "error.ai.notconfigured"
	ERROR_AI_UPSTREAM       = "error.ai.upstream"
	ERROR_AI_TIMEOUT        = "error.ai.timeout"
	ERROR_AI_NETWORK        = "error.ai.network"
	ERROR_TRANSCRIBE_EMPTY  = "error.transcribe.empty"
	ERROR_INVALID_EMAIL     = "error.invalid.email"
)
