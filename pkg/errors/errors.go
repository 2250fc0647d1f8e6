package errors

import (
	"fmt"
	"net/http"
	"strings"
)

type CustomizedError struct {
	cause   error
	message string
	trace   []string
	wrap    error
	code    int
	details string
}

func (e *CustomizedError) Code(c int) *CustomizedError {
	e.code = c
	return e
}

func (e *CustomizedError) GetCode() int {
	return e.code
}

// WithDetails attaches a raw diagnostic payload (e.g. an upstream response
// body) that is surfaced in the error response alongside the message.
func (e *CustomizedError) WithDetails(details string) *CustomizedError {
	e.details = details
	return e
}

func (e *CustomizedError) Details() string {
	return e.details
}

func New(trace, message string, err error) *CustomizedError {
	code := http.StatusInternalServerError
	return &CustomizedError{
		cause:   err,
		message: message,
		trace:   []string{trace},
		code:    code,
	}
}

func (e *CustomizedError) Trace(trace string) *CustomizedError {
	e.trace = append(e.trace, trace)
	return e
}

func Wrap(err error, trace, message string) *CustomizedError {
	ce := &CustomizedError{
		cause:   err,
		message: message,
		trace:   []string{trace},
		wrap:    err,
	}
	if income, ok := err.(*CustomizedError); ok {
		ce.code = income.code
		ce.details = income.details
	}
	return ce
}

func Trace(trace string, err error) *CustomizedError {
	if ce, ok := err.(*CustomizedError); ok {
		ce.trace = append(ce.trace, trace)
		return ce
	}
	return Wrap(err, trace, err.Error())
}

func (e *CustomizedError) Message() string {
	if e.message == "" {
		return e.cause.Error()
	}
	return e.message
}

func (e *CustomizedError) Unwrap() error {
	return e.cause
}

func (e *CustomizedError) Error() string {
	otherDetails := `""`
	if ce, ok := e.wrap.(*CustomizedError); ok {
		otherDetails = ce.Error()
	} else if e.wrap != nil {
		otherDetails = fmt.Sprint("\"", e.wrap.Error(), "\"")
	}
	return fmt.Sprintf(`{"trace":"%s","code":%d,"msg":"%s","error":"%v","wrapd":%s}`, strings.Join(e.trace, "->"), e.code, e.message, e.cause, otherDetails)
}
