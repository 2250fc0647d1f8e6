package safe

import (
	"log/slog"
	"runtime/debug"
	"strings"
)

func Run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			stack := getStackTrace(3) // Skip 3 frames: defer, Run, and the immediate caller
			slog.Error("panic recovered",
				slog.Any("recover", r),
				slog.String("component", "safe.Run"),
				slog.String("stack", stack),
			)
		}
	}()

	fn()
}

// getStackTrace returns a formatted stack trace, skipping the first
// skipFrames frames.
func getStackTrace(skipFrames int) string {
	stackStr := string(debug.Stack())
	lines := strings.Split(stackStr, "\n")

	var formatted []string
	formatted = append(formatted, "Stack trace:")

	startIdx := skipFrames
	if startIdx < len(lines) {
		for i := startIdx; i < len(lines) && i < startIdx+20; i++ {
			line := strings.TrimSpace(lines[i])
			if line != "" {
				formatted = append(formatted, "  "+line)
			}
		}

		if len(lines) > startIdx+20 {
			formatted = append(formatted, "  ... (truncated)")
		}
	}

	return strings.Join(formatted, "\n")
}
