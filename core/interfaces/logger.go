package interfaces

// Logger is the structured logging contract used throughout the pipeline.
// Implementations may back it with logrus, the standard library, or a
// test recorder.
//
//	logger.Info("fetched feed", map[string]interface{}{
//		"source": "Mint",
//		"items":  12,
//	})
type Logger interface {
	// Debug logs detailed troubleshooting information.
	Debug(msg string, fields map[string]interface{})

	// Info logs general informational messages.
	Info(msg string, fields map[string]interface{})

	// Warn logs potential issues that don't prevent operation.
	Warn(msg string, fields map[string]interface{})

	// Error logs failures that need attention.
	Error(msg string, fields map[string]interface{})
}
