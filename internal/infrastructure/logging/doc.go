// Package logging provides structured logging using uber/zap.
//
// Two modes are offered:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("view mounted", zap.String("view_id", id))
//	logger.Error("host link failed", zap.Error(err))
package logging
