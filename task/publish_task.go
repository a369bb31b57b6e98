package task

import "log/slog"

// NewPublishTask republishes the sensor state on the hour boundary,
// when the current interval price changes without any new download.
func NewPublishTask(logger *slog.Logger, publish func()) func() {
	return func() {
		logger.Debug("running publish task...")
		publish()
	}
}
