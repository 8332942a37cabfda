package application

import (
	"github.com/rs/zerolog"
)

// Observer receives the non-fatal conditions the service tolerates instead
// of failing the caller's operation.
type Observer interface {
	// StaleAttachment reports a displaced file that could not be removed.
	StaleAttachment(wizardID int64, name string, err error)
	// OrphanedAttachment reports a written file that no record references.
	OrphanedAttachment(wizardID int64, name string, err error)
}

type nopObserver struct{}

func (nopObserver) StaleAttachment(int64, string, error)    {}
func (nopObserver) OrphanedAttachment(int64, string, error) {}

// LogObserver writes observations to a zerolog logger.
type LogObserver struct {
	logger zerolog.Logger
}

func NewLogObserver(logger zerolog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

func (o *LogObserver) StaleAttachment(wizardID int64, name string, err error) {
	o.logger.Warn().Err(err).Int64("wizardID", wizardID).Str("file", name).Msg("Failed to remove previous image")
}

func (o *LogObserver) OrphanedAttachment(wizardID int64, name string, err error) {
	o.logger.Error().Err(err).Int64("wizardID", wizardID).Str("file", name).Msg("Image file left without a record")
}
