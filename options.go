package nasc

import (
	"fmt"

	"go.uber.org/zap"
)

// Option is a function that configures a Nasc container.
type Option func(*Nasc) error

// WithLogger sets the logger used for registration and disposal events.
func WithLogger(logger *zap.Logger) Option {
	return func(n *Nasc) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		n.logger = logger
		return nil
	}
}

// WithDebug logs container events to a development logger.
func WithDebug() Option {
	return func(n *Nasc) error {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("create debug logger: %w", err)
		}
		n.logger = logger.Named("nasc")
		return nil
	}
}
