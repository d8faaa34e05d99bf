// Package logging constructs the process-wide zap logger.
package logging

import "go.uber.org/zap"

// New returns a JSON production logger for env "prod" and a human-readable
// development logger otherwise.
func New(env string) (*zap.Logger, error) {
	if env == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
