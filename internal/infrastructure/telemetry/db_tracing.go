package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RegisterDBTracing attaches the otelgorm plugin so every query becomes a
// child span of the surrounding request. Query variables are never recorded.
// A no-op when tracing is disabled. Slow query logging stays with the gorm
// logger, which already carries the request ID.
func RegisterDBTracing(db *gorm.DB, enabled bool, dbName string, logger *zap.Logger) error {
	if !enabled {
		return nil
	}

	plugin := otelgorm.NewPlugin(
		otelgorm.WithDBName(dbName),
		otelgorm.WithoutQueryVariables(),
	)
	if err := db.Use(plugin); err != nil {
		return err
	}

	logger.Info("Database tracing enabled", zap.String("db_name", dbName))
	return nil
}
