package tds

import (
	"context"
	"log/slog"
)

// LoggingObserver logs decode events using structured logging
type LoggingObserver struct {
	logger *slog.Logger
}

// NewLoggingObserver creates a logging observer on the default logger
func NewLoggingObserver() *LoggingObserver {
	return &LoggingObserver{
		logger: slog.Default(),
	}
}

// OnEvent implements the Observer interface
func (lo *LoggingObserver) OnEvent(event Event) {
	level := slog.LevelDebug
	attrs := []any{
		"event", event.Type,
		"decode_id", event.DecodeID,
	}

	switch data := event.Data.(type) {
	case *ColMetadataToken:
		level = slog.LevelInfo
		attrs = append(attrs, "columns", len(data.Columns), "cek_table", data.CekTable != nil)
	case ColumnMetadata:
		typeName := ""
		if data.Type != nil {
			typeName = data.Type.Name
		}
		attrs = append(attrs,
			"column", data.ColName,
			"type", typeName,
			"table", data.TableName.String(),
			"encrypted", data.CryptoMetadata != nil,
		)
	case *CekTableMetadata:
		attrs = append(attrs,
			"ek_value_count", data.EkValueCount,
			"cek_id", data.KeyInfo.CekID,
			"values", len(data.KeyInfo.Values),
		)
	case error:
		level = slog.LevelError
		attrs = append(attrs, "error", data)
	case nil:
	default:
		attrs = append(attrs, "data", data)
	}

	lo.logger.Log(context.Background(), level, "colmetadata_decode", attrs...)
}
