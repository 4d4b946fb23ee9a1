package services

import (
	"log/slog"

	"github.com/Dosada05/esports-arena/changefeed"
)

// publishChange сообщает подписчикам об изменении строки.
// Ошибка маршалинга только логируется: запись в БД уже произошла.
func publishChange(pub changefeed.Publisher, logger *slog.Logger, table string, typ changefeed.ChangeType, record, old interface{}) {
	if pub == nil {
		return
	}
	e, err := changefeed.NewEvent(table, typ, record, old)
	if err != nil {
		logger.Error("failed to build change event", slog.String("table", table), slog.Any("error", err))
		return
	}
	pub.Publish(e)
}
