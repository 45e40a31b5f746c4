package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"go.uber.org/zap"

	"WGSessionReport/clickhouseclient"
	"WGSessionReport/config"
	"WGSessionReport/logger"
	"WGSessionReport/peermap"
	"WGSessionReport/report"
	"WGSessionReport/scanner"
	"WGSessionReport/sessions"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		lg := logger.InitZap(false).Named("main")
		lg.Fatal("Ошибка конфигурации", zap.Error(err))
	}

	rootLogger := logger.InitZap(cfg.Verbose)
	lg := rootLogger.Named("main")
	defer lg.Sync()
	lg.Info("Формируем отчёт о сессиях WireGuard",
		zap.String("user", cfg.User),
		zap.String("start", cfg.StartDate.Format("2006-01-02")),
		zap.String("end", cfg.EndDate.Format("2006-01-02")),
		zap.String("logDir", cfg.LogDir))

	peers := peermap.Load(cfg.MapFile, lg.Named("peermap"))

	filter := scanner.Filter{User: cfg.User, StartDate: cfg.StartDate, EndDate: cfg.EndDate}
	sc := scanner.New(peers, filter, lg.Named("scanner"))
	events, err := sc.BuildStream(cfg.LogDir, cfg.LogPrefix)
	if err != nil {
		lg.Fatal("Сканирование логов не удалось", zap.Error(err))
	}
	if len(events) == 0 {
		lg.Info("Подходящих записей за указанный период не найдено, отчёт пуст")
		return
	}
	lg.Info("События собраны и отсортированы", zap.Int("count", len(events)))

	result := sessions.Reconstruct(events)
	lg.Info("Сессии восстановлены", zap.Int("count", len(result)))
	if len(result) == 0 {
		lg.Info("Нет ни одной сессии для отчёта")
		return
	}

	if cfg.Output != "" {
		if err := report.WriteCSV(cfg.Output, result); err != nil {
			lg.Fatal("Не удалось записать отчёт", zap.String("file", cfg.Output), zap.Error(err))
		}
		lg.Info("CSV-отчёт записан", zap.String("file", cfg.Output))
	}

	if cfg.ClickHouse.Address != "" {
		chClient, err := clickhouseclient.New(cfg.ClickHouse, lg.Named("clickhouse"))
		if err != nil {
			lg.Fatal("Ошибка подключения к ClickHouse", zap.Error(err))
		}
		defer chClient.Close()
		watermark := events[len(events)-1].Timestamp
		if err := chClient.InsertSessionBatch(context.Background(), result, watermark); err != nil {
			lg.Fatal("Не удалось выгрузить отчёт в ClickHouse", zap.Error(err))
		}
		lg.Info("Отчёт выгружен в ClickHouse", zap.Int("count", len(result)))
	}
}
