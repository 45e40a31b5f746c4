package clickhouseclient

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"

	"WGSessionReport/config"
	"WGSessionReport/models"
)

// Client — подключение к ClickHouse для выгрузки готового отчёта о сессиях.
// Это альтернативное назначение отчёта, а не дополнительное хранилище:
// выгружается ровно то же, что попадает в CSV.
type Client struct {
	conn   clickhouse.Conn
	table  string
	logger *zap.Logger
}

// New создает клиента ClickHouse
func New(cfg config.ClickHouseConfig, logger *zap.Logger) (*Client, error) {
	protocol := clickhouse.Native
	if cfg.Protocol == "http" {
		protocol = clickhouse.HTTP
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Address},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		DialTimeout: 5 * time.Second,
		Compression: &clickhouse.Compression{Method: clickhouse.CompressionLZ4},
		Protocol:    protocol,
	})
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}
	table := cfg.Table
	if table == "" {
		table = "wg_sessions"
	}
	return &Client{conn: conn, table: table, logger: logger}, nil
}

// InsertSessionBatch отправляет список сессий одной пачкой.
// У незавершённых сессий SessionEnd = NULL; watermark кладётся отдельной
// колонкой для всех строк, чтобы отчёт был самодостаточным.
func (c *Client) InsertSessionBatch(ctx context.Context, sess []models.Session, watermark time.Time) error {
	batch, err := c.conn.PrepareBatch(ctx,
		"INSERT INTO "+c.table+" ("+
			"PeerName, SessionStart, SessionEnd, Ongoing, DurationSeconds, EndpointIP, Watermark"+
			") VALUES (?,?,?,?,?,?,?)")
	if err != nil {
		c.logger.Error("prepare batch", zap.Error(err))
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, s := range sess {
		var end *time.Time
		var ongoing uint8
		if s.Ongoing {
			ongoing = 1
		} else {
			e := s.End
			end = &e
		}
		err = batch.Append(
			s.PeerName,
			s.Start,
			end,
			ongoing,
			uint32(s.Duration()/time.Second),
			s.EndpointIP,
			watermark,
		)
		if err != nil {
			c.logger.Error("append batch", zap.Error(err), zap.String("peer", s.PeerName))
			return fmt.Errorf("append: %w", err)
		}
	}
	return batch.Send()
}

func (c *Client) Close() error {
	return c.conn.Close()
}
