package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"WGSessionReport/models"
)

// Header — фиксированный порядок колонок отчёта.
var Header = []string{"PeerName", "SessionStart", "SessionEnd", "Duration (HH:MM:SS)", "EndpointIP"}

// FormatDuration форматирует длительность как HH:MM:SS с ведущими нулями.
// Часы не сворачиваются по модулю 24: сессия в 25 часов даст "25:00:00".
func FormatDuration(d time.Duration) string {
	total := int64(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// Row превращает сессию в строку CSV. Незавершённая сессия получает
// текстовый маркер с watermark вместо конечного времени и пометку
// «up to last log» у длительности.
func Row(s models.Session) []string {
	end := s.End.Format(time.RFC3339)
	dur := FormatDuration(s.Duration())
	if s.Ongoing {
		end = fmt.Sprintf("Ongoing (as of %s)", s.End.Format(time.RFC3339))
		dur += " (up to last log)"
	}
	return []string{s.PeerName, s.Start.Format(time.RFC3339), end, dur, s.EndpointIP}
}

// WriteCSV пишет отчёт в файл: строка заголовка и по строке на сессию.
// Ошибка записи фатальна для прогона и возвращается с причиной.
func WriteCSV(path string, sessions []models.Session) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("создание файла отчёта: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("запись заголовка: %w", err)
	}
	for _, s := range sessions {
		if err := w.Write(Row(s)); err != nil {
			return fmt.Errorf("запись строки: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("запись отчёта: %w", err)
	}
	return nil
}
