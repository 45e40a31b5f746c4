package scanner

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hpcloud/tail"
	"go.uber.org/zap"

	"WGSessionReport/models"
	"WGSessionReport/parser"
	"WGSessionReport/peermap"
)

// Filter — критерии отбора событий перед реконструкцией сессий.
// Даты — календарные (полночь UTC), диапазон включительный с обеих сторон.
type Filter struct {
	User      string // имя пира или "all"
	StartDate time.Time
	EndDate   time.Time
}

// InRange проверяет попадание события в диапазон дат.
// Дата берётся в смещении самого события, без приведения к одной таймзоне.
func (f Filter) InRange(ts time.Time) bool {
	y, m, d := ts.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return !day.Before(f.StartDate) && !day.After(f.EndDate)
}

// Scanner читает файлы логов, парсит строки и собирает поток событий.
// Каждый файл открывается, вычитывается целиком и закрывается до следующего;
// сбой одного файла не прерывает обработку остальных.
type Scanner struct {
	peers  peermap.Map
	filter Filter
	lg     *zap.Logger
}

func New(peers peermap.Map, filter Filter, lg *zap.Logger) *Scanner {
	return &Scanner{peers: peers, filter: filter, lg: lg}
}

// BuildStream перечисляет файлы <dir>/<prefix>* и возвращает события,
// стабильно отсортированные по времени (порядок обнаружения файлов на
// итоговый порядок не влияет, при равном времени сохраняется порядок чтения).
// Ошибка возвращается, только если не найден или не обработан ни один файл.
func (s *Scanner) BuildStream(dir, prefix string) ([]models.LogEvent, error) {
	paths, err := filepath.Glob(filepath.Join(dir, prefix+"*"))
	if err != nil {
		return nil, fmt.Errorf("перечисление логов: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("не найдено ни одного файла %s* в %s", prefix, dir)
	}
	// Сначала более свежие файлы; итоговый порядок задаёт сортировка ниже.
	sort.Sort(sort.Reverse(sort.StringSlice(paths)))

	var events []models.LogEvent
	processed := 0
	for _, path := range paths {
		s.lg.Info("Обрабатываем файл лога", zap.String("file", filepath.Base(path)))
		n, err := s.scanFile(path, &events)
		if err != nil {
			s.lg.Warn("Не удалось обработать файл лога", zap.String("file", path), zap.Error(err))
			continue
		}
		processed++
		s.lg.Debug("Файл обработан", zap.String("file", path), zap.Int("events", n))
	}
	if processed == 0 {
		return nil, fmt.Errorf("ни один из %d найденных файлов не удалось обработать", len(paths))
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	return events, nil
}

func (s *Scanner) scanFile(path string, events *[]models.LogEvent) (int, error) {
	if strings.HasSuffix(path, ".gz") {
		return s.scanGzip(path, events)
	}
	return s.scanPlain(path, events)
}

// scanPlain читает обычный текстовый файл через tail без Follow:
// tail останавливается на EOF, что и нужно пакетному отчёту.
func (s *Scanner) scanPlain(path string, events *[]models.LogEvent) (int, error) {
	t, err := tail.TailFile(path, tail.Config{
		Follow:    false,
		MustExist: true,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return 0, fmt.Errorf("открытие tail: %w", err)
	}
	defer t.Cleanup()

	n := 0
	for line := range t.Lines {
		if line.Err != nil {
			return n, fmt.Errorf("чтение строки: %w", line.Err)
		}
		if s.consumeLine(line.Text, events) {
			n++
		}
	}
	if err := t.Wait(); err != nil {
		return n, fmt.Errorf("чтение файла: %w", err)
	}
	return n, nil
}

// scanGzip распаковывает .gz на лету и читает его построчно.
func (s *Scanner) scanGzip(path string, events *[]models.LogEvent) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("открытие: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return 0, fmt.Errorf("gzip: %w", err)
	}
	defer gz.Close()

	sc := bufio.NewScanner(gz)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		if s.consumeLine(sc.Text(), events) {
			n++
		}
	}
	if err := sc.Err(); err != nil {
		return n, fmt.Errorf("чтение gzip: %w", err)
	}
	return n, nil
}

// consumeLine парсит строку и применяет фильтры в фиксированном порядке:
// сначала дата, затем резолв имени, затем отбор по пиру.
// Возвращает true, если событие попало в поток.
func (s *Scanner) consumeLine(line string, events *[]models.LogEvent) bool {
	rec, err := parser.ParseLine(line)
	if err != nil {
		if errors.Is(err, parser.ErrBadTimestamp) {
			s.lg.Warn("Пропускаем строку с нечитаемым временем", zap.Error(err))
		}
		// строки, не совпавшие с грамматикой, пропускаем молча
		return false
	}
	if !s.filter.InRange(rec.Timestamp) {
		return false
	}
	name := s.peers.Resolve(rec.PeerKey, rec.PeerName)
	if s.filter.User != "all" && name != s.filter.User {
		return false
	}
	*events = append(*events, models.LogEvent{
		Timestamp: rec.Timestamp,
		Event:     rec.Event,
		PeerKey:   rec.PeerKey,
		PeerName:  name,
		Endpoint:  rec.Endpoint,
	})
	return true
}
