package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Record — сырые поля одной строки лога до фильтрации и резолва имени.
type Record struct {
	Timestamp time.Time
	Event     string // первичный классификатор, без скобочного квалификатора
	PeerName  string // имя из самой строки, может быть "Unknown"
	PeerKey   string
	Endpoint  string
}

// Ошибки парсинга. Строки с ErrNoMatch пропускаются молча,
// строки с ErrBadTimestamp — с предупреждением.
var (
	ErrNoMatch      = errors.New("строка не соответствует формату лога")
	ErrBadTimestamp = errors.New("не удалось распарсить время")
)

// linePattern описывает грамматику строки лога WireGuard:
// <ISO-8601 со смещением вида +08:00> <событие>[ (квалификатор)] PeerName='<имя>' PeerKey=<ключ> Endpoint=<адрес>
// Поля разделены пробельными последовательностями, порядок фиксированный.
var linePattern = regexp.MustCompile(
	`^(?P<ts>\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}[+-]\d{2}:\d{2})\s+` +
		`(?P<event>\S+(?:\s+\([^)]+\))?)\s+` +
		`PeerName='(?P<name>[^']*)'\s+` +
		`PeerKey=(?P<key>[^ ]+)\s+` +
		`Endpoint=(?P<endpoint>\S+)`,
)

// groupIndex — индексы именованных групп linePattern.
var groupIndex = func() map[string]int {
	idx := make(map[string]int)
	for i, name := range linePattern.SubexpNames() {
		if name != "" {
			idx[name] = i
		}
	}
	return idx
}()

// ParseLine разбирает одну строку лога в Record.
// Событие может состоять из двух слов, например "DISCONNECT (Timeout)":
// для классификации берётся только первое слово, квалификатор отбрасывается.
func ParseLine(line string) (Record, error) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return Record{}, ErrNoMatch
	}
	ts, err := time.Parse(time.RFC3339, m[groupIndex["ts"]])
	if err != nil {
		return Record{}, fmt.Errorf("%w: %q", ErrBadTimestamp, m[groupIndex["ts"]])
	}
	event := strings.Fields(m[groupIndex["event"]])[0]
	return Record{
		Timestamp: ts,
		Event:     event,
		PeerName:  m[groupIndex["name"]],
		PeerKey:   m[groupIndex["key"]],
		Endpoint:  m[groupIndex["endpoint"]],
	}, nil
}
