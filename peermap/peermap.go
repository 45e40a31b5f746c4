package peermap

import (
	"encoding/json"
	"os"

	"go.uber.org/zap"
)

// peerEntry — запись карты пиров. Из всех полей нужен только publicKey,
// остальное игнорируется.
type peerEntry struct {
	PublicKey string `json:"publicKey"`
}

// Map — карта PeerKey → отображаемое имя пира.
// После загрузки только читается.
type Map map[string]string

// Load читает JSON-файл карты пиров (имя → {publicKey: ...}) и инвертирует
// его в PeerKey → имя. Отсутствие или порча файла не фатальны: возвращается
// пустая карта, а резолв откатится к имени из строки лога.
func Load(path string, lg *zap.Logger) Map {
	m := make(Map)
	data, err := os.ReadFile(path)
	if err != nil {
		lg.Warn("Не удалось прочитать карту пиров, имена могут остаться Unknown",
			zap.String("file", path), zap.Error(err))
		return m
	}
	var raw map[string]peerEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		lg.Warn("Не удалось распарсить карту пиров",
			zap.String("file", path), zap.Error(err))
		return m
	}
	for name, entry := range raw {
		if entry.PublicKey != "" {
			m[entry.PublicKey] = name
		}
	}
	return m
}

// Resolve возвращает имя пира по ключу: запись карты важнее имени из лога.
// Если ключа в карте нет, используется hint (он может быть "Unknown").
// Резолв выполняется на каждом событии, потому что имя в логе меняется от
// строки к строке, а карта авторитетна, когда запись есть.
func (m Map) Resolve(key, hint string) string {
	if name, ok := m[key]; ok {
		return name
	}
	return hint
}
