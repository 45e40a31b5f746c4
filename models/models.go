package models

import "time"

// UnknownName — сентинел «имя неизвестно», который WireGuard пишет в лог,
// пока пир не сопоставлен с записью карты.
const UnknownName = "Unknown"

// LogEvent — одно событие из лога после парсинга, фильтрации и резолва имени.
// Event содержит только первичный классификатор (CONNECT, RECONNECT/UPDATE,
// DISCONNECT и его подвиды); скобочный квалификатор отброшен при парсинге.
// После создания событие не изменяется.
type LogEvent struct {
	Timestamp time.Time // время события, смещение таймзоны из лога сохраняется
	Event     string
	PeerKey   string
	PeerName  string // уже разрешённое отображаемое имя
	Endpoint  string
}

// PeerState — состояние одного пира в конечном автомате реконструкции.
// Создаётся лениво при первом событии пира и живёт до конца прогона,
// в конце из него вычитываются незавершённые сессии.
type PeerState struct {
	Connected    bool
	SessionStart time.Time
	HasStart     bool
	SessionIP    string
	CurrentName  string // монотонно: узнав настоящее имя, к "Unknown" не откатываемся
}

// Session — итоговая строка отчёта: один непрерывный интервал подключения.
// Для незавершённой сессии Ongoing = true, а End равен watermark — времени
// последнего события всего отфильтрованного потока.
// Инвариант: End не раньше Start.
type Session struct {
	PeerName   string
	Start      time.Time
	End        time.Time
	Ongoing    bool
	EndpointIP string
}

// Duration возвращает длительность сессии (для незавершённой — до watermark).
func (s Session) Duration() time.Duration {
	return s.End.Sub(s.Start)
}
