package sessions

import (
	"strings"
	"time"

	"WGSessionReport/models"
)

// isConnect — события, открывающие сессию. Классификация идёт только по
// первичному классификатору, квалификаторы отброшены ещё парсером.
func isConnect(event string) bool {
	return event == "CONNECT" || event == "RECONNECT/UPDATE"
}

// isDisconnect — любой подвид DISCONNECT закрывает сессию.
func isDisconnect(event string) bool {
	return strings.HasPrefix(event, "DISCONNECT")
}

// Reconstructor — конечный автомат восстановления сессий.
// Состояние пира создаётся лениво при первом событии и живёт до Finalize.
// Не потокобезопасен: события одного прогона подаются строго последовательно
// и строго в порядке возрастания времени.
type Reconstructor struct {
	states map[string]*models.PeerState
	order  []string // ключи в порядке первого появления, для детерминизма Finalize
}

func New() *Reconstructor {
	return &Reconstructor{states: make(map[string]*models.PeerState)}
}

func (r *Reconstructor) state(key string) *models.PeerState {
	st, ok := r.states[key]
	if !ok {
		st = &models.PeerState{CurrentName: models.UnknownName}
		r.states[key] = st
		r.order = append(r.order, key)
	}
	return st
}

// Feed подаёт одно событие в автомат. Если событие закрыло сессию,
// она возвращается вторым значением true.
//
// Переходы:
//   Disconnected + CONNECT-класс  → запомнить начало и endpoint, Connected
//   Connected    + CONNECT-класс  → границы сессии не двигаются
//   Connected    + DISCONNECT-*   → выпустить завершённую сессию, Disconnected
//   Disconnected + DISCONNECT-*   → дубликат, игнорируется
func (r *Reconstructor) Feed(ev models.LogEvent) (models.Session, bool) {
	st := r.state(ev.PeerKey)

	// Имя обновляется на каждом событии независимо от состояния:
	// узнав настоящее имя, к "Unknown" больше не откатываемся.
	if ev.PeerName != models.UnknownName {
		st.CurrentName = ev.PeerName
	}

	switch {
	case isConnect(ev.Event):
		if !st.Connected {
			st.Connected = true
			st.SessionStart = ev.Timestamp
			st.HasStart = true
			st.SessionIP = ev.Endpoint
		}
	case isDisconnect(ev.Event):
		if st.Connected {
			sess := models.Session{
				PeerName:   st.CurrentName,
				Start:      st.SessionStart,
				End:        ev.Timestamp,
				EndpointIP: st.SessionIP,
			}
			st.Connected = false
			st.HasStart = false
			st.SessionIP = ""
			return sess, true
		}
	}
	return models.Session{}, false
}

// Finalize выпускает незавершённые сессии: каждый пир, оставшийся
// подключённым, даёт одну сессию, ограниченную watermark — временем
// последнего события всего потока, а не последнего события самого пира.
func (r *Reconstructor) Finalize(watermark time.Time) []models.Session {
	var open []models.Session
	for _, key := range r.order {
		st := r.states[key]
		if st.Connected && st.HasStart {
			open = append(open, models.Session{
				PeerName:   st.CurrentName,
				Start:      st.SessionStart,
				End:        watermark,
				Ongoing:    true,
				EndpointIP: st.SessionIP,
			})
		}
	}
	return open
}

// Reconstruct прогоняет отсортированный поток событий через автомат целиком:
// завершённые сессии в порядке их закрытия, затем незавершённые.
// Пустой поток даёт пустой результат, watermark при этом не существует.
func Reconstruct(events []models.LogEvent) []models.Session {
	if len(events) == 0 {
		return nil
	}
	r := New()
	var result []models.Session
	for _, ev := range events {
		if sess, done := r.Feed(ev); done {
			result = append(result, sess)
		}
	}
	watermark := events[len(events)-1].Timestamp
	return append(result, r.Finalize(watermark)...)
}
