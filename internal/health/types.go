package health

import (
	"encoding/json"
	"time"
)

// Status состояние одного сервиса на панели
type Status string

const (
	StatusChecking Status = "checking"
	StatusOnline   Status = "online"
	StatusOffline  Status = "offline"
)

// Valid сообщает, входит ли значение в словарь статусов
func (s Status) Valid() bool {
	switch s {
	case StatusChecking, StatusOnline, StatusOffline:
		return true
	}
	return false
}

// Ожидаемые значения вложенных полей services.*
const (
	DatabaseConnected = "connected"
	EmailConfigured   = "configured"
)

// LastUpdatedLayout формат времени последней проверки для отображения
const LastUpdatedLayout = time.TimeOnly

// Snapshot последнее известное состояние сервисов.
// Снимок не меняется после публикации: каждый цикл создаёт новый.
type Snapshot struct {
	Backend     Status
	Database    Status
	Email       Status
	LastUpdated *time.Time
}

// Initial возвращает снимок до завершения первой проверки
func Initial() Snapshot {
	return Snapshot{
		Backend:  StatusChecking,
		Database: StatusChecking,
		Email:    StatusChecking,
	}
}

// Offline возвращает снимок неудачной проверки
func Offline(now time.Time) Snapshot {
	return Snapshot{
		Backend:     StatusOffline,
		Database:    StatusOffline,
		Email:       StatusOffline,
		LastUpdated: &now,
	}
}

// Completed сообщает, завершилась ли хотя бы одна проверка
func (s Snapshot) Completed() bool {
	return s.LastUpdated != nil
}

// LastUpdatedText возвращает время проверки в локальной зоне или "" до первой проверки
func (s Snapshot) LastUpdatedText() string {
	if s.LastUpdated == nil {
		return ""
	}
	return s.LastUpdated.Local().Format(LastUpdatedLayout)
}

// Services возвращает статусы в порядке отображения
func (s Snapshot) Services() map[string]Status {
	return map[string]Status{
		"backend":  s.Backend,
		"database": s.Database,
		"email":    s.Email,
	}
}

type snapshotJSON struct {
	Backend         Status     `json:"backend"`
	Database        Status     `json:"database"`
	Email           Status     `json:"email"`
	LastUpdated     *time.Time `json:"lastUpdated"`
	LastUpdatedText string     `json:"lastUpdatedText"`
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshotJSON{
		Backend:         s.Backend,
		Database:        s.Database,
		Email:           s.Email,
		LastUpdated:     s.LastUpdated,
		LastUpdatedText: s.LastUpdatedText(),
	})
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var raw snapshotJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Backend = raw.Backend
	s.Database = raw.Database
	s.Email = raw.Email
	s.LastUpdated = raw.LastUpdated
	return nil
}

// HealthReport разобранный ответ health endpoint
type HealthReport struct {
	// OK true для кодов 2xx
	OK         bool
	StatusCode int
	// Services содержимое поля services ответа
	Services map[string]string
}

// Service возвращает значение services.<name> или "" если поле отсутствует
func (r *HealthReport) Service(name string) string {
	if r == nil || r.Services == nil {
		return ""
	}
	return r.Services[name]
}
