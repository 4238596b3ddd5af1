package health

import (
	"fmt"
	"time"
)

// CheckFailed единственный вид ошибки проверки: сеть, таймаут, разбор ответа.
// Наружу поллера не выходит, превращается в снимок "всё offline".
type CheckFailed struct {
	Cause error
}

func (e *CheckFailed) Error() string {
	return fmt.Sprintf("health check failed: %v", e.Cause)
}

func (e *CheckFailed) Unwrap() error {
	return e.Cause
}

// Result итог одной проверки. Заполнено ровно одно из полей.
type Result struct {
	Report *HealthReport
	Err    *CheckFailed
}

// Succeeded возвращает результат с разобранным ответом
func Succeeded(report *HealthReport) Result {
	return Result{Report: report}
}

// Failed возвращает результат неудачной проверки
func Failed(cause error) Result {
	return Result{Err: &CheckFailed{Cause: cause}}
}

// OK сообщает, получен ли корректный ответ
func (r Result) OK() bool {
	return r.Err == nil && r.Report != nil
}

// FromResult отображает результат проверки в снимок.
// Любое значение кроме ожидаемого (включая отсутствие поля) даёт offline.
func FromResult(res Result, now time.Time) Snapshot {
	if !res.OK() {
		return Offline(now)
	}

	report := res.Report
	return Snapshot{
		Backend:     onlineIf(report.OK),
		Database:    onlineIf(report.Service("database") == DatabaseConnected),
		Email:       onlineIf(report.Service("email") == EmailConfigured),
		LastUpdated: &now,
	}
}

func onlineIf(cond bool) Status {
	if cond {
		return StatusOnline
	}
	return StatusOffline
}
