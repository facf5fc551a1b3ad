// Package metrics defines the observability hooks of the navigation server.
// Handlers and reloaders depend on Recorder; the Prometheus implementation is
// only wired when metrics are enabled.
package metrics

import "time"

// ReloadOutcome labels the result of a model reload.
type ReloadOutcome string

const (
	ReloadSuccess   ReloadOutcome = "success"
	ReloadUnchanged ReloadOutcome = "unchanged"
	ReloadFailed    ReloadOutcome = "failed"
	ReloadSnapshot  ReloadOutcome = "snapshot"
)

// Recorder must be safe to call concurrently.
type Recorder interface {
	ObserveReload(outcome ReloadOutcome, d time.Duration)
	SetModelSize(navbar, sidebarRules, encryptRules int)
	IncResolution(strategy string)
	IncCache(hit bool)
	IncVerify(locked, ok bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveReload(ReloadOutcome, time.Duration) {}
func (NoopRecorder) SetModelSize(int, int, int)                 {}
func (NoopRecorder) IncResolution(string)                       {}
func (NoopRecorder) IncCache(bool)                              {}
func (NoopRecorder) IncVerify(bool, bool)                       {}
