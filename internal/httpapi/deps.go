package httpapi

import (
	"sync/atomic"

	"jobclaim-engine/internal/auditlog"
	"jobclaim-engine/internal/config"
	"jobclaim-engine/internal/events"
	"jobclaim-engine/internal/pipeline"
)

type Deps struct {
	Pipeline *pipeline.Pipeline
	Audit    auditlog.Store

	Hub *events.Hub

	// Atomic store holding config.Config; handlers read through it, not a
	// snapshot, so a PUT /config is visible immediately.
	CfgVal *atomic.Value

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
}
