package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/tailor/internal/pkg/messaging"
	"github.com/shandysiswandi/tailor/internal/tailor"
)

func (a *App) initModules() {
	if !a.config.GetBool("modules.tailor.enabled") {
		return
	}

	var consumer messaging.Consumer
	if c, ok := a.messaging.(messaging.Consumer); ok {
		consumer = c
	}

	if err := tailor.New(tailor.Dependency{
		Ctx:         a.ctx,
		DocStore:    a.docs,
		Goroutine:   a.goroutine,
		Enforcer:    a.casbin,
		Router:      a.router,
		Idempotency: a.idemp,
		Messaging:   a.messaging,
		Consumer:    consumer,
		Config:      a.config,
		Instrument:  a.ins,
		UUID:        a.uuid,
		Clock:       a.clock,
		Validator:   a.validator,
	}); err != nil {
		slog.Error("failed to init module tailor", "error", err)
		os.Exit(1)
	}
}
