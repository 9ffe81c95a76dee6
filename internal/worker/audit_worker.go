package worker

import (
	"github.com/spec-kit/code-arena/internal/events"
	"github.com/spec-kit/code-arena/internal/service"
)

// StartAuditWorker registers the audit log handlers.
func StartAuditWorker(auditService *service.AuditService) {
	if auditService == nil {
		return
	}
	auditService.RegisterHandlers()
}

// StartRankingWorker keeps the ranking cache fed from progression events.
func StartRankingWorker(rankingService *service.RankingService, dispatcher events.Dispatcher) {
	if rankingService == nil {
		return
	}
	rankingService.RegisterHandlers(dispatcher)
}
