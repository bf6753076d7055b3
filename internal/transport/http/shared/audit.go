package shared

import (
	"net/http"

	"c2ms/internal/domain/audit"
	"c2ms/internal/requestctx"
)

// Audit records a mutation made by the current request. Failures are logged
// and never fail the request.
func Audit(r *http.Request, svc *audit.Service, action, entityType, entityID string, before, after any) {
	ctx := r.Context()
	err := svc.Record(ctx, audit.Entry{
		Actor:      requestctx.GetActor(ctx),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  requestctx.GetRequestID(ctx),
		IP:         ClientIP(r),
		Before:     before,
		After:      after,
	})
	if err != nil {
		requestctx.Logger(ctx).Warn("audit record failed", "action", action, "entityId", entityID, "err", err)
	}
}
