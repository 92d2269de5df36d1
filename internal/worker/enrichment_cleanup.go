// Package worker chứa các background worker chạy định kỳ.
package worker

import (
	"context"
	"time"

	aisvc "edu_tube/internal/api/ai/service"
	"edu_tube/internal/logger"
)

// EnrichmentCleanupWorker worker định kỳ reconcile các phiên xử lý AI bị bỏ dở:
// video có trường đang processing nhưng không được cập nhật quá lâu (process chết giữa chừng)
// sẽ được chốt lại trạng thái theo nội dung hiện có.
type EnrichmentCleanupWorker struct {
	enrichmentService *aisvc.EnrichmentService
	interval          time.Duration // Khoảng thời gian giữa các lần quét
	staleTimeout      time.Duration // Thời gian không cập nhật để coi một phiên là bỏ dở
}

// NewEnrichmentCleanupWorker tạo mới EnrichmentCleanupWorker.
// interval dưới 30 giây và staleTimeout dưới 1 phút được nâng về giá trị mặc định.
func NewEnrichmentCleanupWorker(enrichmentService *aisvc.EnrichmentService, interval, staleTimeout time.Duration) *EnrichmentCleanupWorker {
	if interval < 30*time.Second {
		interval = 1 * time.Minute
	}
	if staleTimeout < 1*time.Minute {
		staleTimeout = 15 * time.Minute
	}

	return &EnrichmentCleanupWorker{
		enrichmentService: enrichmentService,
		interval:          interval,
		staleTimeout:      staleTimeout,
	}
}

// Start chạy vòng lặp quét định kỳ cho tới khi context bị hủy.
// Panic trong một lần quét được recover để worker tiếp tục ở lần chạy tiếp theo.
func (w *EnrichmentCleanupWorker) Start(ctx context.Context) {
	log := logger.GetAppLogger()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.WithFields(map[string]interface{}{
		"interval":     w.interval.String(),
		"staleTimeout": w.staleTimeout.String(),
	}).Info("[ENRICH_CLEANUP] Starting Enrichment Cleanup Worker...")

	for {
		select {
		case <-ctx.Done():
			log.Info("[ENRICH_CLEANUP] Enrichment Cleanup Worker stopped")
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.WithFields(map[string]interface{}{
							"panic": r,
						}).Error("[ENRICH_CLEANUP] Panic khi reconcile, sẽ tiếp tục ở lần chạy tiếp theo")
					}
				}()

				reconciled, err := w.enrichmentService.ReconcileStale(ctx, w.staleTimeout)
				if err != nil {
					log.WithError(err).Error("[ENRICH_CLEANUP] Failed to reconcile stale enrichments")
					return
				}

				if reconciled > 0 {
					log.WithFields(map[string]interface{}{
						"reconciled":   reconciled,
						"staleTimeout": w.staleTimeout.String(),
					}).Info("[ENRICH_CLEANUP] Reconciled stale enrichments")
				}
				// Không log khi reconciled = 0 (giảm log noise)
			}()
		}
	}
}
