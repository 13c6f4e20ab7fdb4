package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/ValeenMar/tovaltech-sub001/internal/apierror"
	"github.com/ValeenMar/tovaltech-sub001/internal/dto"
	"github.com/ValeenMar/tovaltech-sub001/internal/service"
	"github.com/ValeenMar/tovaltech-sub001/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// SyncQueue is satisfied by *worker.Dispatcher.
type SyncQueue interface {
	EnqueueSync(ctx context.Context, trigger string) (string, bool, error)
}

type SyncHandler struct {
	queue SyncQueue
	svc   service.SyncService
}

func NewSyncHandler(queue SyncQueue, svc service.SyncService) *SyncHandler {
	return &SyncHandler{queue: queue, svc: svc}
}

// Encolar queues a manual run; 202 when queued, 200 when one was already pending.
func (h *SyncHandler) Encolar(c *gin.Context) {
	id, queued, err := h.queue.EnqueueSync(c.Request.Context(), service.TriggerManual)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, apierror.New("No se pudo encolar la sincronizacion"))
		return
	}
	status := http.StatusAccepted
	if !queued {
		status = http.StatusOK
	}
	c.JSON(status, dto.SyncEnqueueResponse{JobID: id, Trigger: service.TriggerManual})
}

func (h *SyncHandler) Ultimo(c *gin.Context) {
	report, err := h.svc.LastReport(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrReportNotFound) {
			c.JSON(http.StatusNotFound, apierror.New(err.Error()))
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Error al leer el ultimo reporte"))
		return
	}
	c.JSON(http.StatusOK, report)
}

// DeadLetters lists the most recent sync jobs that exhausted their retries.
func DeadLetters(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := worker.ListDLQ(c.Request.Context(), rdb, worker.QueueSync, 20)
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, apierror.New("Error al leer la cola de fallidos"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": entries})
	}
}
