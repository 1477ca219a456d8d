package handler

import (
	"context"
	"io"
	"net/http"
	"time"

	"airportpos/internal/apierror"
	"airportpos/internal/model"
	"airportpos/internal/realtime"
	"airportpos/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SubscribeFunc opens a live feed of bill events that ends with ctx.
type SubscribeFunc func(ctx context.Context) (<-chan realtime.BillEvent, error)

type EventsHandler struct {
	subscribe SubscribeFunc
	shops     repository.ShopRepository
	heartbeat time.Duration
}

func NewEventsHandler(subscribe SubscribeFunc, shops repository.ShopRepository) *EventsHandler {
	return &EventsHandler{subscribe: subscribe, shops: shops, heartbeat: 25 * time.Second}
}

// Bills godoc
// @Summary      Live feed of new bills (Server-Sent Events)
// @Description  Vendors receive events for their own shops, admins for every shop. Browsers may pass the token as ?access_token=.
// @Tags         events
// @Produce      text/event-stream
// @Security     BearerAuth
// @Success      200
// @Router       /events/bills [get]
func (h *EventsHandler) Bills(c *gin.Context) {
	p := principal(c)
	ctx := c.Request.Context()

	var allowed map[string]bool
	if p.Role == model.RoleVendor {
		ids, err := h.shops.ListIDsByVendor(ctx, p.ID)
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, apierror.New("Failed to resolve shops"))
			return
		}
		allowed = shopSet(ids)
	}

	events, err := h.subscribe(ctx)
	if err != nil {
		log.Error().Err(err).Msg("events: subscribe failed")
		c.JSON(http.StatusServiceUnavailable, apierror.New("Live updates unavailable"))
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("ready", gin.H{"role": p.Role})
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			if allowed == nil || allowed[ev.ShopID] {
				c.SSEvent(realtime.EventNewBill, ev)
			}
			return true
		case t := <-ticker.C:
			c.SSEvent("ping", t.Unix())
			return true
		}
	})
}

func shopSet(ids []uuid.UUID) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id.String()] = true
	}
	return set
}
