package service

import (
	"time"

	"github.com/apexfin/cardcycle/internal/cycle"
	"github.com/apexfin/cardcycle/internal/domain"
	"github.com/apexfin/cardcycle/internal/infra/locks"
	"github.com/apexfin/cardcycle/internal/infra/observability"
	"github.com/apexfin/cardcycle/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service/cycles")

// CycleService owns a card's derived billing-cycle state: it coordinates
// open-date correction, derivation, and the delete-and-recreate swap of the
// persisted cycle rows, serialized per card.
type CycleService struct {
	store   port.Store
	cache   port.Cache[[]domain.BillingCycle]
	locks   *locks.Keyed
	params  cycle.Params
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewCycleService creates the cycle service with all dependencies injected.
func NewCycleService(
	store port.Store,
	cache port.Cache[[]domain.BillingCycle],
	params cycle.Params,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *CycleService {
	return &CycleService{
		store:   store,
		cache:   cache,
		locks:   locks.NewKeyed(),
		params:  params,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}
