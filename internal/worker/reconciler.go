package worker

import (
	"context"
	"time"

	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/store"
	"github.com/FarrukhAbbasi021/Candyapp-Backend/internal/util"

	"go.uber.org/zap"
)

// Reconciler periodically checks the ledger invariant: for every product,
// stock_qty must equal the sum of its inventory event deltas. Drift means a
// stock write bypassed the ledger and needs operator attention.
type Reconciler struct {
	store    *store.Store
	interval time.Duration
	logger   *zap.Logger
	done     chan struct{}
}

// NewReconciler creates a new ledger reconciler.
func NewReconciler(st *store.Store, interval time.Duration) *Reconciler {
	return &Reconciler{
		store:    st,
		interval: interval,
		logger:   util.GetLogger(),
		done:     make(chan struct{}),
	}
}

// Start runs the reconciliation loop until the context is cancelled.
func (r *Reconciler) Start(ctx context.Context) error {
	r.logger.Info("Starting ledger reconciler",
		zap.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.done)

	// One pass at startup so drift introduced while down is seen early.
	r.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Ledger reconciler stopping")
			return ctx.Err()
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

// Wait blocks until the loop has exited.
func (r *Reconciler) Wait() {
	<-r.done
}

func (r *Reconciler) runOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	drifts, err := r.store.ReconcileStock(ctx)
	if err != nil {
		r.logger.Error("Ledger reconciliation failed", zap.Error(err))
		return
	}

	util.LedgerDriftProducts.Set(float64(len(drifts)))

	for _, d := range drifts {
		r.logger.Error("Ledger drift detected",
			zap.String("product_id", d.ProductID),
			zap.Int("stock_qty", d.StockQty),
			zap.Int("ledger_qty", d.LedgerQty))
	}
}
