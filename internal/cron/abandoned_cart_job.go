package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mitaxdev/litescripts/internal/cart"
	"github.com/mitaxdev/litescripts/pkg/logger"
)

const cartAbandonDays = 7

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AbandonedCartJobParams configure the stale cart sweeper.
type AbandonedCartJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Repository cart.Repository
	IdleDays   int
}

// NewAbandonedCartJob builds the job that retires active carts nobody touched
// for the configured number of days. Retired carts keep their items; a buyer
// who returns simply starts a fresh active cart.
func NewAbandonedCartJob(params AbandonedCartJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	idleDays := params.IdleDays
	if idleDays <= 0 {
		idleDays = cartAbandonDays
	}
	return &abandonedCartJob{
		logg:     params.Logger,
		db:       params.DB,
		repo:     params.Repository,
		idleDays: idleDays,
		now:      time.Now,
	}, nil
}

type abandonedCartJob struct {
	logg     *logger.Logger
	db       txRunner
	repo     cart.Repository
	idleDays int
	now      func() time.Time
}

func (j *abandonedCartJob) Name() string { return "abandoned-cart-sweep" }

func (j *abandonedCartJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.idleDays) * 24 * time.Hour)
	var swept int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.repo.WithTx(tx).MarkAbandonedBefore(ctx, cutoff)
		if err != nil {
			return err
		}
		swept = rows
		return nil
	})
	if err != nil {
		return fmt.Errorf("abandoned cart sweep: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":    cutoff,
		"idle_days": j.idleDays,
		"carts":     swept,
	})
	j.logg.Info(logCtx, "abandoned cart sweep complete")
	return nil
}
