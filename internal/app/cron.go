package app

import (
	"context"

	"github.com/rollcall/core/internal/modules/backup"
	pkgcron "github.com/rollcall/core/internal/pkg/cron"
	"go.uber.org/zap"
)

// registerCronJobs registers scheduled background jobs and starts the
// scheduler.
func (a *App) registerCronJobs(ctx context.Context) error {
	backupSvc, err := backup.NewService(a.db, a.cfg, a.logger.Named("backup"))
	if err != nil {
		return err
	}

	if backupSvc.Enabled() {
		a.sched.Register(pkgcron.Job{
			Name:        "ledger_backup",
			Description: "export the attendance ledger to object storage",
			Interval:    a.cfg.Backup.Interval(),
			Fn:          backupSvc.Run,
		})
		a.logger.Info("ledger backup scheduled",
			zap.Duration("interval", a.cfg.Backup.Interval()))
	}

	go a.sched.Start(ctx)
	return nil
}
