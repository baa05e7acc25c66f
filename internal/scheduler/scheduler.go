package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/LJTian/BlogHub/internal/logging"
	"github.com/LJTian/BlogHub/internal/processor"
)

// Syncer 由 ingest.Coordinator 实现
type Syncer interface {
	SyncFromFeed(ctx context.Context) []processor.Post
}

type Scheduler struct {
	cron   *cron.Cron
	syncer Syncer
	logger logging.Logger

	// StartupDelay 启动后首轮同步的延迟，0 表示不做首轮同步
	StartupDelay time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

func New(spec string, syncer Syncer, logger logging.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	c := cron.New()
	ctx, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		cron:   c,
		syncer: syncer,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}

	if _, err := c.AddFunc(spec, s.runOnce); err != nil {
		cancel()
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	if s.StartupDelay > 0 {
		time.AfterFunc(s.StartupDelay, s.runOnce)
	}
}

// Stop 停止调度并等待正在执行的同步结束
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}

// RunOnce 对外暴露的单次执行入口，方便手动触发同步
func (s *Scheduler) RunOnce() {
	s.runOnce()
}

func (s *Scheduler) runOnce() {
	if s.ctx.Err() != nil {
		return
	}

	start := time.Now()
	s.logger.Info("start feed sync job")
	posts := s.syncer.SyncFromFeed(s.ctx)
	s.logger.WithFields(logging.Fields{
		"count":    len(posts),
		"duration": time.Since(start).String(),
	}).Info("feed sync job done")
}
