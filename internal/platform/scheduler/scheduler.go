package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// TokenRotator は定期実行対象となるトークン一斉更新処理です。
type TokenRotator interface {
	RotateAll(ctx context.Context) (int, error)
}

// Scheduler はチェックイン用トークンの定期ローテーションを駆動します。
// 前回の実行が終わっていない場合、その回はスキップされます。
type Scheduler struct {
	cron    *cron.Cron
	rotator TokenRotator
}

// New は指定された間隔でローテーションを実行するスケジューラを構築します。
func New(rotator TokenRotator, interval time.Duration) (*Scheduler, error) {
	if rotator == nil {
		return nil, fmt.Errorf("scheduler: rotator is required")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("scheduler: interval must be positive, got %v", interval)
	}

	logger := cron.PrintfLogger(log.Default())
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(logger)))

	s := &Scheduler{cron: c, rotator: rotator}

	if _, err := c.AddFunc(fmt.Sprintf("@every %s", interval), s.rotateOnce); err != nil {
		return nil, fmt.Errorf("scheduler: register rotation job: %w", err)
	}

	return s, nil
}

// Start はバックグラウンドでの定期実行を開始します。
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop は定期実行を停止し、進行中のジョブの完了を待ちます。
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) rotateOnce() {
	count, err := s.rotator.RotateAll(context.Background())
	if err != nil {
		log.Printf("token rotation failed: %v", err)
		return
	}
	log.Printf("token rotation completed: %d employees updated", count)
}
