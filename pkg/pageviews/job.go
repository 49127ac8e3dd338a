package pageviews

import (
	"context"
	"time"

	"github.com/sdkexamples/sdkexamples/pkg/common"
)

type CollectJob struct {
	collector *Collector
	interval  time.Duration
	trigger   chan struct{}
}

var _ common.PeriodicJob = (*CollectJob)(nil)

func NewCollectJob(collector *Collector, interval time.Duration) *CollectJob {
	return &CollectJob{
		collector: collector,
		interval:  interval,
		trigger:   make(chan struct{}, 1),
	}
}

func (j *CollectJob) Name() string {
	return "collect_page_views_job"
}

func (j *CollectJob) NewParams() any {
	return nil
}

func (j *CollectJob) Interval() time.Duration {
	return j.interval
}

func (j *CollectJob) Jitter() time.Duration {
	return max(j.interval/10, 1)
}

func (j *CollectJob) Timeout() time.Duration {
	return 5 * time.Minute
}

func (j *CollectJob) Trigger() <-chan struct{} {
	return j.trigger
}

// Force schedules an immediate run unless one is already pending.
func (j *CollectJob) Force() {
	select {
	case j.trigger <- struct{}{}:
	default:
	}
}

func (j *CollectJob) RunOnce(ctx context.Context, _ any) error {
	_, err := j.collector.Collect(ctx)
	return err
}
