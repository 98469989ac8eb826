package crawl_test

import "context"

// funcJob adapts plain functions to crawl.Job.
type funcJob struct {
	run    func(ctx context.Context)
	cancel func()
}

func (j *funcJob) Run(ctx context.Context) {
	if j.run != nil {
		j.run(ctx)
	}
}

func (j *funcJob) Cancel() {
	if j.cancel != nil {
		j.cancel()
	}
}
