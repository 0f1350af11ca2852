package usecase

import (
	"context"

	"SectorPulse/pkg/queue"
)

const RefreshJobType = "pipeline.run"

// RefreshPayload is the queued request for an on-demand pipeline run.
type RefreshPayload struct {
	Ingest bool `json:"ingest"`
}

// RefreshJob executes queued pipeline runs. Queueing keeps concurrent
// refresh requests from piling up into parallel warehouse scans.
type RefreshJob struct {
	runner *PipelineRunner
}

func NewRefreshJob(runner *PipelineRunner) *RefreshJob {
	return &RefreshJob{runner: runner}
}

func (j *RefreshJob) Name() string { return "pipeline-refresh" }
func (j *RefreshJob) Type() string { return RefreshJobType }

func (j *RefreshJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[RefreshPayload](payload)
	if err != nil {
		return err
	}
	_, err = j.runner.Run(ctx, p.Ingest)
	return err
}

var _ queue.Job = (*RefreshJob)(nil)
