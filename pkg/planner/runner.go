package planner

import (
	"context"

	"fitai-planner-be/pkg/extract"
)

// stageRunner paces, invokes and extracts one stage.
type stageRunner struct {
	invoker   *Invoker
	extractor *extract.Extractor
	opts      options
}

func (r stageRunner) run(ctx context.Context, pacer Pacer, session Session, req StageRequest) (StageResult, Session, error) {
	if err := pacer.Wait(ctx); err != nil {
		return StageResult{Role: req.Role()}, session, err
	}
	defer pacer.Done()

	started := r.opts.now()
	r.opts.logger.Info("PLANNER", "Stage started", map[string]interface{}{
		"stage":   string(req.Role()),
		"session": session.ID,
		"user_id": session.UserId,
	})

	inv, err := r.invoker.Invoke(ctx, session, req)
	if err != nil {
		return StageResult{Role: req.Role(), Attempts: inv.Attempts, StartedAt: started, FinishedAt: r.opts.now()}, session, err
	}

	res := StageResult{
		Role:       req.Role(),
		Raw:        inv.Raw,
		Document:   r.extractor.Extract(inv.Raw, string(req.Role())),
		Attempts:   inv.Attempts,
		StartedAt:  started,
		FinishedAt: r.opts.now(),
	}

	r.opts.logger.Info("PLANNER", "Stage completed", map[string]interface{}{
		"stage":       string(req.Role()),
		"attempts":    res.Attempts,
		"duration_ms": res.FinishedAt.Sub(res.StartedAt).Milliseconds(),
	})
	return res, inv.Session, nil
}
