package classify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/metrics"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/model"
)

// ClassificationWriter persists a video's classification block.
// Satisfied by repository.VideoRepo.
type ClassificationWriter interface {
	SaveClassification(ctx context.Context, v *model.Video) error
}

// AIClassifier is the escalation boundary. Implementations must be
// safe for repeated calls with identical input (the orchestrator does
// not deduplicate).
type AIClassifier interface {
	ClassifyCollab(ctx context.Context, title, description string) (model.Classification, error)
}

// RunStats summarizes one classification run.
type RunStats struct {
	TotalProcessed int      `json:"total_processed"`
	RuleClassified int      `json:"rule_classified"`
	GPTClassified  int      `json:"gpt_classified"`
	CollabsFound   int      `json:"collabs_found"`
	NonCollabs     int      `json:"non_collabs"`
	Errors         []string `json:"errors,omitempty"`
}

// Orchestrator runs the two-pass classification flow: a cheap rule
// pass over every video, then AI escalation for the ambiguous
// positives only.
type Orchestrator struct {
	engine    *Engine
	store     ClassificationWriter
	ai        AIClassifier // nil when the AI classifier is not configured
	threshold float64
}

func NewOrchestrator(engine *Engine, store ClassificationWriter, ai AIClassifier, threshold float64) *Orchestrator {
	return &Orchestrator{
		engine:    engine,
		store:     store,
		ai:        ai,
		threshold: threshold,
	}
}

// Run classifies every video in the batch. Individual persistence or
// AI failures are collected in the returned stats rather than aborting
// the run; only context cancellation stops it early. Every video ends
// the run with a persisted classification attempt, never an
// unclassified skip.
func (o *Orchestrator) Run(ctx context.Context, videos []*model.Video) (*RunStats, error) {
	stats := &RunStats{}
	var escalate []escalation

	log.Info().Int("videos", len(videos)).Msg("classification run started")

	for _, v := range videos {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.TotalProcessed++

		result := o.engine.Classify(v.Title, v.Description)
		switch {
		case result == nil:
			// No trigger keyword anywhere. Confident negative.
			if o.persist(ctx, v, model.Classification{Confidence: ConfidenceNegative}, model.MethodRule, stats) {
				stats.RuleClassified++
				stats.NonCollabs++
			}
		case result.Confidence >= o.threshold:
			if o.persist(ctx, v, *result, model.MethodRule, stats) {
				stats.RuleClassified++
				o.countOutcome(result.IsCollab, stats)
			}
		case result.IsCollab:
			escalate = append(escalate, escalation{video: v, rule: *result})
		default:
			// Below threshold and negative. Treated as a confident
			// negative, same as no trigger at all.
			if o.persist(ctx, v, model.Classification{Confidence: ConfidenceNegative}, model.MethodRule, stats) {
				stats.RuleClassified++
				stats.NonCollabs++
			}
		}
	}

	if len(escalate) > 0 {
		o.runEscalations(ctx, escalate, stats)
	}

	log.Info().
		Int("total", stats.TotalProcessed).
		Int("rule", stats.RuleClassified).
		Int("gpt", stats.GPTClassified).
		Int("collabs", stats.CollabsFound).
		Int("errors", len(stats.Errors)).
		Msg("classification run finished")

	return stats, nil
}

type escalation struct {
	video *model.Video
	rule  model.Classification
}

// runEscalations resolves the ambiguous-positive queue. Each AI
// failure falls back to the queued rule result at fallback confidence;
// when no AI classifier is configured the whole queue takes the
// low-confidence rule path.
func (o *Orchestrator) runEscalations(ctx context.Context, queue []escalation, stats *RunStats) {
	if o.ai == nil {
		log.Warn().Int("queued", len(queue)).Msg("ai classifier not configured, keeping low-confidence rule results")
		for _, e := range queue {
			c := e.rule
			c.Confidence = ConfidenceFallback
			if o.persist(ctx, e.video, c, model.MethodRuleLowConf, stats) {
				stats.RuleClassified++
				o.countOutcome(c.IsCollab, stats)
			}
		}
		return
	}

	log.Info().Int("queued", len(queue)).Msg("escalating ambiguous videos to ai classifier")

	for _, e := range queue {
		if ctx.Err() != nil {
			return
		}
		result, err := o.ai.ClassifyCollab(ctx, e.video.Title, e.video.Description)
		if err != nil {
			log.Warn().Err(err).Str("video_id", e.video.VideoID).Msg("ai classification failed, applying rule fallback")
			stats.Errors = append(stats.Errors, fmt.Sprintf("%s: ai classify: %v", e.video.VideoID, err))
			c := e.rule
			c.Confidence = ConfidenceFallback
			if o.persist(ctx, e.video, c, model.MethodRuleFallback, stats) {
				o.countOutcome(c.IsCollab, stats)
			}
			continue
		}
		if o.persist(ctx, e.video, result, model.MethodGPT, stats) {
			stats.GPTClassified++
			o.countOutcome(result.IsCollab, stats)
		}
	}
}

func (o *Orchestrator) persist(ctx context.Context, v *model.Video, c model.Classification, m model.Method, stats *RunStats) bool {
	v.SetClassification(c, m)
	if err := o.store.SaveClassification(ctx, v); err != nil {
		stats.Errors = append(stats.Errors, fmt.Sprintf("%s: save: %v", v.VideoID, err))
		return false
	}
	metrics.IncClassification(string(m))
	return true
}

func (o *Orchestrator) countOutcome(isCollab bool, stats *RunStats) {
	if isCollab {
		stats.CollabsFound++
	} else {
		stats.NonCollabs++
	}
}
