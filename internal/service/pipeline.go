package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/classify"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/config"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/repository"
)

// Pipeline chains the stages of a full analysis run: fetch, classify,
// normalize, fetch comments for collabs, aggregate, export, upload.
type Pipeline struct {
	fetch        *FetchService
	orchestrator *classify.Orchestrator
	videos       *repository.VideoRepo
	rules        *config.Rules
	aggregate    *AggregateService
	export       *ExportService
	upload       *UploadService // nil when artifact upload is not configured
	days         int
}

func NewPipeline(
	fetch *FetchService,
	orchestrator *classify.Orchestrator,
	videos *repository.VideoRepo,
	rules *config.Rules,
	aggregate *AggregateService,
	export *ExportService,
	upload *UploadService,
	days int,
) *Pipeline {
	return &Pipeline{
		fetch:        fetch,
		orchestrator: orchestrator,
		videos:       videos,
		rules:        rules,
		aggregate:    aggregate,
		export:       export,
		upload:       upload,
		days:         days,
	}
}

// PipelineReport collects per-stage results of one full run.
type PipelineReport struct {
	Fetch     *FetchStats             `json:"fetch,omitempty"`
	Classify  *classify.RunStats      `json:"classify,omitempty"`
	Normalize classify.NormalizeStats `json:"normalize"`
	Comments  *FetchStats             `json:"comments,omitempty"`
	Aggregate *AggregateStats         `json:"aggregate,omitempty"`
	Artifacts []string                `json:"artifacts,omitempty"`
	Uploaded  []string                `json:"uploaded,omitempty"`
	Duration  time.Duration           `json:"duration"`
}

// Run executes the full pipeline. Any stage error aborts the run; the
// report carries whatever completed before the failure.
func (p *Pipeline) Run(ctx context.Context) (*PipelineReport, error) {
	started := time.Now()
	report := &PipelineReport{}
	defer func() { report.Duration = time.Since(started) }()

	log.Info().Int("days", p.days).Msg("pipeline run started")

	var err error
	if report.Fetch, err = p.fetch.FetchVideos(ctx, p.days, true); err != nil {
		return report, fmt.Errorf("fetch stage: %w", err)
	}

	if report.Classify, err = p.ClassifyUnclassified(ctx); err != nil {
		return report, fmt.Errorf("classify stage: %w", err)
	}

	if report.Normalize, err = p.NormalizePartners(ctx); err != nil {
		return report, fmt.Errorf("normalize stage: %w", err)
	}

	if report.Comments, err = p.fetch.FetchComments(ctx, true, 0); err != nil {
		return report, fmt.Errorf("comments stage: %w", err)
	}

	if report.Aggregate, err = p.aggregate.Run(ctx, p.days); err != nil {
		return report, fmt.Errorf("aggregate stage: %w", err)
	}

	partnersPath, err := p.export.ExportPartnersCSV(ctx, p.export.DefaultPath("collab_report", "csv"))
	if err != nil {
		return report, fmt.Errorf("export stage: %w", err)
	}
	report.Artifacts = append(report.Artifacts, partnersPath)

	webPath, err := p.export.ExportWebData(ctx, p.export.DefaultPath("web_data", "json"))
	if err != nil {
		return report, fmt.Errorf("export stage: %w", err)
	}
	report.Artifacts = append(report.Artifacts, webPath)

	if p.upload != nil {
		if report.Uploaded, err = p.upload.UploadFiles(ctx, report.Artifacts); err != nil {
			return report, fmt.Errorf("upload stage: %w", err)
		}
	}

	log.Info().Dur("duration", time.Since(started)).Msg("pipeline run finished")
	return report, nil
}

// ClassifyUnclassified runs the orchestrator over every video that has
// never been classified.
func (p *Pipeline) ClassifyUnclassified(ctx context.Context) (*classify.RunStats, error) {
	videos, err := p.videos.FindUnclassified(ctx)
	if err != nil {
		return nil, fmt.Errorf("load unclassified: %w", err)
	}
	return p.orchestrator.Run(ctx, videos)
}

// NormalizePartners folds partner-name variants across all stored
// collab videos.
func (p *Pipeline) NormalizePartners(ctx context.Context) (classify.NormalizeStats, error) {
	videos, err := p.videos.FindCollabsSince(ctx, time.Time{})
	if err != nil {
		return classify.NormalizeStats{}, fmt.Errorf("load collabs: %w", err)
	}
	return classify.NormalizePartners(ctx, videos, p.rules, p.videos)
}
