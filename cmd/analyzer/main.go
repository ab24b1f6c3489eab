// Command analyzer runs the YouTube collaboration analysis pipeline:
// fetching channel uploads, classifying collaborations, aggregating
// partner metrics, and exporting reports. Each stage is a subcommand;
// "run" chains them all and "serve" exposes the reports over HTTP.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/classify"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/config"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/db"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/gpt"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/handler"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/metrics"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/middleware"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/repository"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/router"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/service"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/youtube"
)

const usageText = `Usage: analyzer <command> [flags]

Commands:
  fetch      fetch channel videos (and optionally comments)
  classify   classify unclassified videos
  normalize  fold partner-name variants to canonical forms
  aggregate  recompute per-partner metrics
  export     write CSV and web JSON reports
  upload     upload report artifacts to object storage
  sentiment  analyze comment sentiment for collab videos
  run        full pipeline: fetch, classify, normalize, aggregate, export
  serve      HTTP report API with scheduled pipeline runs
  status     print store counts by classification method
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}
	command := os.Args[1]
	args := os.Args[2:]

	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "analyzer")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	defer app.Close()

	if err := app.dispatch(ctx, command, args); err != nil {
		log.Fatal().Err(err).Str("command", command).Msg("command failed")
	}
}

// app holds the wired dependency graph shared by all subcommands.
type app struct {
	cfg   *config.Config
	rules *config.Rules
	pool  *pgxpool.Pool
	rdb   *redis.Client

	videos   *repository.VideoRepo
	comments *repository.CommentRepo
	aggs     *repository.AggregateRepo
	runs     *repository.RunRepo

	classifier *gpt.Classifier // nil when the AI classifier is unconfigured

	fetch     *service.FetchService
	aggregate *service.AggregateService
	export    *service.ExportService
	upload    *service.UploadService // nil when unconfigured
	pipeline  *service.Pipeline
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	rules, err := config.LoadRules(cfg.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.Bootstrap(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}
	metrics.Init(pool)

	a := &app{
		cfg:      cfg,
		rules:    rules,
		pool:     pool,
		videos:   repository.NewVideoRepo(pool),
		comments: repository.NewCommentRepo(pool),
		aggs:     repository.NewAggregateRepo(pool),
		runs:     repository.NewRunRepo(pool),
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		a.rdb = redis.NewClient(opts)
		if err := a.rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis unavailable, falling back to database response cache")
			a.rdb = nil
		}
	}

	var ai classify.AIClassifier
	if cfg.OpenAI.Configured() {
		a.classifier = gpt.NewClassifier(cfg.OpenAI, a.responseCache())
		ai = a.classifier
	} else {
		log.Warn().Msg("OPENAI_API_KEY not set, running rule-only classification")
	}

	engine := classify.NewEngine(rules)
	orchestrator := classify.NewOrchestrator(engine, a.videos, ai, rules.GPTThreshold)

	ytClient := youtube.NewClient(cfg.YouTube)
	a.fetch = service.NewFetchService(ytClient, a.videos, a.comments, a.runs, cfg.YouTube)
	a.aggregate = service.NewAggregateService(a.videos, a.comments, a.aggs)
	a.export = service.NewExportService(a.videos, a.aggs, cfg.OutputDir)

	if cfg.S3.Configured() {
		a.upload, err = service.NewUploadService(cfg.S3)
		if err != nil {
			pool.Close()
			return nil, err
		}
	}

	a.pipeline = service.NewPipeline(a.fetch, orchestrator, a.videos, rules, a.aggregate, a.export, a.upload, 365)
	return a, nil
}

// responseCache picks the AI response cache backend: Redis when
// available, the gpt_cache table otherwise.
func (a *app) responseCache() gpt.ResponseCache {
	if a.rdb != nil {
		return gpt.NewRedisCache(a.rdb, 30*24*time.Hour)
	}
	return repository.NewGPTCacheRepo(a.pool, a.cfg.OpenAI.Model)
}

func (a *app) Close() {
	if a.rdb != nil {
		a.rdb.Close()
	}
	a.pool.Close()
}

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "fetch":
		return a.cmdFetch(ctx, args)
	case "classify":
		return a.cmdClassify(ctx)
	case "normalize":
		return a.cmdNormalize(ctx)
	case "aggregate":
		return a.cmdAggregate(ctx, args)
	case "export":
		return a.cmdExport(ctx, args)
	case "upload":
		return a.cmdUpload(ctx, args)
	case "sentiment":
		return a.cmdSentiment(ctx, args)
	case "run":
		return a.cmdRun(ctx)
	case "serve":
		return a.cmdServe(ctx, args)
	case "status":
		return a.cmdStatus(ctx)
	default:
		fmt.Fprint(os.Stderr, usageText)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) cmdFetch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	days := fs.Int("days", 365, "how many days of uploads to cover")
	full := fs.Bool("full", false, "ignore stored state and refetch the whole window")
	withComments := fs.Bool("comments", false, "also fetch comments")
	onlyCollab := fs.Bool("only-collab", false, "restrict comment fetch to collab videos")
	fs.Parse(args)

	stats, err := a.fetch.FetchVideos(ctx, *days, !*full)
	if err != nil {
		return err
	}
	if *withComments {
		commentStats, err := a.fetch.FetchComments(ctx, *onlyCollab, 0)
		if err != nil {
			return err
		}
		stats.CommentsFetched = commentStats.CommentsFetched
		stats.VideosProcessed = commentStats.VideosProcessed
		stats.Errors = append(stats.Errors, commentStats.Errors...)
	}
	return printJSON(stats)
}

func (a *app) cmdClassify(ctx context.Context) error {
	stats, err := a.pipeline.ClassifyUnclassified(ctx)
	if err != nil {
		return err
	}
	return printJSON(stats)
}

func (a *app) cmdNormalize(ctx context.Context) error {
	stats, err := a.pipeline.NormalizePartners(ctx)
	if err != nil {
		return err
	}
	return printJSON(stats)
}

func (a *app) cmdAggregate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("aggregate", flag.ExitOnError)
	days := fs.Int("days", 365, "date range to aggregate over")
	fs.Parse(args)

	stats, err := a.aggregate.Run(ctx, *days)
	if err != nil {
		return err
	}
	return printJSON(stats)
}

func (a *app) cmdExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	days := fs.Int("days", 365, "date range for the video report")
	allVideos := fs.Bool("all-videos", false, "include non-collab videos in the video report")
	fs.Parse(args)

	var artifacts []string

	path, err := a.export.ExportPartnersCSV(ctx, a.export.DefaultPath("collab_report", "csv"))
	if err != nil {
		return err
	}
	artifacts = append(artifacts, path)

	path, err = a.export.ExportVideosCSV(ctx, a.export.DefaultPath("collab_videos", "csv"), *days, !*allVideos)
	if err != nil {
		return err
	}
	artifacts = append(artifacts, path)

	path, err = a.export.ExportWebData(ctx, a.export.DefaultPath("web_data", "json"))
	if err != nil {
		return err
	}
	artifacts = append(artifacts, path)

	return printJSON(map[string][]string{"artifacts": artifacts})
}

func (a *app) cmdUpload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	fs.Parse(args)

	if a.upload == nil {
		return fmt.Errorf("object storage not configured, set S3_ENDPOINT, S3_ACCESS_KEY and S3_BUCKET")
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("usage: analyzer upload <file> [file...]")
	}

	keys, err := a.upload.UploadFiles(ctx, fs.Args())
	if err != nil {
		return err
	}
	return printJSON(map[string][]string{"uploaded": keys})
}

func (a *app) cmdSentiment(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sentiment", flag.ExitOnError)
	out := fs.String("out", a.export.DefaultPath("sentiment", "json"), "output path")
	fs.Parse(args)

	if a.classifier == nil {
		return fmt.Errorf("sentiment analysis needs OPENAI_API_KEY")
	}

	svc := service.NewSentimentService(a.classifier, a.videos, a.comments)
	stats, err := svc.Run(ctx, *out)
	if err != nil {
		return err
	}
	return printJSON(stats)
}

func (a *app) cmdRun(ctx context.Context) error {
	report, err := a.pipeline.Run(ctx)
	if err != nil {
		return err
	}
	return printJSON(report)
}

func (a *app) cmdServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	interval := fs.Duration("interval", 6*time.Hour, "scheduled pipeline interval (0 disables)")
	fs.Parse(args)

	fiberApp := fiber.New(fiber.Config{
		AppName:      "PUBG YouTube Analyzer",
		ServerHeader: "Analyzer",
	})

	h := &router.Handlers{
		Report: handler.NewReportHandler(a.aggs, a.videos, a.cfg.OutputDir),
		Health: handler.NewHealthHandler(a.pool, a.rdb),
	}
	router.Setup(fiberApp, h, a.cfg.CORSOrigins)

	if *interval > 0 {
		worker := service.NewPipelineWorker(a.pipeline, *interval)
		go worker.Start(ctx)
	}

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := fiberApp.Shutdown(); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	log.Info().Str("port", a.cfg.Port).Str("env", a.cfg.Environment).Msg("serving reports")
	return fiberApp.Listen(":" + a.cfg.Port)
}

func (a *app) cmdStatus(ctx context.Context) error {
	total, err := a.videos.Count(ctx)
	if err != nil {
		return err
	}
	byMethod, err := a.videos.CountByMethod(ctx)
	if err != nil {
		return err
	}
	commentCount, err := a.comments.Count(ctx)
	if err != nil {
		return err
	}

	return printJSON(map[string]any{
		"videos_total":   total,
		"by_method":      byMethod,
		"comments_total": commentCount,
	})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
