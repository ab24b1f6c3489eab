package handler

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/middleware"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/repository"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/service"
)

// ReportHandler serves the aggregated collaboration reports.
type ReportHandler struct {
	aggs      *repository.AggregateRepo
	videos    *repository.VideoRepo
	outputDir string
}

func NewReportHandler(aggs *repository.AggregateRepo, videos *repository.VideoRepo, outputDir string) *ReportHandler {
	return &ReportHandler{aggs: aggs, videos: videos, outputDir: outputDir}
}

// Partners handles GET /api/partners: raw partner aggregates, most
// viewed first.
func (h *ReportHandler) Partners(c fiber.Ctx) error {
	aggs, err := h.aggs.FindAll(c.Context())
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch partner aggregates")
	}
	return c.JSON(aggs)
}

// Rankings handles GET /api/rankings?limit=20.
func (h *ReportHandler) Rankings(c fiber.Ctx) error {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 200 {
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_LIMIT", "limit must be 1-200")
		}
		limit = n
	}

	aggs, err := h.aggs.FindAll(c.Context())
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch partner aggregates")
	}
	return c.JSON(service.Rankings(aggs, limit))
}

// Categories handles GET /api/categories.
func (h *ReportHandler) Categories(c fiber.Ctx) error {
	aggs, err := h.aggs.FindAll(c.Context())
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch partner aggregates")
	}
	return c.JSON(service.CategorySummaries(aggs))
}

// Regions handles GET /api/regions.
func (h *ReportHandler) Regions(c fiber.Ctx) error {
	aggs, err := h.aggs.FindAll(c.Context())
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch partner aggregates")
	}
	return c.JSON(service.RegionSummaries(aggs))
}

// Status handles GET /api/status: store counts by classification
// method.
func (h *ReportHandler) Status(c fiber.Ctx) error {
	total, err := h.videos.Count(c.Context())
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch video counts")
	}
	byMethod, err := h.videos.CountByMethod(c.Context())
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch video counts")
	}

	return c.JSON(fiber.Map{
		"videos_total": total,
		"by_method":    byMethod,
	})
}

// LatestExport handles GET /api/export/latest: serves the newest CSV
// artifact from the output directory.
func (h *ReportHandler) LatestExport(c fiber.Ctx) error {
	entries, err := os.ReadDir(h.outputDir)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read output directory")
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".csv") {
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "No export file available yet")
	}

	// Filenames carry YYYYMMDD, so lexicographic order is date order.
	sort.Strings(files)
	latest := files[len(files)-1]

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", "attachment; filename="+latest)
	return c.SendFile(filepath.Join(h.outputDir, latest))
}
