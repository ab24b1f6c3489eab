package classify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/config"
	"github.com/SangwonJi/PUBG-YoutubeAnalyzer/internal/model"
)

// PartnerWriter updates a single video's partner name. Satisfied by
// repository.VideoRepo.
type PartnerWriter interface {
	UpdatePartner(ctx context.Context, videoID, partner string) error
}

// NormalizeStats summarizes one normalization pass.
type NormalizeStats struct {
	NamesMerged   int `json:"names_merged"`
	VideosUpdated int `json:"videos_updated"`
}

// NormalizePartners folds partner-name variants across a batch into
// their canonical forms using the alias table. Names already canonical
// are left alone, so a second pass over the same batch is a no-op.
// Videos are updated both in memory and through store.
func NormalizePartners(ctx context.Context, videos []*model.Video, rules *config.Rules, store PartnerWriter) (NormalizeStats, error) {
	stats := NormalizeStats{}

	// Distinct partner names, batch order preserved for deterministic
	// logging.
	seen := make(map[string]bool)
	var names []string
	for _, v := range videos {
		if !v.IsCollab || v.CollabPartner == nil || *v.CollabPartner == "" {
			continue
		}
		if !seen[*v.CollabPartner] {
			seen[*v.CollabPartner] = true
			names = append(names, *v.CollabPartner)
		}
	}

	renames := make(map[string]string)
	for _, name := range names {
		canonical, ok := rules.CanonicalPartner(name)
		if ok && canonical != name {
			renames[name] = canonical
		}
	}
	stats.NamesMerged = len(renames)

	if len(renames) == 0 {
		return stats, nil
	}

	for old, canonical := range renames {
		log.Info().Str("from", old).Str("to", canonical).Msg("merging partner name")
	}

	for _, v := range videos {
		if v.CollabPartner == nil {
			continue
		}
		canonical, ok := renames[*v.CollabPartner]
		if !ok {
			continue
		}
		if err := store.UpdatePartner(ctx, v.VideoID, canonical); err != nil {
			return stats, fmt.Errorf("update partner for %s: %w", v.VideoID, err)
		}
		v.CollabPartner = &canonical
		stats.VideosUpdated++
	}

	return stats, nil
}
