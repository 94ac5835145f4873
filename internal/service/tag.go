package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/couplemap/couplemap/internal/domain"
	"github.com/couplemap/couplemap/internal/repo"
)

// DefaultSuggestionLimit caps Suggestions when the caller passes no limit.
const DefaultSuggestionLimit = 20

// TagService derives tag suggestions from the tags already used on a couple's
// places. Tags have no table of their own; they live on each place.
type TagService struct {
	places repo.PlaceRepo
}

// NewTagService constructs a TagService backed by the provided PlaceRepo.
func NewTagService(places repo.PlaceRepo) *TagService {
	return &TagService{places: places}
}

// Suggestions returns the couple's distinct tags, most used first, ties broken
// alphabetically. A non-empty prefix keeps only tags that start with it once
// both are normalized, so "ca" and "#ca" match "#cafe" alike. Matching is
// case-insensitive. limit <= 0 means DefaultSuggestionLimit.
// Always returns a non-nil slice.
func (s *TagService) Suggestions(ctx context.Context, coupleID uuid.UUID, prefix string, limit int) ([]domain.TagCount, error) {
	places, err := s.places.List(ctx, coupleID)
	if err != nil {
		return nil, fmt.Errorf("service.TagService.Suggestions: %w", err)
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	want := strings.ToLower(domain.NormalizeTag(prefix))

	counts := map[string]int{}
	for _, p := range places {
		for _, tag := range p.Tags {
			if want != "" && !strings.HasPrefix(strings.ToLower(tag), want) {
				continue
			}
			counts[tag]++
		}
	}

	out := make([]domain.TagCount, 0, len(counts))
	for tag, n := range counts {
		out = append(out, domain.TagCount{Tag: tag, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Tag < out[j].Tag
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
