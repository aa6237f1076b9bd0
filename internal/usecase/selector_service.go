package usecase

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/carcompare/backend/internal/domain"
	"golang.org/x/time/rate"
)

// SelectorService backs the make/model dropdown flow. The make and model
// listing endpoints are unavailable on restricted API plans, so every call
// degrades to an empty list.
type SelectorService struct {
	catalog     domain.CarsCatalog
	softFailLog rate.Sometimes
}

// NewSelectorService creates a selector over catalog
func NewSelectorService(catalog domain.CarsCatalog) *SelectorService {
	return &SelectorService{
		catalog:     catalog,
		softFailLog: rate.Sometimes{First: 1, Interval: time.Minute},
	}
}

// Makes returns every make, or an empty list when the catalog refuses
func (s *SelectorService) Makes(ctx context.Context) []string {
	makes, err := s.catalog.ListMakes(ctx)
	if err != nil {
		s.logFailure("makes", err)
		return []string{}
	}
	if makes == nil {
		return []string{}
	}
	return makes
}

// Models returns the models for makeName. An empty make yields an empty list without a request.
func (s *SelectorService) Models(ctx context.Context, makeName string) []string {
	makeName = strings.TrimSpace(makeName)
	if makeName == "" {
		return []string{}
	}

	models, err := s.catalog.ListModels(ctx, makeName)
	if err != nil {
		s.logFailure("models of "+makeName, err)
		return []string{}
	}
	if models == nil {
		return []string{}
	}
	return models
}

// Selection joins a complete make/model choice into a comparable name; an incomplete choice is ""
func Selection(makeName, model string) string {
	makeName = strings.TrimSpace(makeName)
	model = strings.TrimSpace(model)
	if makeName == "" || model == "" {
		return ""
	}
	return makeName + " " + model
}

func (s *SelectorService) logFailure(what string, err error) {
	s.softFailLog.Do(func() {
		log.Printf("[SELECTOR] failed to list %s: %v", what, err)
	})
}
