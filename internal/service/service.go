package service

import (
	"context"
	"fmt"

	"pcsense/buylinks/internal/domain"
	"pcsense/buylinks/internal/links"
	"pcsense/buylinks/internal/repository"
	"pcsense/buylinks/internal/state"

	"golang.org/x/sync/errgroup"

	log "github.com/sirupsen/logrus"
)

type Service struct {
	catalogRepository repository.CatalogRepository
	linkRepository    repository.LinkRepository
	stateManager      state.StateManager
	marketplace       links.Marketplace
	multiStore        bool
	namePreview       int
}

// NewService wires the enrichment pass. linkRepository and stateManager are
// optional and may be nil.
func NewService(
	catalogRepository repository.CatalogRepository,
	linkRepository repository.LinkRepository,
	stateManager state.StateManager,
	marketplace links.Marketplace,
	multiStore bool,
	namePreview int,
) *Service {
	return &Service{
		catalogRepository: catalogRepository,
		linkRepository:    linkRepository,
		stateManager:      stateManager,
		marketplace:       marketplace,
		multiStore:        multiStore,
		namePreview:       namePreview,
	}
}

// Run loads the catalog, enriches it and writes it back. Nothing is written
// unless the whole pass succeeds.
func (s *Service) Run(ctx context.Context) (*domain.EnrichmentResult, error) {
	catalog, err := s.catalogRepository.Load(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.Enrich(catalog)
	if err != nil {
		return nil, err
	}

	if err := s.catalogRepository.Save(ctx, catalog); err != nil {
		return nil, err
	}

	log.Infof("✅ Successfully added %d Amazon buy links!", result.Added)
	log.Infof("📦 Total products in database: %d", result.Total)
	if s.multiStore {
		log.Infof("🛒 Added multi-store links to %d products", result.ShopLinksAdded)
	}

	if err := s.recordRun(ctx, result); err != nil {
		return result, err
	}

	return result, nil
}

// Enrich adds a buy link to every record of the known categories that does
// not have one yet. The catalog is modified in place.
func (s *Service) Enrich(catalog *domain.Catalog) (*domain.EnrichmentResult, error) {
	result := &domain.EnrichmentResult{
		Categories: make([]domain.CategoryResult, 0, len(domain.CategoryKeys)),
		Links:      make([]domain.AddedLink, 0),
	}

	for _, categoryKey := range domain.CategoryKeys {
		records, ok, err := catalog.Records(categoryKey)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		label := categoryKey.GetCategoryLabel()
		categoryResult := domain.CategoryResult{
			Key:   categoryKey,
			Label: label,
			Total: len(records),
		}

		for i, record := range records {
			added, err := s.enrichRecord(categoryKey, label, record, result)
			if err != nil {
				return nil, fmt.Errorf("failed to enrich %s[%d]: %w", categoryKey, i, err)
			}
			if added {
				categoryResult.Added++
			}
		}

		if err := catalog.SetRecords(categoryKey, records); err != nil {
			return nil, fmt.Errorf("failed to store category %s: %w", categoryKey, err)
		}

		result.Added += categoryResult.Added
		result.Total += categoryResult.Total
		result.Categories = append(result.Categories, categoryResult)
	}

	return result, nil
}

func (s *Service) enrichRecord(categoryKey domain.CategoryKey, label string, record *domain.Record, result *domain.EnrichmentResult) (bool, error) {
	added := false

	if record.NeedsBuyLink() {
		name, err := record.Name()
		if err != nil {
			return false, err
		}

		link := s.marketplace.Link(name, label)
		if err := record.SetBuyLink(link); err != nil {
			return false, err
		}

		result.Links = append(result.Links, domain.AddedLink{
			Category: categoryKey,
			Name:     name,
			Link:     link,
		})
		added = true

		log.Infof("Added link for %s: %s...", categoryKey, truncate(name, s.namePreview))
	}

	if s.multiStore && !record.Truthy(domain.FieldShopLinks) {
		name, err := record.Name()
		if err != nil {
			return false, err
		}

		shopLinks, err := links.ShopLinks(name, label)
		if err != nil {
			return false, err
		}
		if err := record.Set(domain.FieldShopLinks, shopLinks); err != nil {
			return false, err
		}

		result.ShopLinksAdded++
		if result.ShopLinksAdded%100 == 0 {
			log.Infof("Processed %d products...", result.ShopLinksAdded)
		}
	}

	return added, nil
}

// recordRun hands the result to the optional sinks once the catalog is on disk.
func (s *Service) recordRun(ctx context.Context, result *domain.EnrichmentResult) error {
	g, ctx := errgroup.WithContext(ctx)

	if s.linkRepository != nil {
		g.Go(func() error {
			if err := s.linkRepository.SaveLinks(ctx, result.Links); err != nil {
				log.Errorf("❌ Failed to save buy link audit: %v", err)
				return err
			}
			log.Infof("🗄️ Recorded %d buy links in the audit table", len(result.Links))
			return nil
		})
	}

	if s.stateManager != nil {
		g.Go(func() error {
			for _, category := range result.Categories {
				previous, err := s.stateManager.GetLastAdded(ctx, category.Key)
				if err != nil {
					return err
				}
				log.Debugf("🔄 %s: %d links added (previous run: %d)", category.Key, category.Added, previous)
			}

			if err := s.stateManager.SaveRunSummary(ctx, result); err != nil {
				log.Errorf("❌ Failed to save run summary: %v", err)
				return err
			}
			return nil
		})
	}

	return g.Wait()
}

// truncate keeps the first n characters of s.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
