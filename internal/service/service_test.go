package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pcsense/buylinks/internal/domain"
	"pcsense/buylinks/internal/links"
	"pcsense/buylinks/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCatalogRepository struct {
	data  string
	saved string
	saves int
}

func (r *memoryCatalogRepository) Load(_ context.Context) (*domain.Catalog, error) {
	var catalog domain.Catalog
	if err := json.Unmarshal([]byte(r.data), &catalog); err != nil {
		return nil, err
	}
	return &catalog, nil
}

func (r *memoryCatalogRepository) Save(_ context.Context, catalog *domain.Catalog) error {
	data, err := json.Marshal(catalog)
	if err != nil {
		return err
	}
	r.saved = string(data)
	r.saves++
	return nil
}

type fakeLinkRepository struct {
	links []domain.AddedLink
	err   error
}

func (r *fakeLinkRepository) EnsureSchema(_ context.Context) error {
	return nil
}

func (r *fakeLinkRepository) SaveLinks(_ context.Context, links []domain.AddedLink) error {
	r.links = append(r.links, links...)
	return r.err
}

type fakeStateManager struct {
	summaries []*domain.EnrichmentResult
	lookups   int
}

func (s *fakeStateManager) SaveRunSummary(_ context.Context, result *domain.EnrichmentResult) error {
	s.summaries = append(s.summaries, result)
	return nil
}

func (s *fakeStateManager) GetLastAdded(_ context.Context, _ domain.CategoryKey) (int, error) {
	s.lookups++
	return 0, nil
}

func newTestService(repo repository.CatalogRepository) *Service {
	return NewService(repo, nil, nil, links.Amazon, false, 50)
}

func decodeCatalog(t *testing.T, data string) *domain.Catalog {
	t.Helper()
	var catalog domain.Catalog
	require.NoError(t, json.Unmarshal([]byte(data), &catalog))
	return &catalog
}

func TestEnrich_AddsMissingLink(t *testing.T) {
	catalog := decodeCatalog(t, `{"cpus":[{"name":"Intel i5-12400F / 6-core","category":"cpus"}]}`)

	result, err := newTestService(nil).Enrich(catalog)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 1, result.Total)

	records, _, err := catalog.Records(domain.CategoryKeyCPU)
	require.NoError(t, err)
	link, err := records[0].GetString(domain.FieldBuyLink)
	require.NoError(t, err)
	assert.Equal(t, "https://www.amazon.in/s?k=Intel+i5-12400F+6-core+processor", link)

	require.Len(t, result.Links, 1)
	assert.Equal(t, domain.AddedLink{
		Category: domain.CategoryKeyCPU,
		Name:     "Intel i5-12400F / 6-core",
		Link:     link,
	}, result.Links[0])
}

func TestEnrich_KeepsExistingLink(t *testing.T) {
	input := `{"gpus":[{"name":"RTX 4070","buyLink":"https://example.com/x"}]}`
	catalog := decodeCatalog(t, input)

	result, err := newTestService(nil).Enrich(catalog)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Added)
	assert.Equal(t, 1, result.Total)

	out, err := json.Marshal(catalog)
	require.NoError(t, err)
	assert.Equal(t, input, string(out))
}

func TestEnrich_FalsyLinkIsReplaced(t *testing.T) {
	for _, value := range []string{`""`, `null`, `false`, `0`} {
		t.Run(value, func(t *testing.T) {
			catalog := decodeCatalog(t, `{"ram":[{"buyLink":`+value+`,"name":"Corsair Vengeance 16GB"}]}`)

			result, err := newTestService(nil).Enrich(catalog)
			require.NoError(t, err)
			assert.Equal(t, 1, result.Added)

			out, err := json.Marshal(catalog)
			require.NoError(t, err)
			assert.Equal(t, `{"ram":[{"buyLink":"https://www.amazon.in/s?k=Corsair+Vengeance+16GB+RAM+memory","name":"Corsair Vengeance 16GB"}]}`, string(out))
		})
	}
}

func TestEnrich_EmptyCatalog(t *testing.T) {
	catalog := decodeCatalog(t, `{}`)

	result, err := newTestService(nil).Enrich(catalog)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Added)
	assert.Equal(t, 0, result.Total)
	assert.Empty(t, result.Categories)
}

func TestEnrich_IsIdempotent(t *testing.T) {
	input := `{
		"laptops":[{"name":"ASUS TUF F15","price":65990}],
		"cpus":[{"name":"Ryzen 5 5600X"},{"name":"i7/13700K","buyLink":"https://example.com/i7"}],
		"psu":[{"name":"Corsair RM750e","buyLink":""}]
	}`
	catalog := decodeCatalog(t, input)
	svc := newTestService(nil)

	first, err := svc.Enrich(catalog)
	require.NoError(t, err)
	assert.Equal(t, 3, first.Added)
	assert.Equal(t, 4, first.Total)

	afterFirst, err := json.Marshal(catalog)
	require.NoError(t, err)

	second, err := svc.Enrich(catalog)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Added)
	assert.Equal(t, 4, second.Total)

	afterSecond, err := json.Marshal(catalog)
	require.NoError(t, err)
	assert.Equal(t, string(afterFirst), string(afterSecond))
}

func TestEnrich_PreservesOtherFieldsAndCategories(t *testing.T) {
	catalog := decodeCatalog(t, `{
		"version":2,
		"monitors":[{"name":"LG 27GP850"}],
		"storage":[{"id":"ssd-1","name":"Samsung 980 Pro 1TB","specs":{"interface":"PCIe 4.0"},"price":8999.0}]
	}`)

	result, err := newTestService(nil).Enrich(catalog)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 1, result.Total)

	out, err := json.Marshal(catalog)
	require.NoError(t, err)
	assert.Equal(t,
		`{"version":2,"monitors":[{"name":"LG 27GP850"}],"storage":[{"id":"ssd-1","name":"Samsung 980 Pro 1TB","specs":{"interface":"PCIe 4.0"},"price":8999.0,"buyLink":"https://www.amazon.in/s?k=Samsung+980+Pro+1TB+SSD"}]}`,
		string(out))
}

func TestEnrich_CategoryOrderAndCounts(t *testing.T) {
	catalog := decodeCatalog(t, `{"case":[{"name":"NZXT H5"}],"laptops":[{"name":"A"},{"name":"B","buyLink":"x"}]}`)

	result, err := newTestService(nil).Enrich(catalog)
	require.NoError(t, err)

	require.Len(t, result.Categories, 2)
	assert.Equal(t, domain.CategoryResult{Key: domain.CategoryKeyLaptop, Label: "laptop", Added: 1, Total: 2}, result.Categories[0])
	assert.Equal(t, domain.CategoryResult{Key: domain.CategoryKeyCase, Label: "PC case", Added: 1, Total: 1}, result.Categories[1])
	assert.Equal(t, 2, result.Added)
	assert.Equal(t, 3, result.Total)
}

func TestEnrich_MissingNameFails(t *testing.T) {
	tests := map[string]string{
		"absent": `{"mobos":[{"model":"B650"}]}`,
		"null":   `{"cpus":[{"name":null}]}`,
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			catalog := decodeCatalog(t, input)

			_, err := newTestService(nil).Enrich(catalog)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrMissingField)
		})
	}
}

func TestRun_NullNameWritesNothing(t *testing.T) {
	repo := &memoryCatalogRepository{data: `{"cpus":[{"name":null}]}`}

	_, err := newTestService(repo).Run(context.Background())
	require.ErrorIs(t, err, domain.ErrMissingField)
	assert.Equal(t, 0, repo.saves)
}

func TestEnrich_OverflowingLinkIsKept(t *testing.T) {
	input := `{"cpus":[{"name":"x","buyLink":1e400}]}`
	catalog := decodeCatalog(t, input)

	result, err := newTestService(nil).Enrich(catalog)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Added)

	out, err := json.Marshal(catalog)
	require.NoError(t, err)
	assert.Equal(t, input, string(out))
}

func TestEnrich_MissingNameIgnoredWhenLinked(t *testing.T) {
	catalog := decodeCatalog(t, `{"mobos":[{"model":"B650","buyLink":"https://example.com/b650"}]}`)

	result, err := newTestService(nil).Enrich(catalog)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Added)
	assert.Equal(t, 1, result.Total)
}

func TestEnrich_MalformedCategoryFails(t *testing.T) {
	catalog := decodeCatalog(t, `{"gpus":{"name":"RTX 4070"}}`)

	_, err := newTestService(nil).Enrich(catalog)
	assert.ErrorIs(t, err, domain.ErrNotRecordList)
}

func TestEnrich_MultiStore(t *testing.T) {
	catalog := decodeCatalog(t, `{"gpus":[{"name":"RTX 4070","buyLink":"https://example.com/x"},{"name":"RX 7800 XT","shopLinks":{"amazon":"https://example.com/y"}}]}`)
	svc := NewService(nil, nil, nil, links.Amazon, true, 50)

	result, err := svc.Enrich(catalog)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 1, result.ShopLinksAdded)

	records, _, err := catalog.Records(domain.CategoryKeyGPU)
	require.NoError(t, err)

	// existing buyLink survives next to the new shopLinks
	existing, err := records[0].GetString(domain.FieldBuyLink)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/x", existing)

	raw, ok := records[0].Get(domain.FieldShopLinks)
	require.True(t, ok)
	var shopLinks map[string]string
	require.NoError(t, json.Unmarshal(raw, &shopLinks))
	assert.Len(t, shopLinks, len(links.Stores))
	assert.Equal(t, "https://www.croma.com/search?q=RTX+4070+graphics+card", shopLinks["croma"])

	raw, _ = records[1].Get(domain.FieldShopLinks)
	assert.JSONEq(t, `{"amazon":"https://example.com/y"}`, string(raw))

	second, err := svc.Enrich(catalog)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Added)
	assert.Equal(t, 0, second.ShopLinksAdded)
}

func TestRun_WritesOnlyAfterFullPass(t *testing.T) {
	repo := &memoryCatalogRepository{data: `{"cpus":[{"name":"Ryzen 5 5600X"}],"gpus":[{"price":1}]}`}

	_, err := newTestService(repo).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, repo.saves)
}

func TestRun_SavesAndRecords(t *testing.T) {
	repo := &memoryCatalogRepository{data: `{"cpus":[{"name":"Ryzen 5 5600X"}]}`}
	linkRepo := &fakeLinkRepository{}
	stateManager := &fakeStateManager{}
	svc := NewService(repo, linkRepo, stateManager, links.Amazon, false, 50)

	result, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, repo.saves)
	assert.Equal(t, `{"cpus":[{"name":"Ryzen 5 5600X","buyLink":"https://www.amazon.in/s?k=Ryzen+5+5600X+processor"}]}`, repo.saved)

	assert.Equal(t, result.Links, linkRepo.links)
	require.Len(t, stateManager.summaries, 1)
	assert.Same(t, result, stateManager.summaries[0])
	assert.Equal(t, 1, stateManager.lookups)
}

func TestRun_AuditFailureIsReported(t *testing.T) {
	repo := &memoryCatalogRepository{data: `{"cpus":[{"name":"Ryzen 5 5600X"}]}`}
	linkRepo := &fakeLinkRepository{err: errors.New("connection refused")}
	svc := NewService(repo, linkRepo, nil, links.Amazon, false, 50)

	result, err := svc.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, repo.saves)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.Added)
}

func TestRun_FileCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "components.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"storage":[{"name":"WD Black SN850X / 2TB"}]}`), 0600))

	svc := newTestService(repository.NewFileCatalogRepository(path))
	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Added)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{
  "storage": [
    {
      "name": "WD Black SN850X / 2TB",
      "buyLink": "https://www.amazon.in/s?k=WD+Black+SN850X+2TB+SSD"
    }
  ]
}`, string(data))

	again, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, again.Added)

	unchanged, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(unchanged))
}

func TestRun_MissingFile(t *testing.T) {
	svc := newTestService(repository.NewFileCatalogRepository(filepath.Join(t.TempDir(), "missing.json")))
	_, err := svc.Run(context.Background())
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 50))
	assert.Equal(t, strings.Repeat("a", 50), truncate(strings.Repeat("a", 60), 50))
	assert.Equal(t, "Café", truncate("Café Racer", 4))
}
