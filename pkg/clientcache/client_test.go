package clientcache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"blicktrack-entitlement-be/internal/dto"
	"blicktrack-entitlement-be/internal/pkg/apperror"
	"blicktrack-entitlement-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeCatalogService struct {
	categories []*dto.CategoryResponse
	features   []*dto.FeatureResponse
	deleteErr  error
}

func (f *fakeCatalogService) CreateCategory(ctx context.Context, req *dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	created := &dto.CategoryResponse{
		Id:          uuid.New(),
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Description: req.Description,
		IsActive:    true,
		IsVisible:   true,
		CreatedAt:   time.Now(),
	}
	f.categories = append(f.categories, created)
	return created, nil
}

func (f *fakeCatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, req *dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	for _, c := range f.categories {
		if c.Id == id {
			if req.DisplayName != nil {
				c.DisplayName = *req.DisplayName
			}
			return c, nil
		}
	}
	return nil, apperror.NewNotFound("category", id.String())
}

func (f *fakeCatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return f.deleteErr
}

func (f *fakeCatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*dto.CategoryResponse, error) {
	for _, c := range f.categories {
		if c.Id == id {
			return c, nil
		}
	}
	return nil, apperror.NewNotFound("category", id.String())
}

func (f *fakeCatalogService) ListCategories(ctx context.Context, query *dto.CatalogListQuery) ([]*dto.CategoryResponse, error) {
	out := make([]*dto.CategoryResponse, len(f.categories))
	copy(out, f.categories)
	return out, nil
}

func (f *fakeCatalogService) CreateFeature(ctx context.Context, req *dto.CreateFeatureRequest) (*dto.FeatureResponse, error) {
	created := &dto.FeatureResponse{
		Id:          uuid.New(),
		Name:        req.Name,
		DisplayName: req.DisplayName,
		ParentId:    req.ParentId,
		IsActive:    true,
		IsVisible:   true,
		CreatedAt:   time.Now(),
	}
	if req.ParentId != nil {
		created.Kind = "sub-feature"
		created.Level = 2
	} else {
		created.Kind = "top-level"
		created.Level = 1
		f.features = append(f.features, created)
	}
	return created, nil
}

func (f *fakeCatalogService) UpdateFeature(ctx context.Context, id uuid.UUID, req *dto.UpdateFeatureRequest) (*dto.FeatureResponse, error) {
	for _, feat := range f.features {
		if feat.Id == id {
			if req.DisplayName != nil {
				feat.DisplayName = *req.DisplayName
			}
			return feat, nil
		}
	}
	return nil, apperror.NewNotFound("feature", id.String())
}

func (f *fakeCatalogService) DeleteFeature(ctx context.Context, id uuid.UUID) error {
	return f.deleteErr
}

func (f *fakeCatalogService) GetFeature(ctx context.Context, id uuid.UUID) (*dto.FeatureResponse, error) {
	for _, feat := range f.features {
		if feat.Id == id {
			return feat, nil
		}
	}
	return nil, apperror.NewNotFound("feature", id.String())
}

func (f *fakeCatalogService) ListFeatures(ctx context.Context, query *dto.CatalogListQuery) ([]*dto.FeatureResponse, error) {
	out := make([]*dto.FeatureResponse, len(f.features))
	copy(out, f.features)
	return out, nil
}

type fakeTenantService struct {
	tenants []*dto.TenantResponse
}

func (f *fakeTenantService) GetAll(ctx context.Context) ([]*dto.TenantResponse, error) {
	return f.tenants, nil
}

func (f *fakeTenantService) Show(ctx context.Context, id uuid.UUID) (*dto.TenantResponse, error) {
	return nil, apperror.NewNotFound("tenant", id.String())
}

func (f *fakeTenantService) GetPlans(ctx context.Context) ([]*dto.PlanResponse, error) {
	return nil, nil
}

type fakeEntitlementService struct {
	records    []*dto.EntitlementResponse
	setEnabled func(tenantId, featureId uuid.UUID, req *dto.SetEnabledRequest) (*dto.EntitlementResponse, error)
}

func (f *fakeEntitlementService) GetEntitlement(ctx context.Context, tenantId, featureId uuid.UUID) (*dto.EntitlementResponse, error) {
	return &dto.EntitlementResponse{TenantId: tenantId, FeatureId: featureId, IsActive: true}, nil
}

func (f *fakeEntitlementService) ListForTenant(ctx context.Context, tenantId uuid.UUID) ([]*dto.EntitlementResponse, error) {
	out := make([]*dto.EntitlementResponse, 0, len(f.records))
	for _, r := range f.records {
		if r.TenantId == tenantId {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeEntitlementService) SetEnabled(ctx context.Context, tenantId, featureId uuid.UUID, req *dto.SetEnabledRequest) (*dto.EntitlementResponse, error) {
	if f.setEnabled != nil {
		return f.setEnabled(tenantId, featureId, req)
	}
	return &dto.EntitlementResponse{
		TenantId:  tenantId,
		FeatureId: featureId,
		IsEnabled: req.Enabled != nil && *req.Enabled,
		IsActive:  true,
	}, nil
}

func (f *fakeEntitlementService) RecordUsage(ctx context.Context, tenantId, featureId uuid.UUID) (*dto.EntitlementResponse, error) {
	return nil, apperror.NewNotFound("entitlement", featureId.String())
}

func (f *fakeEntitlementService) ExpireTrials(ctx context.Context, now time.Time) (*dto.SweepResponse, error) {
	return &dto.SweepResponse{}, nil
}

func (f *fakeEntitlementService) ResolveForTenant(ctx context.Context, tenantId uuid.UUID) (*dto.ResolveResponse, error) {
	return &dto.ResolveResponse{TenantId: tenantId}, nil
}

func newTestClient(t *testing.T) (*Client, *fakeCatalogService, *fakeEntitlementService) {
	t.Helper()
	catalogSvc := &fakeCatalogService{}
	entitlementSvc := &fakeEntitlementService{}
	tenantSvc := &fakeTenantService{}
	log := logger.NewZapLogger(t.TempDir()+"/test.log", false)
	return NewClient(catalogSvc, tenantSvc, entitlementSvc, time.Minute, log), catalogSvc, entitlementSvc
}

func TestClientCreateCategoryReconcilesToServerRecord(t *testing.T) {
	c, _, _ := newTestClient(t)
	ctx := context.Background()

	_, err := c.Categories.Get(ctx)
	assert.NoError(t, err)

	created, err := c.CreateCategory(ctx, &dto.CreateCategoryRequest{
		Name:        "it-security",
		DisplayName: "IT Security",
	})
	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.Id)

	snap := c.Categories.Snapshot()
	assert.Len(t, snap, 1)
	assert.Equal(t, created.Id, snap[0].Id)
	assert.Equal(t, "it-security", snap[0].Name)
}

func TestClientCreateSubFeatureNestsUnderParent(t *testing.T) {
	c, catalogSvc, _ := newTestClient(t)
	ctx := context.Background()

	parent, err := c.CreateFeature(ctx, &dto.CreateFeatureRequest{
		Name:        "threat-modeling",
		DisplayName: "Threat Modeling",
	})
	assert.NoError(t, err)

	// Capture the in-between snapshot the observers see while the write is
	// pending: the guessed sub-feature must already have the shape the server
	// will confirm.
	var pendingChild *dto.FeatureResponse
	c.Features.Subscribe(func(snapshot []*dto.FeatureResponse) {
		for _, f := range snapshot {
			if f.Id == parent.Id && len(f.Children) > 0 && pendingChild == nil {
				pendingChild = f.Children[0]
			}
		}
	})

	child, err := c.CreateFeature(ctx, &dto.CreateFeatureRequest{
		Name:        "stride-analysis",
		DisplayName: "STRIDE Analysis",
		ParentId:    &parent.Id,
	})
	assert.NoError(t, err)

	assert.NotNil(t, pendingChild)
	assert.Equal(t, "sub-feature", pendingChild.Kind)
	assert.Equal(t, 2, pendingChild.Level)

	snap := c.Features.Snapshot()
	assert.Len(t, snap, 1)
	assert.Len(t, snap[0].Children, 1)
	assert.Equal(t, child.Id, snap[0].Children[0].Id)
	assert.Len(t, catalogSvc.features, 1)
}

func TestClientUpdateCategoryAppliesOptimistically(t *testing.T) {
	c, catalogSvc, _ := newTestClient(t)
	ctx := context.Background()

	created, err := c.CreateCategory(ctx, &dto.CreateCategoryRequest{Name: "ot-security", DisplayName: "OT"})
	assert.NoError(t, err)

	name := "OT Security"
	updated, err := c.UpdateCategory(ctx, created.Id, &dto.UpdateCategoryRequest{DisplayName: &name})
	assert.NoError(t, err)
	assert.Equal(t, "OT Security", updated.DisplayName)

	snap := c.Categories.Snapshot()
	assert.Equal(t, "OT Security", snap[0].DisplayName)
	assert.Equal(t, "OT Security", catalogSvc.categories[0].DisplayName)
}

func TestClientDeleteCategoryRollsBackOnConflict(t *testing.T) {
	c, catalogSvc, _ := newTestClient(t)
	ctx := context.Background()

	created, err := c.CreateCategory(ctx, &dto.CreateCategoryRequest{Name: "it-security", DisplayName: "IT"})
	assert.NoError(t, err)

	catalogSvc.deleteErr = apperror.NewConflict("2 feature(s) must be detached before deleting this category", 2)
	err = c.DeleteCategory(ctx, created.Id)
	assert.True(t, apperror.IsConflict(err))

	// The optimistic removal was rolled back.
	snap := c.Categories.Snapshot()
	assert.Len(t, snap, 1)
	assert.Equal(t, created.Id, snap[0].Id)
}

func TestClientSelectTenantResetsEntitlements(t *testing.T) {
	c, _, entitlementSvc := newTestClient(t)
	ctx := context.Background()

	tenantA := uuid.New()
	tenantB := uuid.New()
	entitlementSvc.records = []*dto.EntitlementResponse{
		{TenantId: tenantA, FeatureId: uuid.New(), IsEnabled: true, IsActive: true},
	}

	c.SelectTenant(tenantA)
	got, err := c.Entitlements.Get(ctx)
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, StateFresh, c.Entitlements.State())

	// Re-selecting the same tenant keeps the cache.
	c.SelectTenant(tenantA)
	assert.Equal(t, StateFresh, c.Entitlements.State())

	// Switching tenants drops it entirely: the snapshot belongs to tenantA.
	c.SelectTenant(tenantB)
	assert.Equal(t, StateEmpty, c.Entitlements.State())
	assert.Nil(t, c.Entitlements.Snapshot())

	got, err = c.Entitlements.Get(ctx)
	assert.NoError(t, err)
	assert.Len(t, got, 0)
}

func TestClientSetEnabledRequiresSelectedTenant(t *testing.T) {
	c, _, _ := newTestClient(t)

	enabled := true
	_, err := c.SetEnabled(context.Background(), uuid.New(), &dto.SetEnabledRequest{Enabled: &enabled})
	assert.True(t, apperror.IsValidation(err))
}

func TestClientSetEnabledUpdatesSnapshot(t *testing.T) {
	c, _, _ := newTestClient(t)
	ctx := context.Background()

	tenantId := uuid.New()
	featureId := uuid.New()
	c.SelectTenant(tenantId)
	_, err := c.Entitlements.Get(ctx)
	assert.NoError(t, err)

	enabled := true
	record, err := c.SetEnabled(ctx, featureId, &dto.SetEnabledRequest{Enabled: &enabled, Reason: "pilot"})
	assert.NoError(t, err)
	assert.True(t, record.IsEnabled)

	snap := c.Entitlements.Snapshot()
	assert.Len(t, snap, 1)
	assert.Equal(t, featureId, snap[0].FeatureId)
	assert.True(t, snap[0].IsEnabled)
}

func TestClientDeleteFeatureInvalidatesEntitlements(t *testing.T) {
	c, _, _ := newTestClient(t)
	ctx := context.Background()

	created, err := c.CreateFeature(ctx, &dto.CreateFeatureRequest{Name: "sbom-export", DisplayName: "SBOM Export"})
	assert.NoError(t, err)

	c.SelectTenant(uuid.New())
	_, err = c.Entitlements.Get(ctx)
	assert.NoError(t, err)
	assert.Equal(t, StateFresh, c.Entitlements.State())

	assert.NoError(t, c.DeleteFeature(ctx, created.Id))

	// Server-side cascade removed the feature's entitlements too.
	assert.Equal(t, StateStale, c.Entitlements.State())
	assert.Len(t, c.Features.Snapshot(), 0)
}

func TestClientInvalidationListenerMarksCollectionsStale(t *testing.T) {
	c, _, _ := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := c.Features.Get(ctx)
	assert.NoError(t, err)

	tenantId := uuid.New()
	c.SelectTenant(tenantId)
	_, err = c.Entitlements.Get(ctx)
	assert.NoError(t, err)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	topic := "cache.invalidation"
	listenerDone := make(chan error, 1)
	go func() {
		listenerDone <- c.ListenInvalidations(ctx, pubSub, topic)
	}()
	time.Sleep(20 * time.Millisecond)

	publish := func(payload dto.CacheInvalidationMessage) {
		raw, err := json.Marshal(payload)
		assert.NoError(t, err)
		assert.NoError(t, pubSub.Publish(topic, message.NewMessage(watermill.NewUUID(), raw)))
	}

	publish(dto.CacheInvalidationMessage{Collection: "features", At: time.Now()})
	assert.Eventually(t, func() bool {
		return c.Features.State() == StateStale
	}, time.Second, 10*time.Millisecond)

	// An entitlement invalidation for another tenant is ignored.
	publish(dto.CacheInvalidationMessage{Collection: "entitlements", TenantId: uuid.NewString(), At: time.Now()})
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, StateFresh, c.Entitlements.State())

	publish(dto.CacheInvalidationMessage{Collection: "entitlements", TenantId: tenantId.String(), At: time.Now()})
	assert.Eventually(t, func() bool {
		return c.Entitlements.State() == StateStale
	}, time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, pubSub.Close())
	select {
	case <-listenerDone:
	case <-time.After(time.Second):
		t.Fatal("listener did not stop after cancellation")
	}
}
