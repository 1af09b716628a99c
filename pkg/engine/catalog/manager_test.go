package catalog

import (
	"context"
	"testing"

	"blicktrack-entitlement-be/internal/pkg/apperror"
	"blicktrack-entitlement-be/internal/pkg/logger"
	"blicktrack-entitlement-be/internal/repository/memory"
	"blicktrack-entitlement-be/pkg/engine/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newTestManager(t *testing.T) (*Manager, *memory.Factory) {
	t.Helper()
	factory := memory.NewFactory()
	log := logger.NewZapLogger(t.TempDir()+"/test.log", false)
	return NewManager(factory, events.NopPublisher{}, log), factory
}

func TestCreateCategory(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	created, err := m.CreateCategory(ctx, CreateCategoryInput{
		Name:        "security",
		DisplayName: "Security",
	})
	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.Id)
	assert.True(t, created.IsActive)
	assert.True(t, created.IsVisible)
}

func TestCreateCategoryRejectsDuplicateName(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.CreateCategory(ctx, CreateCategoryInput{Name: "security", DisplayName: "Security"})
	assert.NoError(t, err)

	_, err = m.CreateCategory(ctx, CreateCategoryInput{Name: "security", DisplayName: "Security Again"})
	assert.True(t, apperror.IsValidation(err))
}

func TestCreateCategoryRejectsMalformedName(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	for _, name := range []string{"", "Has Spaces", "UPPER", "trailing-", "-leading", "under_score"} {
		_, err := m.CreateCategory(ctx, CreateCategoryInput{Name: name, DisplayName: "X"})
		assert.True(t, apperror.IsValidation(err), "name %q should be rejected", name)
	}
}

func TestUpdateCategoryPartial(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	created, err := m.CreateCategory(ctx, CreateCategoryInput{Name: "security", DisplayName: "Security"})
	assert.NoError(t, err)

	newDisplay := "Security & Compliance"
	updated, err := m.UpdateCategory(ctx, created.Id, UpdateCategoryInput{DisplayName: &newDisplay})
	assert.NoError(t, err)
	assert.Equal(t, "Security & Compliance", updated.DisplayName)
	assert.Equal(t, "security", updated.Name) // untouched

	_, err = m.UpdateCategory(ctx, uuid.New(), UpdateCategoryInput{DisplayName: &newDisplay})
	assert.True(t, apperror.IsNotFound(err))
}

func TestDeleteCategoryBlockedByFeatures(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	cat, err := m.CreateCategory(ctx, CreateCategoryInput{Name: "security", DisplayName: "Security"})
	assert.NoError(t, err)

	feature, err := m.CreateFeature(ctx, CreateFeatureInput{
		Name:        "threat-modeling",
		DisplayName: "Threat Modeling",
		CategoryId:  &cat.Id,
	})
	assert.NoError(t, err)

	err = m.DeleteCategory(ctx, cat.Id)
	assert.True(t, apperror.IsConflict(err))
	var conflict *apperror.ConflictError
	assert.ErrorAs(t, err, &conflict)
	assert.Equal(t, 1, conflict.BlockingCount)
	assert.Contains(t, conflict.Message, "1 feature(s)")

	// Detach by deleting the feature, then deletion succeeds.
	assert.NoError(t, m.DeleteFeature(ctx, feature.Id))
	assert.NoError(t, m.DeleteCategory(ctx, cat.Id))

	_, err = m.GetCategory(ctx, cat.Id)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreateFeatureRejectsDuplicateName(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.CreateFeature(ctx, CreateFeatureInput{Name: "sbom-export", DisplayName: "SBOM Export"})
	assert.NoError(t, err)

	_, err = m.CreateFeature(ctx, CreateFeatureInput{Name: "sbom-export", DisplayName: "Duplicate"})
	assert.True(t, apperror.IsValidation(err))
}

func TestCreateSubFeature(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	parent, err := m.CreateFeature(ctx, CreateFeatureInput{Name: "threat-modeling", DisplayName: "Threat Modeling"})
	assert.NoError(t, err)

	child, err := m.CreateFeature(ctx, CreateFeatureInput{
		Name:        "stride-analysis",
		DisplayName: "STRIDE Analysis",
		ParentId:    &parent.Id,
	})
	assert.NoError(t, err)
	assert.Equal(t, "sub-feature", string(child.Kind()))
	assert.Equal(t, 2, child.Level())

	// A sub-feature cannot itself be a parent.
	_, err = m.CreateFeature(ctx, CreateFeatureInput{
		Name:        "nested",
		DisplayName: "Nested",
		ParentId:    &child.Id,
	})
	assert.True(t, apperror.IsValidation(err))

	// Unknown parent.
	bogus := uuid.New()
	_, err = m.CreateFeature(ctx, CreateFeatureInput{
		Name:        "orphan",
		DisplayName: "Orphan",
		ParentId:    &bogus,
	})
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdateFeatureReparenting(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	parent, _ := m.CreateFeature(ctx, CreateFeatureInput{Name: "parent-a", DisplayName: "Parent A"})
	other, _ := m.CreateFeature(ctx, CreateFeatureInput{Name: "parent-b", DisplayName: "Parent B"})
	child, _ := m.CreateFeature(ctx, CreateFeatureInput{Name: "child", DisplayName: "Child", ParentId: &parent.Id})

	// Move under the other parent.
	moved, err := m.UpdateFeature(ctx, child.Id, UpdateFeatureInput{ParentId: &other.Id})
	assert.NoError(t, err)
	assert.Equal(t, other.Id, *moved.ParentId)

	// Promote to top-level.
	promoted, err := m.UpdateFeature(ctx, child.Id, UpdateFeatureInput{ClearParent: true})
	assert.NoError(t, err)
	assert.Nil(t, promoted.ParentId)
	assert.Equal(t, 1, promoted.Level())

	// A feature cannot be its own parent.
	_, err = m.UpdateFeature(ctx, parent.Id, UpdateFeatureInput{ParentId: &parent.Id})
	assert.True(t, apperror.IsValidation(err))

	// A feature with children cannot be demoted to a sub-feature.
	child2, _ := m.CreateFeature(ctx, CreateFeatureInput{Name: "child-two", DisplayName: "Child Two", ParentId: &parent.Id})
	_ = child2
	_, err = m.UpdateFeature(ctx, parent.Id, UpdateFeatureInput{ParentId: &other.Id})
	assert.True(t, apperror.IsValidation(err))
}

func TestDeleteFeatureCascades(t *testing.T) {
	m, factory := newTestManager(t)
	ctx := context.Background()

	cat, _ := m.CreateCategory(ctx, CreateCategoryInput{Name: "security", DisplayName: "Security"})
	parent, _ := m.CreateFeature(ctx, CreateFeatureInput{Name: "parent", DisplayName: "Parent", CategoryId: &cat.Id})
	child, _ := m.CreateFeature(ctx, CreateFeatureInput{Name: "child", DisplayName: "Child", ParentId: &parent.Id})

	assert.NoError(t, m.DeleteFeature(ctx, parent.Id))

	_, err := m.GetFeature(ctx, parent.Id)
	assert.True(t, apperror.IsNotFound(err))
	_, err = m.GetFeature(ctx, child.Id)
	assert.True(t, apperror.IsNotFound(err))

	// Associations are gone too, so the category deletes cleanly.
	count, err := factory.UoW.Features.CountAssociationsByCategory(ctx, cat.Id)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), count)
	assert.NoError(t, m.DeleteCategory(ctx, cat.Id))
}

func TestListFeaturesFilters(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	cat, _ := m.CreateCategory(ctx, CreateCategoryInput{Name: "security", DisplayName: "Security"})
	inactive := false
	m.CreateFeature(ctx, CreateFeatureInput{Name: "active-one", DisplayName: "Active One", CategoryId: &cat.Id})
	m.CreateFeature(ctx, CreateFeatureInput{Name: "inactive-one", DisplayName: "Inactive One", IsActive: &inactive})

	all, err := m.ListFeatures(ctx, ListFilter{})
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := m.ListFeatures(ctx, ListFilter{ActiveOnly: true})
	assert.NoError(t, err)
	assert.Len(t, active, 1)
	assert.Equal(t, "active-one", active[0].Name)

	inCat, err := m.ListFeatures(ctx, ListFilter{CategoryId: &cat.Id})
	assert.NoError(t, err)
	assert.Len(t, inCat, 1)

	searched, err := m.ListFeatures(ctx, ListFilter{Search: "inactive"})
	assert.NoError(t, err)
	assert.Len(t, searched, 1)
}

func TestListFeaturesOrdersBySortOrderThenName(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	m.CreateFeature(ctx, CreateFeatureInput{Name: "zeta", DisplayName: "Zeta", SortOrder: 1})
	m.CreateFeature(ctx, CreateFeatureInput{Name: "alpha", DisplayName: "Alpha", SortOrder: 2})
	m.CreateFeature(ctx, CreateFeatureInput{Name: "beta", DisplayName: "Beta", SortOrder: 1})

	features, err := m.ListFeatures(ctx, ListFilter{})
	assert.NoError(t, err)
	assert.Len(t, features, 3)
	assert.Equal(t, "beta", features[0].Name)
	assert.Equal(t, "zeta", features[1].Name)
	assert.Equal(t, "alpha", features[2].Name)

	newOrder := 0
	updated, err := m.UpdateFeature(ctx, features[2].Id, UpdateFeatureInput{SortOrder: &newOrder})
	assert.NoError(t, err)
	assert.Equal(t, 0, updated.SortOrder)

	features, err = m.ListFeatures(ctx, ListFilter{})
	assert.NoError(t, err)
	assert.Equal(t, "alpha", features[0].Name)
}

func TestListFeaturesPaginates(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	names := []string{"first", "second", "third", "fourth", "fifth"}
	for i, name := range names {
		_, err := m.CreateFeature(ctx, CreateFeatureInput{Name: name, DisplayName: name, SortOrder: i})
		assert.NoError(t, err)
	}

	page1, err := m.ListFeatures(ctx, ListFilter{Page: 1, PageSize: 2})
	assert.NoError(t, err)
	assert.Len(t, page1, 2)
	assert.Equal(t, "first", page1[0].Name)
	assert.Equal(t, "second", page1[1].Name)

	page3, err := m.ListFeatures(ctx, ListFilter{Page: 3, PageSize: 2})
	assert.NoError(t, err)
	assert.Len(t, page3, 1)
	assert.Equal(t, "fifth", page3[0].Name)

	beyond, err := m.ListFeatures(ctx, ListFilter{Page: 4, PageSize: 2})
	assert.NoError(t, err)
	assert.Len(t, beyond, 0)

	unpaginated, err := m.ListFeatures(ctx, ListFilter{})
	assert.NoError(t, err)
	assert.Len(t, unpaginated, 5)
}

func TestSnapshotBuildsTree(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	parent, _ := m.CreateFeature(ctx, CreateFeatureInput{Name: "parent", DisplayName: "Parent"})
	m.CreateFeature(ctx, CreateFeatureInput{Name: "child", DisplayName: "Child", ParentId: &parent.Id})
	m.CreateFeature(ctx, CreateFeatureInput{Name: "standalone", DisplayName: "Standalone"})

	roots, err := m.Snapshot(ctx)
	assert.NoError(t, err)
	assert.Len(t, roots, 2)

	for _, root := range roots {
		if root.Id == parent.Id {
			assert.Len(t, root.Children, 1)
			assert.Equal(t, "child", root.Children[0].Name)
		}
	}
}
