// FILE: internal/repository/implementation/feature_repository_impl.go
// Implementation of FeatureRepository
package implementation

import (
	"context"
	"errors"

	"blicktrack-entitlement-be/internal/entity"
	"blicktrack-entitlement-be/internal/mapper"
	"blicktrack-entitlement-be/internal/model"
	"blicktrack-entitlement-be/internal/repository/contract"
	"blicktrack-entitlement-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FeatureRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.FeatureMapper
}

func NewFeatureRepository(db *gorm.DB) contract.FeatureRepository {
	return &FeatureRepositoryImpl{
		db:     db,
		mapper: mapper.NewFeatureMapper(),
	}
}

func (r *FeatureRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *FeatureRepositoryImpl) Create(ctx context.Context, feature *entity.Feature) error {
	m := r.mapper.ToModel(feature)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*feature = *r.mapper.ToEntity(m)
	return nil
}

func (r *FeatureRepositoryImpl) Update(ctx context.Context, feature *entity.Feature) error {
	m := r.mapper.ToModel(feature)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*feature = *r.mapper.ToEntity(m)
	return nil
}

func (r *FeatureRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Feature{}, id).Error
}

func (r *FeatureRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Feature, error) {
	var m model.Feature
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *FeatureRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Feature, error) {
	var models []*model.Feature
	query := r.applySpecifications(r.db.WithContext(ctx).Order("sort_order ASC").Order("display_name ASC"), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *FeatureRepositoryImpl) FindByName(ctx context.Context, name string) (*entity.Feature, error) {
	var m model.Feature
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *FeatureRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Feature{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// --- Category associations ---

func (r *FeatureRepositoryImpl) CreateAssociation(ctx context.Context, assoc *entity.CategoryAssociation) error {
	m := r.mapper.AssociationToModel(assoc)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*assoc = *r.mapper.AssociationToEntity(m)
	return nil
}

func (r *FeatureRepositoryImpl) DeleteAssociationsByFeature(ctx context.Context, featureId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("feature_id = ?", featureId).
		Delete(&model.FeatureCategoryFeature{}).Error
}

func (r *FeatureRepositoryImpl) DeleteAssociationsByCategory(ctx context.Context, categoryId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("category_id = ?", categoryId).
		Delete(&model.FeatureCategoryFeature{}).Error
}

func (r *FeatureRepositoryImpl) FindAssociationsByFeature(ctx context.Context, featureId uuid.UUID) ([]*entity.CategoryAssociation, error) {
	var models []*model.FeatureCategoryFeature
	if err := r.db.WithContext(ctx).
		Where("feature_id = ?", featureId).
		Order("sort_order ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}

	// Duplicate association rows for the same category are dropped on read
	// instead of being enforced as a DB constraint on the caller.
	seen := make(map[uuid.UUID]bool)
	assocs := make([]*entity.CategoryAssociation, 0, len(models))
	for _, m := range models {
		if seen[m.CategoryId] {
			continue
		}
		seen[m.CategoryId] = true
		assocs = append(assocs, r.mapper.AssociationToEntity(m))
	}
	return assocs, nil
}

func (r *FeatureRepositoryImpl) CountAssociationsByCategory(ctx context.Context, categoryId uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.FeatureCategoryFeature{}).
		Where("category_id = ?", categoryId).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *FeatureRepositoryImpl) NextAssociationOrder(ctx context.Context, categoryId uuid.UUID) (int, error) {
	var max *int
	if err := r.db.WithContext(ctx).
		Model(&model.FeatureCategoryFeature{}).
		Where("category_id = ?", categoryId).
		Select("MAX(sort_order)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max + 1, nil
}
