// FILE: internal/repository/implementation/entitlement_repository_impl.go
// Implementation of EntitlementRepository
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

type EntitlementRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.EntitlementMapper
}

func NewEntitlementRepository(db *gorm.DB) contract.EntitlementRepository {
	return &EntitlementRepositoryImpl{
		db:     db,
		mapper: mapper.NewEntitlementMapper(),
	}
}

func (r *EntitlementRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *EntitlementRepositoryImpl) Create(ctx context.Context, entitlement *entity.TenantEntitlement) error {
	m := r.mapper.ToModel(entitlement)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*entitlement = *r.mapper.ToEntity(m)
	return nil
}

func (r *EntitlementRepositoryImpl) Update(ctx context.Context, entitlement *entity.TenantEntitlement) error {
	m := r.mapper.ToModel(entitlement)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*entitlement = *r.mapper.ToEntity(m)
	return nil
}

func (r *EntitlementRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.TenantEntitlement, error) {
	var m model.TenantEntitlement
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *EntitlementRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.TenantEntitlement, error) {
	var models []*model.TenantEntitlement
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *EntitlementRepositoryImpl) FindByTenantAndFeature(ctx context.Context, tenantId, featureId uuid.UUID) (*entity.TenantEntitlement, error) {
	var m model.TenantEntitlement
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND feature_id = ?", tenantId, featureId).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *EntitlementRepositoryImpl) DeleteByFeature(ctx context.Context, featureId uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("feature_id = ?", featureId).
		Delete(&model.TenantEntitlement{}).Error
}

func (r *EntitlementRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.TenantEntitlement{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
