package main

import (
	"log"
	"os"

	"blicktrack-entitlement-be/internal/model"
	"blicktrack-entitlement-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("🚀 Seeding Entitlement Catalog\n")

	color.Yellow("\n1. Subscription Plans")
	professional := upsertPlan(db, model.SubscriptionPlan{
		DisplayName:  "Professional",
		Tier:         1,
		Price:        99.00,
		Currency:     "USD",
		BillingCycle: "monthly",
		IsActive:     true,
	})
	enterprise := upsertPlan(db, model.SubscriptionPlan{
		DisplayName:  "Enterprise",
		Tier:         2,
		Price:        299.00,
		Currency:     "USD",
		BillingCycle: "monthly",
		IsActive:     true,
	})

	color.Yellow("\n2. Tenants")
	seedTenants(db, professional, enterprise)

	color.Yellow("\n3. Feature Categories")
	categories := []model.FeatureCategory{
		{Name: "it-security", DisplayName: "IT Security", Description: "Infrastructure and network security tooling", Icon: "shield", Color: "#2563eb", SortOrder: 1, IsActive: true, IsVisible: true},
		{Name: "product-security", DisplayName: "Product Security", Description: "Application and product lifecycle security", Icon: "lock", Color: "#16a34a", SortOrder: 2, IsActive: true, IsVisible: true},
		{Name: "ot-security", DisplayName: "OT Security", Description: "Operational technology and industrial systems", Icon: "factory", Color: "#ea580c", SortOrder: 3, IsActive: true, IsVisible: true},
	}
	categoryIds := map[string]uuid.UUID{}
	for _, c := range categories {
		categoryIds[c.Name] = upsertCategory(db, c)
	}

	color.Yellow("\n4. Features")
	features := []struct {
		feature  model.Feature
		category string
		parent   string
		plan     *uuid.UUID
	}{
		{model.Feature{Name: "it-threat-modeling", DisplayName: "IT Infrastructure Threat Modeling", Description: "Model threats against networks, servers and cloud infrastructure", IsActive: true, IsVisible: true}, "it-security", "", nil},
		{model.Feature{Name: "network-security-monitoring", DisplayName: "Network Security Monitoring", Description: "Continuous monitoring of network traffic for anomalies", IsActive: true, IsVisible: true, IsPremium: true}, "it-security", "", &professional},
		{model.Feature{Name: "risk-assessment", DisplayName: "Risk Assessment & Management", Description: "Identify, score and track organizational risk", IsActive: true, IsVisible: true}, "it-security", "", nil},
		{model.Feature{Name: "product-threat-modeling", DisplayName: "Product Threat Modeling", Description: "Model threats against applications and products", IsActive: true, IsVisible: true}, "product-security", "", nil},
		{model.Feature{Name: "stride-analysis", DisplayName: "STRIDE Analysis", Description: "Structured STRIDE walkthroughs inside a threat model", IsActive: true, IsVisible: true}, "product-security", "product-threat-modeling", nil},
		{model.Feature{Name: "attack-tree-builder", DisplayName: "Attack Tree Builder", Description: "Visual attack tree editing for threat models", IsActive: true, IsVisible: true, IsPremium: true}, "product-security", "product-threat-modeling", &enterprise},
		{model.Feature{Name: "secure-code-review", DisplayName: "Secure Code Review", Description: "Track and manage code review findings", IsActive: true, IsVisible: true}, "product-security", "", nil},
		{model.Feature{Name: "compliance-reporting", DisplayName: "Compliance Reporting & Auditing", Description: "Generate audit-ready compliance reports", IsActive: true, IsVisible: true, IsPremium: true}, "product-security", "", &enterprise},
		{model.Feature{Name: "sbom-export", DisplayName: "SBOM Export", Description: "Export software bill of materials in SPDX and CycloneDX", IsActive: true, IsVisible: true}, "product-security", "secure-code-review", nil},
		{model.Feature{Name: "sso-integration", DisplayName: "Single Sign-On Integration", Description: "SAML and OIDC single sign-on", IsActive: true, IsVisible: true, RequiresLicense: true}, "ot-security", "", &enterprise},
	}

	featureIds := map[string]uuid.UUID{}
	for _, item := range features {
		f := item.feature
		f.SubscriptionPlanId = item.plan
		if item.parent != "" {
			parentId, ok := featureIds[item.parent]
			if !ok {
				color.Red("Parent '%s' not seeded yet, skipping '%s'", item.parent, f.Name)
				continue
			}
			f.ParentId = &parentId
		}
		id := upsertFeature(db, f)
		featureIds[f.Name] = id
		linkCategory(db, id, categoryIds[item.category])
	}

	color.Green("\n✅ Catalog seeding completed")
}

func upsertPlan(db *gorm.DB, p model.SubscriptionPlan) uuid.UUID {
	var existing model.SubscriptionPlan
	if err := db.Where("display_name = ?", p.DisplayName).First(&existing).Error; err == nil {
		color.White("Plan '%s' already exists, skipping...", p.DisplayName)
		return existing.Id
	}
	if err := db.Create(&p).Error; err != nil {
		log.Fatalf("Error creating plan '%s': %v", p.DisplayName, err)
	}
	color.Green("Created plan: %s (tier %d)", p.DisplayName, p.Tier)
	return p.Id
}

func seedTenants(db *gorm.DB, professional, enterprise uuid.UUID) {
	tenants := []model.Tenant{
		{Name: "BlickTrack", Slug: "blicktrack", ContactEmail: "admin@blicktrack.com", PlanId: &enterprise, IsActive: true},
		{Name: "Huawei Technologies", Slug: "huawei", ContactEmail: "security@huawei.com", PlanId: &enterprise, IsActive: true},
		{Name: "Boeing Company", Slug: "boeing", ContactEmail: "security@boeing.com", PlanId: &enterprise, IsActive: true},
		{Name: "United Technologies Corporation", Slug: "utc", ContactEmail: "infosec@utc.com", PlanId: &professional, IsActive: true},
	}
	for _, t := range tenants {
		var existing model.Tenant
		if err := db.Where("slug = ?", t.Slug).First(&existing).Error; err == nil {
			color.White("Tenant '%s' already exists, skipping...", t.Slug)
			continue
		}
		if err := db.Create(&t).Error; err != nil {
			color.Red("Error creating tenant '%s': %v", t.Slug, err)
			continue
		}
		color.Green("Created tenant: %s (%s)", t.Name, t.Slug)
	}
}

func upsertCategory(db *gorm.DB, c model.FeatureCategory) uuid.UUID {
	var existing model.FeatureCategory
	if err := db.Where("name = ?", c.Name).First(&existing).Error; err == nil {
		color.White("Category '%s' already exists, skipping...", c.Name)
		return existing.Id
	}
	if err := db.Create(&c).Error; err != nil {
		log.Fatalf("Error creating category '%s': %v", c.Name, err)
	}
	color.Green("Created category: %s", c.DisplayName)
	return c.Id
}

func upsertFeature(db *gorm.DB, f model.Feature) uuid.UUID {
	var existing model.Feature
	if err := db.Where("name = ?", f.Name).First(&existing).Error; err == nil {
		color.White("Feature '%s' already exists, skipping...", f.Name)
		return existing.Id
	}
	if err := db.Create(&f).Error; err != nil {
		log.Fatalf("Error creating feature '%s': %v", f.Name, err)
	}
	color.Green("Created feature: %s (%s)", f.DisplayName, f.Name)
	return f.Id
}

func linkCategory(db *gorm.DB, featureId, categoryId uuid.UUID) {
	if categoryId == uuid.Nil {
		return
	}
	var existing model.FeatureCategoryFeature
	if err := db.Where("feature_id = ? AND category_id = ?", featureId, categoryId).First(&existing).Error; err == nil {
		return
	}
	var order int64
	db.Model(&model.FeatureCategoryFeature{}).Where("category_id = ?", categoryId).Count(&order)
	link := model.FeatureCategoryFeature{
		FeatureId:  featureId,
		CategoryId: categoryId,
		SortOrder:  int(order) + 1,
		IsPrimary:  true,
	}
	if err := db.Create(&link).Error; err != nil {
		color.Red("Error linking feature to category: %v", err)
	}
}
