// FILE: internal/dto/messaging_dto.go
package dto

import "time"

// CacheInvalidationMessage is published on the in-process bus after every
// write so consumer-side caches can mark the affected collection stale.
type CacheInvalidationMessage struct {
	Collection string    `json:"collection"` // categories | features | tenants | entitlements
	TenantId   string    `json:"tenant_id,omitempty"`
	At         time.Time `json:"at"`
}
