// Package tenant carries tenant identity and per-request database
// plumbing through context.
//
// The platform uses a shared-schema model: every tenant-owned row carries
// a tenant_id column and repositories filter on it explicitly. Tenant
// identity is always passed as an explicit value — never an ambient
// session variable — so the trust boundary is visible at every call site.
package tenant

// Tenant describes a registered tenant (a business on the platform).
type Tenant struct {
	// ID is the stable tenant identifier used for row scoping.
	ID string `db:"id" json:"id"`

	// Code is the short human-readable prefix embedded in document
	// numbers (e.g. "ABC" in ABC-CS-2025-0001).
	Code string `db:"code" json:"code"`

	// Name is the display name of the business.
	Name string `db:"name" json:"name"`

	// Active tenants may allocate numbers and create documents.
	Active bool `db:"active" json:"active"`
}
