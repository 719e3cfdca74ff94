// Package platform implements the course-page repositories on top of the
// platform's HTTP APIs (discovery, LMS, enterprise catalog, license manager).
package platform

import (
	"context"

	"github.com/fastygo/learner-portal/internal/infrastructure/upstream"
)

// Service labels used for metrics and logs.
const (
	ServiceDiscovery         = "discovery"
	ServiceLMS               = "lms"
	ServiceEnterpriseCatalog = "enterprise_catalog"
	ServiceLicenseManager    = "license_manager"
)

// Getter is the slice of upstream.Client the repositories depend on.
type Getter interface {
	GetJSON(ctx context.Context, req upstream.Request, out any) error
}
