package platform

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fastygo/learner-portal/domain"
	"github.com/fastygo/learner-portal/internal/infrastructure/upstream"
	"github.com/fastygo/learner-portal/repository"
)

type catalogRepository struct {
	client  Getter
	baseURL string
}

// NewCatalogRepository asks the enterprise catalog service whether a
// customer's catalogs contain a course.
func NewCatalogRepository(client Getter, catalogBaseURL string) repository.CatalogRepository {
	return &catalogRepository{client: client, baseURL: catalogBaseURL}
}

func (r *catalogRepository) ContainsContent(ctx context.Context, enterpriseUUID, courseKey string) (*domain.CatalogMembership, error) {
	query := url.Values{}
	query.Set("course_run_ids", courseKey)
	query.Set("get_catalog_list", "true")

	var membership domain.CatalogMembership
	err := r.client.GetJSON(ctx, upstream.Request{
		Service: ServiceEnterpriseCatalog,
		URL: fmt.Sprintf("%s/api/v1/enterprise-customer/%s/contains_content_items/?%s",
			r.baseURL, url.PathEscape(enterpriseUUID), query.Encode()),
		Cache: upstream.PerUserCache,
	}, &membership)
	if err != nil {
		return nil, err
	}
	return &membership, nil
}
