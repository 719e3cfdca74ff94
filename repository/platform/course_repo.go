package platform

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fastygo/learner-portal/domain"
	"github.com/fastygo/learner-portal/internal/infrastructure/upstream"
	"github.com/fastygo/learner-portal/repository"
)

type courseRepository struct {
	client  Getter
	baseURL string
}

// NewCourseRepository reads course metadata from the discovery service.
func NewCourseRepository(client Getter, discoveryBaseURL string) repository.CourseRepository {
	return &courseRepository{client: client, baseURL: discoveryBaseURL}
}

func (r *courseRepository) GetCourseDetails(ctx context.Context, courseKey string) (*domain.CourseDetails, error) {
	var course domain.CourseDetails
	err := r.client.GetJSON(ctx, upstream.Request{
		Service: ServiceDiscovery,
		URL:     fmt.Sprintf("%s/api/v1/courses/%s/", r.baseURL, url.PathEscape(courseKey)),
		Cache:   upstream.SharedCache,
	}, &course)
	if err != nil {
		return nil, err
	}
	return &course, nil
}
