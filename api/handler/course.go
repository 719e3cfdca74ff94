package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/learner-portal/api/transport"
	"github.com/fastygo/learner-portal/domain"
	"github.com/fastygo/learner-portal/pkg/httpcontext"
	appLogger "github.com/fastygo/learner-portal/pkg/logger"
	courseUC "github.com/fastygo/learner-portal/usecase/course"
)

// CourseAggregator assembles the data behind a course page.
type CourseAggregator interface {
	FetchAll(ctx context.Context, req courseUC.Request) (*domain.AggregateResult, error)
}

type CourseHandler struct {
	baseHandler
	uc CourseAggregator
}

func NewCourseHandler(uc CourseAggregator, adapter *httpcontext.Adapter, logger *zap.Logger) *CourseHandler {
	return &CourseHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Course page data
// @Tags course
// @Router /api/v1/enterprise/{enterpriseUUID}/course/{courseKey} [get]
func (h *CourseHandler) GetCourse(ctx *fasthttp.RequestCtx) {
	req := parseCourseRequest(ctx)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.FetchAll(stdCtx, courseUC.Request{
		CourseKey:      req.CourseKey,
		CourseRunKey:   req.CourseRunKey,
		EnterpriseUUID: req.EnterpriseUUID,
	})
	if err != nil {
		appLogger.WithRequestID(stdCtx, h.logger).Info("course page unavailable",
			zap.String("course_key", req.CourseKey),
			zap.Error(err),
		)
		h.respondError(ctx, err)
		return
	}

	page := domain.NewCoursePage(result)
	if page.ActiveCourseRun == nil {
		h.respondError(ctx, domain.ErrNoActiveCourseRun)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, page)
}

func parseCourseRequest(ctx *fasthttp.RequestCtx) transport.CourseRequest {
	runKey := string(ctx.QueryArgs().Peek(transport.QueryCourseRunKey))
	if runKey == "" {
		runKey = string(ctx.QueryArgs().Peek(transport.QueryCourseRunKeyCamel))
	}
	return transport.CourseRequest{
		EnterpriseUUID: pathParam(ctx, "enterpriseUUID"),
		CourseKey:      pathParam(ctx, "courseKey"),
		CourseRunKey:   strings.TrimSpace(runKey),
	}
}

func pathParam(ctx *fasthttp.RequestCtx, name string) string {
	value, _ := ctx.UserValue(name).(string)
	return strings.TrimSpace(value)
}
