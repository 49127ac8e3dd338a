package pageviews

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/rs/xid"
	"github.com/sdkexamples/sdkexamples/pkg/common"
)

const SuccessBody = "Successfully processed GitHub page views."

type Handler struct {
	Collector *Collector
}

func requestID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && len(lc.AwsRequestID) > 0 {
		return lc.AwsRequestID
	}

	return xid.New().String()
}

// Handle is invoked by the lambda runtime. Collection failures are logged
// and the invocation still reports success.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ctx = common.TraceContext(ctx, requestID(ctx))
	ctx = common.OperationContext(ctx, "collect_page_views")

	slog.DebugContext(ctx, "Handling page views event", "path", event.Path, "repos", len(h.Collector.Repos))

	count, err := h.Collector.Collect(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to collect page views", "stored", count, common.ErrAttr(err))
	} else {
		slog.InfoContext(ctx, "Collected page views", "stored", count)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{common.HeaderContentType: "text/plain"},
		Body:       SuccessBody,
	}, nil
}
