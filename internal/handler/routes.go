package handler

import (
	"net/http"

	"github.com/manas284/empathy-ai/internal/handler/chat"
	"github.com/manas284/empathy-ai/internal/handler/health"
	"github.com/manas284/empathy-ai/internal/handler/service"
	"github.com/manas284/empathy-ai/internal/handler/therapy"
	"github.com/manas284/empathy-ai/internal/svc"

	"github.com/zeromicro/go-zero/rest"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/api/health",
				Handler: health.HealthHandler(serverCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/api/sessions",
				Handler: therapy.StartSessionHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/services",
				Handler: service.GetServicesHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/services/:type",
				Handler: service.GetServicesByTypeHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/services/:type/:name",
				Handler: service.GetServiceStatusHandler(serverCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/ws/chat",
				Handler: chat.ChatStreamHandler(serverCtx),
			},
		},
	)
}
