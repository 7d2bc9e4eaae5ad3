package service

import (
	"net/http"

	"github.com/manas284/empathy-ai/internal/logic/service"
	"github.com/manas284/empathy-ai/internal/svc"
	"github.com/zeromicro/go-zero/rest/httpx"
	"github.com/zeromicro/go-zero/rest/pathvar"
)

func GetServicesByTypeHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := service.NewGetServicesByTypeLogic(r.Context(), svcCtx)

		serviceType := pathvar.Vars(r)["type"]

		resp, err := l.GetServicesByType(serviceType)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
