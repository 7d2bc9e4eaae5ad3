package service

import (
	"net/http"

	"github.com/manas284/empathy-ai/internal/logic/service"
	"github.com/manas284/empathy-ai/internal/svc"
	"github.com/zeromicro/go-zero/rest/httpx"
	"github.com/zeromicro/go-zero/rest/pathvar"
)

func GetServiceStatusHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := service.NewGetServiceStatusLogic(r.Context(), svcCtx)

		vars := pathvar.Vars(r)
		serviceType := vars["type"]
		name := vars["name"]

		resp, err := l.GetServiceStatus(serviceType, name)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
