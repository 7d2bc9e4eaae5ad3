package therapy

import (
	"net/http"

	"github.com/manas284/empathy-ai/internal/logic/therapy"
	"github.com/manas284/empathy-ai/internal/svc"
	"github.com/manas284/empathy-ai/internal/types"
	"github.com/zeromicro/go-zero/rest/httpx"
)

func StartSessionHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.StartSessionRequest
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}

		l := therapy.NewStartSessionLogic(r.Context(), svcCtx)
		resp, err := l.StartSession(&req)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
