package health

import (
	"context"

	"github.com/manas284/empathy-ai/internal/svc"
	"github.com/manas284/empathy-ai/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type HealthLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewHealthLogic(ctx context.Context, svcCtx *svc.ServiceContext) *HealthLogic {
	return &HealthLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *HealthLogic) Health() (resp *types.HealthResponse, err error) {
	return &types.HealthResponse{
		Code:    0,
		Message: "success",
		Data: types.HealthData{
			Status:    "ok",
			Sessions:  l.svcCtx.Sessions.Count(),
			Providers: len(l.svcCtx.Registry.GetAllProviders()),
		},
	}, nil
}
