package service

import (
	"context"

	"github.com/manas284/empathy-ai/internal/svc"
	"github.com/manas284/empathy-ai/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type GetServicesByTypeLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGetServicesByTypeLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetServicesByTypeLogic {
	return &GetServicesByTypeLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *GetServicesByTypeLogic) GetServicesByType(serviceType string) (resp *types.ServiceListResponse, err error) {
	providers := l.svcCtx.Registry.GetProvidersByType(serviceType)

	var providerInfos []types.ProviderInfo
	for _, p := range providers {
		providerInfos = append(providerInfos, types.ProviderInfo{
			Name:         p.Name,
			Type:         p.Type,
			Status:       p.Status,
			Capabilities: p.Capabilities,
		})
	}

	return &types.ServiceListResponse{
		Code:    0,
		Message: "success",
		Data:    providerInfos,
	}, nil
}
