package therapy

import (
	"context"
	"errors"

	"github.com/manas284/empathy-ai/internal/session"
	"github.com/manas284/empathy-ai/internal/svc"
	"github.com/manas284/empathy-ai/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type StartSessionLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewStartSessionLogic(ctx context.Context, svcCtx *svc.ServiceContext) *StartSessionLogic {
	return &StartSessionLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// StartSession validates the intake form, runs the startup AI flows and
// returns the ready-to-chat session. Speech for the greeting begins once the
// chat WebSocket attaches.
func (l *StartSessionLogic) StartSession(req *types.StartSessionRequest) (resp *types.StartSessionResponse, err error) {
	s, err := l.svcCtx.NewSession()
	if err != nil {
		l.Errorf("start session: providers unavailable: %v", err)
		return &types.StartSessionResponse{
			Code:    503,
			Message: "AI providers are not configured",
		}, nil
	}

	profile := session.UserProfile{
		Age:             req.Age,
		GenderIdentity:  session.GenderIdentity(req.GenderIdentity),
		Ethnicity:       req.Ethnicity,
		VulnerableScore: req.VulnerableScore,
		AnxietyLevel:    session.AnxietyLevel(req.AnxietyLevel),
		BreakupType:     session.BreakupType(req.BreakupType),
		Background:      req.Background,
	}

	if _, err := s.Start(l.ctx, profile); err != nil {
		l.svcCtx.RemoveSession(s.ID)
		var verrs session.ValidationErrors
		if errors.As(err, &verrs) {
			return &types.StartSessionResponse{
				Code:    400,
				Message: verrs.Error(),
			}, nil
		}
		l.Errorf("start session: startup flows failed: %v", err)
		return &types.StartSessionResponse{
			Code:    502,
			Message: "Could not process your profile. Please try again.",
		}, nil
	}

	var messages []types.ChatMessage
	for _, m := range s.Messages() {
		messages = append(messages, types.ChatMessage{
			ID:                m.ID,
			Sender:            string(m.Sender),
			Text:              m.Text,
			Timestamp:         m.Timestamp.UnixMilli(),
			DetectedSentiment: m.DetectedSentiment,
		})
	}

	data := types.SessionData{
		SessionID:    s.ID,
		Stage:        string(s.Stage()),
		RapportLevel: s.Rapport(),
		Messages:     messages,
	}
	if reco := s.Recommendation(); reco != nil {
		data.Recommendations = reco.Recommendations
		data.IdentifiedTherapeuticNeeds = reco.IdentifiedTherapeuticNeeds
	}
	if style := s.Style(); style != nil {
		data.AdaptedLanguage = style.AdaptedLanguage
	}

	return &types.StartSessionResponse{
		Code:    0,
		Message: "success",
		Data:    data,
	}, nil
}
