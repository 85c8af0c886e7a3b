package httpadapter

import (
	"context"
	"log/slog"
	"sort"

	"litgb/contexts/contest-core/competition-service/application/commands"
	"litgb/contexts/contest-core/competition-service/application/queries"
	"litgb/contexts/contest-core/competition-service/domain/entities"
	httptransport "litgb/contexts/contest-core/competition-service/transport/http"
)

type Handler struct {
	Create    commands.CreateCompetitionUseCase
	Update    commands.UpdatePropertiesUseCase
	Join      commands.JoinCompetitionUseCase
	Leave     commands.LeaveCompetitionUseCase
	Submit    commands.SubmitFileUseCase
	Attach    commands.AttachChatUseCase
	Cancel    commands.CancelCompetitionUseCase
	Get       queries.GetCompetitionUseCase
	Stat      queries.GetCompetitionStatUseCase
	ChatList  queries.ListChatCompetitionsUseCase
	UserStats queries.GetUserStatsUseCase
	Logger    *slog.Logger
}

func (h Handler) CreateCompetitionHandler(
	ctx context.Context,
	userID int64,
	req httptransport.CreateCompetitionRequest,
) (httptransport.CompetitionResponse, error) {
	comp, err := h.Create.Execute(ctx, commands.CreateCompetitionCommand{
		CreatedBy:           userID,
		ChatID:              req.ChatID,
		DeclaredMemberCount: req.DeclaredMemberCount,
		AcceptFilesDeadline: req.AcceptFilesDeadline,
		PollingDeadline:     req.PollingDeadline,
		MinTextSize:         req.MinTextSize,
		MaxTextSize:         req.MaxTextSize,
		MaxFilesPerMember:   req.MaxFilesPerMember,
		Subject:             req.Subject,
		SubjectExt:          req.SubjectExt,
		PollingSchemeID:     req.PollingSchemeID,
	})
	if err != nil {
		return httptransport.CompetitionResponse{}, err
	}
	return competitionResponse(comp), nil
}

func (h Handler) UpdateCompetitionHandler(
	ctx context.Context,
	compID int64,
	userID int64,
	req httptransport.UpdateCompetitionRequest,
) (httptransport.CompetitionResponse, error) {
	comp, err := h.Update.Execute(ctx, commands.UpdatePropertiesCommand{
		CompetitionID:       compID,
		CallerID:            userID,
		Subject:             req.Subject,
		SubjectExt:          req.SubjectExt,
		MinTextSize:         req.MinTextSize,
		MaxTextSize:         req.MaxTextSize,
		MaxFilesPerMember:   req.MaxFilesPerMember,
		AcceptFilesDeadline: req.AcceptFilesDeadline,
		PollingDeadline:     req.PollingDeadline,
	})
	if err != nil {
		return httptransport.CompetitionResponse{}, err
	}
	return competitionResponse(comp), nil
}

func (h Handler) JoinCompetitionHandler(
	ctx context.Context,
	compID int64,
	userID int64,
	req httptransport.JoinCompetitionRequest,
) (httptransport.CompetitionResponse, error) {
	comp, err := h.Join.Execute(ctx, commands.JoinCompetitionCommand{
		CompetitionID: compID,
		UserID:        userID,
		UserTitle:     req.UserTitle,
		EntryToken:    req.EntryToken,
	})
	if err != nil {
		return httptransport.CompetitionResponse{}, err
	}
	return competitionResponse(comp), nil
}

func (h Handler) LeaveCompetitionHandler(ctx context.Context, compID int64, userID int64) error {
	return h.Leave.Execute(ctx, commands.LeaveCompetitionCommand{
		CompetitionID: compID,
		UserID:        userID,
	})
}

func (h Handler) SubmitFileHandler(
	ctx context.Context,
	compID int64,
	userID int64,
	req httptransport.SubmitFileRequest,
) error {
	return h.Submit.Execute(ctx, commands.SubmitFileCommand{
		CompetitionID: compID,
		UserID:        userID,
		FileID:        req.FileID,
		Title:         req.Title,
		TextSize:      req.TextSize,
	})
}

func (h Handler) AttachChatHandler(
	ctx context.Context,
	compID int64,
	req httptransport.AttachChatRequest,
) (httptransport.CompetitionResponse, error) {
	comp, err := h.Attach.Execute(ctx, commands.AttachChatCommand{
		CompetitionID: compID,
		ChatID:        req.ChatID,
	})
	if err != nil {
		return httptransport.CompetitionResponse{}, err
	}
	return competitionResponse(comp), nil
}

func (h Handler) CancelCompetitionHandler(
	ctx context.Context,
	compID int64,
	userID int64,
	req httptransport.CancelCompetitionRequest,
) error {
	return h.Cancel.Execute(ctx, commands.CancelCompetitionCommand{
		CompetitionID: compID,
		CallerID:      userID,
		Reason:        req.Reason,
	})
}

func (h Handler) GetCompetitionHandler(ctx context.Context, compID int64) (httptransport.CompetitionResponse, error) {
	comp, err := h.Get.Execute(ctx, compID)
	if err != nil {
		return httptransport.CompetitionResponse{}, err
	}
	return competitionResponse(comp), nil
}

func (h Handler) GetCompetitionStatHandler(ctx context.Context, compID int64) (httptransport.CompetitionStatResponse, error) {
	stat, err := h.Stat.Execute(ctx, compID)
	if err != nil {
		return httptransport.CompetitionStatResponse{}, err
	}
	resp := httptransport.CompetitionStatResponse{
		CompetitionID:    stat.CompetitionID,
		SubmittedMembers: stat.SubmittedMemberCount(),
		TotalTextSize:    stat.TotalSubmittedTextSize(),
	}
	for _, member := range stat.RegisteredMembers {
		resp.RegisteredMembers = append(resp.RegisteredMembers, httptransport.MemberItem{
			UserID:    member.ID,
			UserTitle: member.Title,
		})
	}
	for ownerID, files := range stat.SubmittedFiles {
		for _, file := range files {
			resp.SubmittedFiles = append(resp.SubmittedFiles, httptransport.SubmittedFileItem{
				FileID:   file.ID,
				OwnerID:  ownerID,
				Title:    file.Title,
				TextSize: file.TextSize,
				Loaded:   file.Loaded,
			})
		}
	}
	sort.Slice(resp.SubmittedFiles, func(i, j int) bool {
		return resp.SubmittedFiles[i].FileID < resp.SubmittedFiles[j].FileID
	})
	return resp, nil
}

func (h Handler) ListChatCompetitionsHandler(ctx context.Context, chatID int64) (httptransport.CompetitionListResponse, error) {
	items, err := h.ChatList.Execute(ctx, chatID)
	if err != nil {
		return httptransport.CompetitionListResponse{}, err
	}
	resp := httptransport.CompetitionListResponse{
		Items: make([]httptransport.CompetitionResponse, 0, len(items)),
	}
	for _, comp := range items {
		resp.Items = append(resp.Items, competitionResponse(comp))
	}
	return resp, nil
}

func (h Handler) GetUserStatsHandler(ctx context.Context, userID int64) (httptransport.UserStatsResponse, error) {
	stats, err := h.UserStats.Execute(ctx, userID)
	if err != nil {
		return httptransport.UserStatsResponse{}, err
	}
	return httptransport.UserStatsResponse{
		UserID:   stats.UserID,
		Wins:     stats.Wins,
		HalfWins: stats.HalfWins,
		Losses:   stats.Losses,
	}, nil
}

func competitionResponse(comp entities.Competition) httptransport.CompetitionResponse {
	return httptransport.CompetitionResponse{
		CompetitionID:       comp.ID,
		ChatID:              comp.ChatID,
		CreatedBy:           comp.CreatedBy,
		Stage:               string(comp.Stage()),
		Canceled:            comp.Canceled,
		OpenType:            comp.IsOpenType(),
		DeclaredMemberCount: comp.DeclaredMemberCount,
		EntryToken:          comp.EntryToken,
		AcceptFilesDeadline: comp.AcceptFilesDeadline,
		PollingDeadline:     comp.PollingDeadline,
		MinTextSize:         comp.MinTextSize,
		MaxTextSize:         comp.MaxTextSize,
		MaxFilesPerMember:   comp.MaxFilesPerMember,
		Subject:             comp.Subject,
		SubjectExt:          comp.SubjectExt,
		PollingSchemeID:     comp.PollingSchemeID,
		Created:             comp.Created,
		Confirmed:           comp.Confirmed,
		Started:             comp.Started,
		PollingStarted:      comp.PollingStarted,
		Finished:            comp.Finished,
	}
}
