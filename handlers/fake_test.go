package handlers

import (
	"context"
	"io"
	"time"

	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/scoring"
	"github.com/Dosada05/prediction-league/services"
	"github.com/Dosada05/prediction-league/stages"
)

type FakeAuthService struct {
	RegisterFunc func(ctx context.Context, input services.RegisterInput) (*models.User, error)
	LoginFunc    func(ctx context.Context, input services.LoginInput) (*models.User, error)
}

func (f *FakeAuthService) Register(ctx context.Context, input services.RegisterInput) (*models.User, error) {
	return f.RegisterFunc(ctx, input)
}

func (f *FakeAuthService) Login(ctx context.Context, input services.LoginInput) (*models.User, error) {
	return f.LoginFunc(ctx, input)
}

type FakeUserService struct {
	GetUserByIDFunc func(ctx context.Context, id int) (*models.User, error)
	UpdateUserFunc  func(ctx context.Context, id int, input services.UpdateUserInput) (*models.User, error)
}

func (f *FakeUserService) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	return f.GetUserByIDFunc(ctx, id)
}

func (f *FakeUserService) UpdateUser(ctx context.Context, id int, input services.UpdateUserInput) (*models.User, error) {
	return f.UpdateUserFunc(ctx, id, input)
}

type FakeStageService struct {
	ListStagesFunc       func(ctx context.Context) ([]models.Stage, error)
	GetStageFunc         func(ctx context.Context, id int) (*models.Stage, error)
	CreateStageFunc      func(ctx context.Context, input services.StageInput) (*models.Stage, error)
	UpdateStageFunc      func(ctx context.Context, id int, input services.StageInput) (*models.Stage, error)
	DeleteStageFunc      func(ctx context.Context, id int) error
	ListStageMatchesFunc func(ctx context.Context, stageID int) ([]models.Match, error)
	ClassifyFunc         func(ctx context.Context, mode stages.Mode) (stages.Analysis, error)
}

func (f *FakeStageService) ListStages(ctx context.Context) ([]models.Stage, error) {
	return f.ListStagesFunc(ctx)
}

func (f *FakeStageService) GetStage(ctx context.Context, id int) (*models.Stage, error) {
	return f.GetStageFunc(ctx, id)
}

func (f *FakeStageService) CreateStage(ctx context.Context, input services.StageInput) (*models.Stage, error) {
	return f.CreateStageFunc(ctx, input)
}

func (f *FakeStageService) UpdateStage(ctx context.Context, id int, input services.StageInput) (*models.Stage, error) {
	return f.UpdateStageFunc(ctx, id, input)
}

func (f *FakeStageService) DeleteStage(ctx context.Context, id int) error {
	return f.DeleteStageFunc(ctx, id)
}

func (f *FakeStageService) ListStageMatches(ctx context.Context, stageID int) ([]models.Match, error) {
	return f.ListStageMatchesFunc(ctx, stageID)
}

func (f *FakeStageService) ListMatchesForStage(ctx context.Context, stageID int) ([]models.Match, error) {
	return f.ListStageMatchesFunc(ctx, stageID)
}

func (f *FakeStageService) Classify(ctx context.Context, mode stages.Mode) (stages.Analysis, error) {
	return f.ClassifyFunc(ctx, mode)
}

type FakeTeamService struct {
	CreateTeamFunc     func(ctx context.Context, input services.CreateTeamInput) (*models.Team, error)
	GetTeamFunc        func(ctx context.Context, id int) (*models.Team, error)
	ListTeamsFunc      func(ctx context.Context) ([]models.Team, error)
	UploadTeamLogoFunc func(ctx context.Context, teamID int, contentType string, file io.Reader) (*models.Team, error)
}

func (f *FakeTeamService) CreateTeam(ctx context.Context, input services.CreateTeamInput) (*models.Team, error) {
	return f.CreateTeamFunc(ctx, input)
}

func (f *FakeTeamService) GetTeam(ctx context.Context, id int) (*models.Team, error) {
	return f.GetTeamFunc(ctx, id)
}

func (f *FakeTeamService) ListTeams(ctx context.Context) ([]models.Team, error) {
	return f.ListTeamsFunc(ctx)
}

func (f *FakeTeamService) UploadTeamLogo(ctx context.Context, teamID int, contentType string, file io.Reader) (*models.Team, error) {
	return f.UploadTeamLogoFunc(ctx, teamID, contentType, file)
}

type FakeMatchService struct {
	CreateMatchFunc      func(ctx context.Context, input services.CreateMatchInput) (*models.Match, error)
	GetMatchFunc         func(ctx context.Context, id int) (*models.Match, error)
	ListMatchesFunc      func(ctx context.Context, day *time.Time) ([]models.Match, error)
	RecordFinalScoreFunc func(ctx context.Context, matchID int, input services.FinalScoreInput) (*models.Match, error)
	RecomputeAllFunc     func(ctx context.Context) (int, error)
}

func (f *FakeMatchService) CreateMatch(ctx context.Context, input services.CreateMatchInput) (*models.Match, error) {
	return f.CreateMatchFunc(ctx, input)
}

func (f *FakeMatchService) GetMatch(ctx context.Context, id int) (*models.Match, error) {
	return f.GetMatchFunc(ctx, id)
}

func (f *FakeMatchService) ListMatches(ctx context.Context, day *time.Time) ([]models.Match, error) {
	return f.ListMatchesFunc(ctx, day)
}

func (f *FakeMatchService) RecordFinalScore(ctx context.Context, matchID int, input services.FinalScoreInput) (*models.Match, error) {
	return f.RecordFinalScoreFunc(ctx, matchID, input)
}

func (f *FakeMatchService) RecomputeAll(ctx context.Context) (int, error) {
	return f.RecomputeAllFunc(ctx)
}

type FakeBetService struct {
	PlaceBetFunc      func(ctx context.Context, userID int, input services.PlaceBetInput) (*models.Bet, bool, error)
	UpdateBetFunc     func(ctx context.Context, betID, userID int, input services.PredictionInput) (*models.Bet, error)
	GetBetFunc        func(ctx context.Context, betID, viewerID int) (*models.Bet, error)
	ListUserBetsFunc  func(ctx context.Context, userID, viewerID int) ([]models.Bet, error)
	ListStageBetsFunc func(ctx context.Context, stageID, viewerID int) ([]models.Bet, error)
}

func (f *FakeBetService) PlaceBet(ctx context.Context, userID int, input services.PlaceBetInput) (*models.Bet, bool, error) {
	return f.PlaceBetFunc(ctx, userID, input)
}

func (f *FakeBetService) UpdateBet(ctx context.Context, betID, userID int, input services.PredictionInput) (*models.Bet, error) {
	return f.UpdateBetFunc(ctx, betID, userID, input)
}

func (f *FakeBetService) GetBet(ctx context.Context, betID, viewerID int) (*models.Bet, error) {
	return f.GetBetFunc(ctx, betID, viewerID)
}

func (f *FakeBetService) ListUserBets(ctx context.Context, userID, viewerID int) ([]models.Bet, error) {
	return f.ListUserBetsFunc(ctx, userID, viewerID)
}

func (f *FakeBetService) ListStageBets(ctx context.Context, stageID, viewerID int) ([]models.Bet, error) {
	return f.ListStageBetsFunc(ctx, stageID, viewerID)
}

type FakeLeaderboardService struct {
	LeaderboardFunc func(ctx context.Context) ([]scoring.Standing, error)
}

func (f *FakeLeaderboardService) Leaderboard(ctx context.Context) ([]scoring.Standing, error) {
	return f.LeaderboardFunc(ctx)
}
