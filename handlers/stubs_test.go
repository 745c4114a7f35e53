package handlers

import (
	"context"
	"errors"

	"github.com/Dosada05/calcutta-bracket/models"
	"github.com/Dosada05/calcutta-bracket/services"
)

var errNotStubbed = errors.New("not stubbed")

type stubBracketService struct {
	validate func(ctx context.Context, tournamentID int) (*models.BracketValidation, error)
	get      func(ctx context.Context, tournamentID int) (*services.BracketView, error)
	generate func(ctx context.Context, tournamentID int) (*services.BracketView, error)
	sel      func(ctx context.Context, tournamentID int, gameID string, teamID int, expected *int64) (*services.BracketView, error)
	unsel    func(ctx context.Context, tournamentID int, gameID string, expected *int64) (*services.BracketView, error)
}

func (s *stubBracketService) ValidateBracket(ctx context.Context, tournamentID int) (*models.BracketValidation, error) {
	if s.validate == nil {
		return nil, errNotStubbed
	}
	return s.validate(ctx, tournamentID)
}

func (s *stubBracketService) GetBracket(ctx context.Context, tournamentID int) (*services.BracketView, error) {
	if s.get == nil {
		return nil, errNotStubbed
	}
	return s.get(ctx, tournamentID)
}

func (s *stubBracketService) GenerateBracket(ctx context.Context, tournamentID int) (*services.BracketView, error) {
	if s.generate == nil {
		return nil, errNotStubbed
	}
	return s.generate(ctx, tournamentID)
}

func (s *stubBracketService) SelectWinner(ctx context.Context, tournamentID int, gameID string, teamID int, expected *int64) (*services.BracketView, error) {
	if s.sel == nil {
		return nil, errNotStubbed
	}
	return s.sel(ctx, tournamentID, gameID, teamID, expected)
}

func (s *stubBracketService) UnselectWinner(ctx context.Context, tournamentID int, gameID string, expected *int64) (*services.BracketView, error) {
	if s.unsel == nil {
		return nil, errNotStubbed
	}
	return s.unsel(ctx, tournamentID, gameID, expected)
}

type stubTournamentService struct {
	tournaments map[int]*models.Tournament
	created     *services.CreateTournamentInput
	createErr   error
	updated     *services.UpdateTournamentInput
	updateErr   error
	limit       int
	offset      int
}

func (s *stubTournamentService) CreateTournament(_ context.Context, input services.CreateTournamentInput) (*models.Tournament, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = &input
	return &models.Tournament{ID: 9, Name: input.Name, NumRounds: input.NumRounds, Regions: input.Regions}, nil
}

func (s *stubTournamentService) GetTournament(_ context.Context, id int) (*models.Tournament, error) {
	t, ok := s.tournaments[id]
	if !ok {
		return nil, services.ErrTournamentNotFound
	}
	return t, nil
}

func (s *stubTournamentService) ListTournaments(_ context.Context, limit, offset int) ([]*models.Tournament, error) {
	s.limit, s.offset = limit, offset
	out := make([]*models.Tournament, 0, len(s.tournaments))
	for _, t := range s.tournaments {
		out = append(out, t)
	}
	return out, nil
}

func (s *stubTournamentService) UpdateTournament(_ context.Context, id int, input services.UpdateTournamentInput) (*models.Tournament, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	if _, ok := s.tournaments[id]; !ok {
		return nil, services.ErrTournamentNotFound
	}
	s.updated = &input
	return &models.Tournament{ID: id, Name: input.Name, NumRounds: input.NumRounds, Regions: input.Regions, FirstFour: input.FirstFour}, nil
}

type stubTeamService struct {
	replaced []services.TeamInput
	err      error
}

func (s *stubTeamService) ListTeams(_ context.Context, tournamentID int) ([]*models.Team, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []*models.Team{{ID: 1, TournamentID: tournamentID, SchoolName: "One", Seed: 1, Region: "East"}}, nil
}

func (s *stubTeamService) ReplaceTeams(_ context.Context, tournamentID int, input []services.TeamInput) ([]*models.Team, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.replaced = input
	teams := make([]*models.Team, len(input))
	for i, in := range input {
		teams[i] = &models.Team{ID: i + 1, TournamentID: tournamentID, SchoolName: in.SchoolName, Seed: in.Seed, Region: in.Region}
	}
	return teams, nil
}

func intPtr(v int) *int { return &v }

// sampleBracket is a single ready championship game between teams 1 and 2.
func sampleBracket(tournamentID int, version int64) *models.Bracket {
	return &models.Bracket{
		TournamentID: tournamentID,
		Regions:      []string{"East"},
		Rounds:       []models.Round{models.RoundChampionship},
		Version:      version,
		Games: []*models.Game{
			{ID: "championship-1", TournamentID: tournamentID, Round: models.RoundChampionship, Team1ID: intPtr(1), Team2ID: intPtr(2)},
		},
	}
}
