package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/Dosada05/calcutta-bracket/models"
	"github.com/Dosada05/calcutta-bracket/repositories"
)

// memStore is an in-memory stand-in for the three tables. Transactions snapshot the
// whole store and restore it when the callback fails.
type memStore struct {
	mu          sync.Mutex
	tournaments map[int]*models.Tournament
	teams       map[int][]*models.Team
	games       map[int][]*models.Game
	nextID      int
	nextTeamID  int

	beforeBump func(s *memStore, tournamentID int)
	updateErr  error
}

func newMemStore() *memStore {
	return &memStore{
		tournaments: map[int]*models.Tournament{},
		teams:       map[int][]*models.Team{},
		games:       map[int][]*models.Game{},
		nextID:      1,
		nextTeamID:  1,
	}
}

type memState struct {
	tournaments map[int]*models.Tournament
	teams       map[int][]*models.Team
	games       map[int][]*models.Game
	nextID      int
	nextTeamID  int
}

func (s *memStore) snapshot() memState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := memState{
		tournaments: map[int]*models.Tournament{},
		teams:       map[int][]*models.Team{},
		games:       map[int][]*models.Game{},
		nextID:      s.nextID,
		nextTeamID:  s.nextTeamID,
	}
	for id, t := range s.tournaments {
		st.tournaments[id] = copyTournament(t)
	}
	for id, teams := range s.teams {
		st.teams[id] = copyTeams(teams)
	}
	for id, games := range s.games {
		st.games[id] = copyGames(games)
	}
	return st
}

func (s *memStore) restore(st memState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tournaments, s.teams, s.games = st.tournaments, st.teams, st.games
	s.nextID, s.nextTeamID = st.nextID, st.nextTeamID
}

// storedGames returns a copy of what is committed for a tournament.
func (s *memStore) storedGames(tournamentID int) []*models.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyGames(s.games[tournamentID])
}

func (s *memStore) version(tournamentID int) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tournaments[tournamentID].BracketVersion
}

func copyTournament(t *models.Tournament) *models.Tournament {
	c := *t
	c.Regions = append([]string(nil), t.Regions...)
	return &c
}

func copyTeams(teams []*models.Team) []*models.Team {
	out := make([]*models.Team, len(teams))
	for i, tm := range teams {
		c := *tm
		out[i] = &c
	}
	return out
}

func copyGames(games []*models.Game) []*models.Game {
	out := make([]*models.Game, len(games))
	for i, g := range games {
		out[i] = g.Clone()
	}
	return out
}

type memTransactor struct{ store *memStore }

func (m memTransactor) InTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	before := m.store.snapshot()
	if err := fn(nil); err != nil {
		m.store.restore(before)
		return err
	}
	return nil
}

type memTournamentRepo struct{ store *memStore }

func (r memTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.tournaments {
		if existing.Name == t.Name {
			return repositories.ErrTournamentNameConflict
		}
	}
	t.ID = s.nextID
	s.nextID++
	s.tournaments[t.ID] = copyTournament(t)
	return nil
}

func (r memTournamentRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Tournament, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return copyTournament(t), nil
}

func (r memTournamentRepo) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	return r.GetByID(ctx, exec, id)
}

func (r memTournamentRepo) List(_ context.Context, limit, offset int) ([]*models.Tournament, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]*models.Tournament, 0, len(s.tournaments))
	for _, t := range s.tournaments {
		all = append(all, copyTournament(t))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if offset >= len(all) {
		return []*models.Tournament{}, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r memTournamentRepo) Update(_ context.Context, _ repositories.SQLExecutor, t *models.Tournament) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.tournaments[t.ID]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	for id, existing := range s.tournaments {
		if id != t.ID && existing.Name == t.Name {
			return repositories.ErrTournamentNameConflict
		}
	}
	updated := copyTournament(t)
	updated.BracketVersion = stored.BracketVersion
	s.tournaments[t.ID] = updated
	return nil
}

func (r memTournamentRepo) BumpBracketVersion(_ context.Context, _ repositories.SQLExecutor, id int, expected int64) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.beforeBump != nil {
		s.beforeBump(s, id)
	}
	t, ok := s.tournaments[id]
	if !ok || t.BracketVersion != expected {
		return 0, repositories.ErrBracketVersionConflict
	}
	t.BracketVersion++
	return t.BracketVersion, nil
}

type memTeamRepo struct{ store *memStore }

func (r memTeamRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]*models.Team, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyTeams(s.teams[tournamentID]), nil
}

func (r memTeamRepo) ReplaceForTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int, teams []*models.Team) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tournaments[tournamentID]; !ok {
		return repositories.ErrTeamTournamentInvalid
	}
	names := map[string]bool{}
	for _, tm := range teams {
		if names[tm.SchoolName] {
			return repositories.ErrTeamNameConflict
		}
		names[tm.SchoolName] = true
		tm.ID = s.nextTeamID
		tm.TournamentID = tournamentID
		s.nextTeamID++
	}
	s.teams[tournamentID] = copyTeams(teams)
	return nil
}

type memGameRepo struct{ store *memStore }

func (r memGameRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]*models.Game, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	games := copyGames(s.games[tournamentID])
	// Storage order is not bracket order.
	sort.Slice(games, func(i, j int) bool { return games[i].ID < games[j].ID })
	return games, nil
}

func (r memGameRepo) InsertAll(_ context.Context, _ repositories.SQLExecutor, games []*models.Game) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range games {
		s.games[g.TournamentID] = append(s.games[g.TournamentID], g.Clone())
	}
	return nil
}

func (r memGameRepo) UpdateState(_ context.Context, _ repositories.SQLExecutor, games []*models.Game) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range games {
		if s.updateErr != nil {
			return s.updateErr
		}
		found := false
		for _, stored := range s.games[g.TournamentID] {
			if stored.ID == g.ID {
				c := g.Clone()
				stored.Team1ID, stored.Team2ID, stored.WinnerID = c.Team1ID, c.Team2ID, c.WinnerID
				found = true
			}
		}
		if !found {
			return repositories.ErrGameNotFound
		}
	}
	return nil
}

func (r memGameRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, tournamentID)
	return nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	brackets []*models.Bracket
}

func (n *recordingNotifier) BroadcastBracket(b *models.Bracket) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.brackets = append(n.brackets, b)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.brackets)
}

type recordingSnapshots struct {
	published []int64
	removed   []int
	err       error
}

func (p *recordingSnapshots) Publish(_ context.Context, b *models.Bracket) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	p.published = append(p.published, b.Version)
	return p.URL(b.TournamentID), nil
}

func (p *recordingSnapshots) Remove(_ context.Context, tournamentID int) error {
	p.removed = append(p.removed, tournamentID)
	return p.err
}

func (p *recordingSnapshots) URL(tournamentID int) string {
	return fmt.Sprintf("https://cdn.example.com/brackets/%d.json", tournamentID)
}

var errStorageDown = errors.New("storage down")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceFixture struct {
	store       *memStore
	notifier    *recordingNotifier
	snapshots   *recordingSnapshots
	brackets    BracketService
	teams       TeamService
	tournaments TournamentService
}

func newServiceFixture() *serviceFixture {
	store := newMemStore()
	f := &serviceFixture{
		store:     store,
		notifier:  &recordingNotifier{},
		snapshots: &recordingSnapshots{},
	}
	tx := memTransactor{store: store}
	tournamentRepo := memTournamentRepo{store: store}
	teamRepo := memTeamRepo{store: store}
	gameRepo := memGameRepo{store: store}
	logger := discardLogger()
	f.brackets = NewBracketService(tx, tournamentRepo, teamRepo, gameRepo, f.notifier, f.snapshots, logger)
	f.teams = NewTeamService(tx, tournamentRepo, teamRepo, gameRepo, f.notifier, f.snapshots, logger)
	f.tournaments = NewTournamentService(tx, tournamentRepo, teamRepo, gameRepo, f.notifier, f.snapshots, logger)
	return f
}

// fourTeamTournament stores the East region of seeds 1..4 with team ids 1..4.
func (f *serviceFixture) fourTeamTournament() int {
	ctx := context.Background()
	t, err := f.tournaments.CreateTournament(ctx, CreateTournamentInput{Name: "Mini", NumRounds: 2, Regions: []string{"East"}})
	if err != nil {
		panic(err)
	}
	_, err = f.teams.ReplaceTeams(ctx, t.ID, []TeamInput{
		{SchoolName: "One", Seed: 1, Region: "East"},
		{SchoolName: "Two", Seed: 2, Region: "East"},
		{SchoolName: "Three", Seed: 3, Region: "East"},
		{SchoolName: "Four", Seed: 4, Region: "East"},
	})
	if err != nil {
		panic(err)
	}
	f.notifier.brackets = nil
	f.snapshots.removed = nil
	return t.ID
}
