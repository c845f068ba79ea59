package services

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type TeamStore interface {
	AddTeam(t *Team) error
	GetTeam(id string) (*Team, error)
	ListTeams(workspaceID string) ([]*Team, error)
	AddOccupation(o *Occupation) error
	GetOccupation(id string) (*Occupation, error)
	ListOccupations() ([]*Occupation, error)
}

type TeamService struct {
	store TeamStore
	now   func() time.Time
	idGen func() string
}

func NewTeamService(store TeamStore) *TeamService {
	return &TeamService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: uuid.NewString,
	}
}

type TeamCreate struct {
	WorkspaceID  string `json:"workspace_id"`
	Name         string `json:"name"`
	Function     string `json:"function"`
	OccupationID string `json:"occupation_id"`
	MemberCount  int    `json:"member_count"`
}

func (s *TeamService) Create(in TeamCreate) (*Team, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, NewInvalidError("team name is required")
	}
	if in.OccupationID != "" {
		occ, err := s.store.GetOccupation(in.OccupationID)
		if err != nil {
			return nil, err
		}
		if occ == nil {
			return nil, NewInvalidError("occupation not found")
		}
	}
	team := &Team{
		ID:           s.idGen(),
		WorkspaceID:  in.WorkspaceID,
		Name:         name,
		Function:     strings.TrimSpace(in.Function),
		OccupationID: in.OccupationID,
		MemberCount:  in.MemberCount,
		CreatedAt:    s.now(),
	}
	if err := s.store.AddTeam(team); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *TeamService) Get(id string) (*Team, error) {
	team, err := s.store.GetTeam(id)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, NewNotFoundError("team not found")
	}
	return team, nil
}

func (s *TeamService) List(workspaceID string) ([]*Team, error) {
	return s.store.ListTeams(workspaceID)
}

func (s *TeamService) Occupations() ([]*Occupation, error) {
	return s.store.ListOccupations()
}

// defaultOccupations covers common knowledge-work roles with their ideal
// value-adding / value-enabling / waste splits for portfolio balance.
var defaultOccupations = []struct {
	name, description          string
	adding, enabling, wastePct float64
}{
	{"Software Engineer", "Designs, builds and maintains software systems", 0.55, 0.30, 0.15},
	{"Product Manager", "Owns product direction and coordinates delivery", 0.45, 0.40, 0.15},
	{"Designer", "Creates user experiences and visual design", 0.55, 0.30, 0.15},
	{"Data Analyst", "Turns data into decisions and reporting", 0.50, 0.35, 0.15},
	{"Marketing Specialist", "Plans and runs campaigns and content", 0.45, 0.40, 0.15},
	{"Operations", "Keeps internal processes and tooling running", 0.40, 0.45, 0.15},
}

// SeedOccupations inserts the default occupation set when the store is
// empty. Safe to call on every startup.
func (s *TeamService) SeedOccupations() error {
	existing, err := s.store.ListOccupations()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	now := s.now()
	for _, d := range defaultOccupations {
		occ := &Occupation{
			ID:                 s.idGen(),
			Name:               d.name,
			Description:        d.description,
			IdealValueAdding:   d.adding,
			IdealValueEnabling: d.enabling,
			IdealWaste:         d.wastePct,
			CreatedAt:          now,
		}
		if err := s.store.AddOccupation(occ); err != nil {
			return err
		}
	}
	return nil
}
