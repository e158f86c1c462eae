package server

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// Errors surfaced by the check-in, spin and claim flows. Handlers translate
// these into HTTP statuses; nothing here is retried automatically.
var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrStaleQRCode        = errors.New("stale qr code")
	ErrInvalidSignature   = errors.New("invalid signature")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrAlreadySpun        = errors.New("already spun")
	ErrNoPrizesAvailable  = errors.New("no prizes available")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrSlugTaken          = errors.New("identifier already in use")
	ErrInUse              = errors.New("resource still referenced")
)

// errStockConflict signals that the chosen prize ran out of stock between
// pool selection and commit. The draw engine refreshes the pool and retries.
var errStockConflict = errors.New("prize out of stock")

type Location struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Points      int     `json:"points"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	QRVersion   int     `json:"qrVersion"`
}

type SubEvent struct {
	ID         string `json:"id"`
	LocationID int    `json:"locationId"`
	Name       string `json:"name"`
	Schedule   string `json:"schedule,omitempty"`
	Points     int    `json:"points"`
	QRVersion  int    `json:"qrVersion"`
}

type Participant struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Points    int    `json:"points"`
	CreatedAt string `json:"createdAt"`
}

type Checkin struct {
	LocationID int    `json:"locationId"`
	Method     string `json:"method"`
	CreatedAt  string `json:"createdAt"`
}

type SubEventCheckin struct {
	SubEventID    string `json:"subEventId"`
	LocationID    int    `json:"locationId"`
	PointsAwarded int    `json:"pointsAwarded"`
	CreatedAt     string `json:"createdAt"`
}

type Prize struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Weight int    `json:"weight"`
	Stock  int    `json:"stock"`
}

type Spin struct {
	ParticipantID string  `json:"participantId"`
	Prize         string  `json:"prize"`
	ClaimCode     string  `json:"claimCode"`
	Claimed       bool    `json:"claimed"`
	ClaimedAt     *string `json:"claimedAt,omitempty"`
	CreatedAt     string  `json:"createdAt"`
}

// ClaimInfo is what staff see when they look up a claim code at the prize
// desk.
type ClaimInfo struct {
	ParticipantID   string  `json:"participantId"`
	ParticipantName string  `json:"participantName"`
	Prize           string  `json:"prize"`
	Claimed         bool    `json:"claimed"`
	ClaimedAt       *string `json:"claimedAt,omitempty"`
}

type HeroCard struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
	SortOrder int    `json:"sortOrder"`
}

type StatsResponse struct {
	Participants int `json:"participants"`
	Checkins     int `json:"checkins"`
	Spins        int `json:"spins"`
	UnclaimedPrizes int `json:"unclaimedPrizes"`
}

// Store is the persistence boundary for the whole application. The check-in
// authority and the prize draw engine speak only to this interface, so the
// verification protocol exists exactly once regardless of backend.
//
// CreateCheckin, CreateSubEventCheckin and CreateSpin are conditional
// creates: they commit the record and its companion write (points increment,
// stock decrement) as one transaction and report created=false when the
// record already existed. All exclusivity comes from these keyed conditional
// writes; there are no application-level locks.
type Store interface {
	CreateParticipant(ctx context.Context, username, passwordHash, firstName, lastName string) (Participant, error)
	ParticipantCredentials(ctx context.Context, username string) (participantID, passwordHash string, err error)
	GetParticipant(ctx context.Context, id string) (Participant, error)
	ListParticipants(ctx context.Context) ([]Participant, error)
	AdjustPoints(ctx context.Context, id string, delta int) (newTotal int, err error)
	DeleteParticipant(ctx context.Context, id string) error
	CreateParticipantSession(ctx context.Context, participantID string) (token string, err error)
	ParticipantFromSession(ctx context.Context, token string) (participantID string, err error)

	ListLocations(ctx context.Context) ([]Location, error)
	GetLocation(ctx context.Context, id int) (Location, error)
	CreateLocation(ctx context.Context, req LocationRequest) (Location, error)
	UpdateLocation(ctx context.Context, id int, req LocationRequest) (Location, error)
	DeleteLocation(ctx context.Context, id int) error
	BumpLocationQRVersion(ctx context.Context, id int) (newVersion int, err error)

	ListSubEvents(ctx context.Context, locationID int) ([]SubEvent, error)
	GetSubEvent(ctx context.Context, id string) (SubEvent, error)
	CreateSubEvent(ctx context.Context, req SubEventRequest) (SubEvent, error)
	UpdateSubEvent(ctx context.Context, id string, req SubEventRequest) (SubEvent, error)
	DeleteSubEvent(ctx context.Context, id string) error
	BumpSubEventQRVersion(ctx context.Context, id string) (newVersion int, err error)

	HasCheckin(ctx context.Context, participantID string, locationID int) (bool, error)
	CreateCheckin(ctx context.Context, participantID string, locationID, points int, method string) (created bool, err error)
	ListCheckins(ctx context.Context, participantID string) ([]Checkin, error)

	HasSubEventCheckin(ctx context.Context, participantID, subEventID string) (bool, error)
	CreateSubEventCheckin(ctx context.Context, participantID, subEventID string, locationID, bonusPoints int) (created bool, awarded int, err error)
	ListSubEventCheckins(ctx context.Context, participantID string) ([]SubEventCheckin, error)

	ListPrizes(ctx context.Context) ([]Prize, error)
	CreatePrize(ctx context.Context, req PrizeRequest) (Prize, error)
	UpdatePrize(ctx context.Context, id int, req PrizeRequest) (Prize, error)
	DeletePrize(ctx context.Context, id int) error
	EligiblePrizes(ctx context.Context) ([]Prize, error)

	CreateSpin(ctx context.Context, participantID string, prize Prize, claimCode string) (created bool, err error)
	GetSpin(ctx context.Context, participantID string) (Spin, error)
	SpinByClaimCode(ctx context.Context, code string) (ClaimInfo, error)
	MarkClaimed(ctx context.Context, participantID string) (alreadyClaimed bool, err error)

	SpinThreshold(ctx context.Context) (int, error)
	SetSpinThreshold(ctx context.Context, threshold int) error

	ListHeroCards(ctx context.Context) ([]HeroCard, error)
	CreateHeroCard(ctx context.Context, req HeroCardRequest) (HeroCard, error)
	UpdateHeroCard(ctx context.Context, id int, req HeroCardRequest) (HeroCard, error)
	DeleteHeroCard(ctx context.Context, id int) error

	Stats(ctx context.Context) (StatsResponse, error)
}
