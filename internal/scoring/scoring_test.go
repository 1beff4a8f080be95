package scoring

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Player IDs shared by the scoring fixtures.
const (
	strikerID    = uint(1)
	nonStrikerID = uint(2)
	nextBatID    = uint(3)
	bowlerAID    = uint(11)
	bowlerBID    = uint(12)
)

type fakeNotifier struct {
	matchIDs []uint
	payloads []interface{}
}

func (f *fakeNotifier) Publish(matchID uint, payload interface{}) {
	f.matchIDs = append(f.matchIDs, matchID)
	f.payloads = append(f.payloads, payload)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Innings{}, &BallDelivery{}, &PlayerInningsStat{}))
	return db
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// scoringFixture is a live innings with two openers at the crease, player 1
// on strike, ready to receive deliveries.
type scoringFixture struct {
	repo      ScoringRepository
	processor *DeliveryProcessor
	undo      *UndoEngine
	notifier  *fakeNotifier
	innings   *Innings
}

func newScoringFixture(t *testing.T, mutate ...func(*Innings)) *scoringFixture {
	t.Helper()
	repo := NewGormScoringRepository(newTestDB(t))

	innings := &Innings{
		MatchID:       1,
		Number:        1,
		BattingTeamID: 100,
		BowlingTeamID: 200,
		OversLimit:    20,
		Status:        InningsInProgress,
	}
	for _, m := range mutate {
		m(innings)
	}
	require.NoError(t, repo.CreateInnings(innings))

	require.NoError(t, repo.CreatePlayerStat(&PlayerInningsStat{
		InningsID: innings.ID, PlayerID: strikerID, BattingOrder: 1, OnStrike: true,
	}))
	require.NoError(t, repo.CreatePlayerStat(&PlayerInningsStat{
		InningsID: innings.ID, PlayerID: nonStrikerID, BattingOrder: 2,
	}))

	notifier := &fakeNotifier{}
	locks := newInningsLocks()
	log := quietLogger()
	return &scoringFixture{
		repo:      repo,
		processor: NewDeliveryProcessor(repo, NewRuleEngine(), notifier, locks, log),
		undo:      NewUndoEngine(repo, notifier, locks, log),
		notifier:  notifier,
		innings:   innings,
	}
}

// apply submits a delivery and fails the test on rejection.
func (f *scoringFixture) apply(t *testing.T, cmd DeliveryCommand) (*BallDelivery, *Snapshot) {
	t.Helper()
	d, snap, err := f.processor.Apply(f.innings.ID, cmd)
	require.NoError(t, err)
	return d, snap
}

func (f *scoringFixture) reloadInnings(t *testing.T) *Innings {
	t.Helper()
	innings, err := f.repo.GetInnings(f.innings.ID)
	require.NoError(t, err)
	return innings
}

func (f *scoringFixture) stat(t *testing.T, playerID uint) *PlayerInningsStat {
	t.Helper()
	stat, err := f.repo.GetPlayerStat(f.innings.ID, playerID)
	require.NoError(t, err)
	return stat
}

// ball is shorthand for a plain off-the-bat delivery.
func ball(over int, batsman uint, bowler uint, runs int) DeliveryCommand {
	return DeliveryCommand{OverNumber: over, BatsmanID: batsman, BowlerID: bowler, Runs: runs}
}
