package clickhouse

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/clickhouse"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang/mock/gomock"
	"github.com/raisevaultlabs/raisevault-backend/internal/escrow/model"
	"github.com/stretchr/testify/suite"
	tcClickhouse "github.com/testcontainers/testcontainers-go/modules/clickhouse"
)

const (
	clickhouseImage = "clickhouse/clickhouse-server:25.11"
)

type RepositorySuite struct {
	suite.Suite
	ctx        context.Context
	cancel     context.CancelFunc
	container  *tcClickhouse.ClickHouseContainer
	dsn        string
	repo       *Repository
	metrics    *MockMetrics
	metricsCtl *gomock.Controller
	testCtx    context.Context
	testCancel context.CancelFunc
}

func TestRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed suite in short mode")
	}
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupSuite() {
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 5*time.Minute)

	container, err := tcClickhouse.Run(s.ctx,
		clickhouseImage,
		tcClickhouse.WithUsername("default"),
		tcClickhouse.WithDatabase("default"),
	)
	s.Require().NoError(err)

	s.container = container

	dsn, err := container.ConnectionString(s.ctx)
	s.Require().NoError(err)
	s.dsn = dsn
}

func (s *RepositorySuite) TearDownSuite() {
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *RepositorySuite) SetupTest() {
	s.testCtx, s.testCancel = context.WithTimeout(context.Background(), time.Minute)
	s.metricsCtl = gomock.NewController(s.T())
	s.metrics = NewMockMetrics(s.metricsCtl)
	s.metrics.EXPECT().Observe(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	s.Require().NoError(applyMigrations(s.dsn, true))

	repo, err := NewRepository(s.dsn, s.metrics)
	s.Require().NoError(err)
	s.repo = repo
}

func (s *RepositorySuite) TearDownTest() {
	if s.testCancel != nil {
		s.testCancel()
	}
	s.Require().NoError(applyMigrations(s.dsn, false))
	if s.metricsCtl != nil {
		s.metricsCtl.Finish()
	}
}

func applyMigrations(dsn string, up bool) error {
	dir, err := filepath.Abs(filepath.Join("..", "..", "..", "..", "migrations", "clickhouse"))
	if err != nil {
		return err
	}
	m, err := migrate.New(fmt.Sprintf("file://%s", filepath.ToSlash(dir)), dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if up {
		err = m.Up()
	} else {
		err = m.Down()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

func newEvent(kind model.EventKind, depositor string, amount, units, total uint64, ts time.Time) model.Event {
	return model.Event{
		ID:          fmt.Sprintf("00000000-0000-0000-0000-%012d", ts.UnixNano()%1e12),
		Kind:        kind,
		Depositor:   depositor,
		Amount:      amount,
		Units:       units,
		TotalRaised: total,
		Outcome:     model.OutcomeUnresolved,
		OccurredAt:  ts,
	}
}

func (s *RepositorySuite) TestInsertAndQueryEvents() {
	base := time.Now().UTC().Truncate(time.Second)
	events := []model.Event{
		newEvent(model.EventPurchased, "alice", 60, 20, 60, base),
		newEvent(model.EventPurchased, "bob", 9, 3, 69, base.Add(time.Second)),
		newEvent(model.EventRefunded, "alice", 60, 0, 69, base.Add(2*time.Second)),
	}

	s.Require().NoError(s.repo.InsertEvents(s.testCtx, events))

	got, err := s.repo.EventsByDepositor(s.testCtx, "alice", 10)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(model.EventRefunded, got[0].Kind)
	s.Equal(model.EventPurchased, got[1].Kind)
	s.Equal(uint64(60), got[1].Amount)
	s.Equal(uint64(20), got[1].Units)
}

func (s *RepositorySuite) TestInsertReconciliations() {
	report := model.ReconciliationReport{
		RanAt:           time.Now().UTC().Truncate(time.Second),
		Positions:       2,
		ContributedSum:  69,
		OutstandingOwed: 23,
		TotalRaised:     69,
		ValueCustody:    69,
		ClaimCustody:    100,
		Consistent:      true,
	}

	s.Require().NoError(s.repo.InsertReconciliations(s.testCtx, []model.ReconciliationReport{report}))
}
