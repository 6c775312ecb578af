package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"mediation_flow_go/models"
	"mediation_flow_go/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testClock is a settable clock shared by the services under test
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type testEnv struct {
	db    *gorm.DB
	store *repository.GormStore
	svc   *Services
	clock *testClock
}

func setupServiceTestDB(t *testing.T) *gorm.DB {
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, testDB.AutoMigrate(models.All()...))
	return testDB
}

func newTestEnv(t *testing.T) *testEnv {
	testDB := setupServiceTestDB(t)
	store := repository.NewGormStore(testDB)
	clock := &testClock{now: time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)}
	return &testEnv{
		db:    testDB,
		store: store,
		svc:   New(store, clock.Now),
		clock: clock,
	}
}

func (e *testEnv) person(t *testing.T, name, role string) *models.Person {
	p := &models.Person{Name: name, Role: role}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func (e *testEnv) mediatorWithEmail(t *testing.T, name, email string) *models.Person {
	p := &models.Person{Name: name, Role: models.PersonRoleMediator, Email: &email}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

// createCase opens a case with sensible defaults, letting mutate adjust the input
func (e *testEnv) createCase(t *testing.T, mutate func(*CreateCaseInput)) *models.Case {
	input := CreateCaseInput{
		Title:      "Boundary dispute",
		CaseType:   models.CaseTypeBusiness,
		FilingDate: "2024-01-10",
	}
	if mutate != nil {
		mutate(&input)
	}
	c, err := e.svc.Registry.CreateCase(context.Background(), input, "officer-1")
	require.NoError(t, err)
	return c
}

// seedActiveCases gives the mediator n cases in an active status, bypassing assignment
func (e *testEnv) seedActiveCases(t *testing.T, mediatorID string, n int) {
	for i := 0; i < n; i++ {
		c := &models.Case{
			CaseNumber: FormatCaseNumber("SEED", 2024, i+1) + "-" + mediatorID[:8],
			Title:      "Seeded case",
			CaseType:   models.CaseTypeOther,
			Status:     models.CaseStatusInProgress,
			FilingDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			MediatorID: &mediatorID,
		}
		require.NoError(t, e.db.Create(c).Error)
	}
}

func ptr[T any](v T) *T {
	return &v
}

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}
