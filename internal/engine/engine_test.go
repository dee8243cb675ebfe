package engine

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"parking-backend/internal/db"
	"parking-backend/internal/model"
	"parking-backend/internal/store"
)

// testClock is a settable clock injected into the engine.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestEngine(t *testing.T) (*Engine, store.Store, *gorm.DB, *testClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	clock := &testClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	s := store.NewGormStore(gormDB)
	return NewWithClock(s, clock.Now), s, gormDB, clock
}

// assertFlagLedgerInvariant checks, for every spot, that the occupied flag
// agrees with the presence of an active ledger record.
func assertFlagLedgerInvariant(t *testing.T, gormDB *gorm.DB) {
	t.Helper()

	var spots []model.Spot
	require.NoError(t, gormDB.Find(&spots).Error)
	for _, spot := range spots {
		var activeCount int64
		require.NoError(t, gormDB.Model(&model.Occupancy{}).
			Where("spot_id = ? AND active = ?", spot.ID, true).
			Count(&activeCount).Error)

		if spot.Occupied {
			assert.Equal(t, int64(1), activeCount, "occupied spot %q must have exactly one active occupancy", spot.Number)
		} else {
			assert.Zero(t, activeCount, "free spot %q must have no active occupancy", spot.Number)
		}
	}
}

func seedRate(t *testing.T, s store.Store, at time.Time, perMinute string) model.PriceRate {
	t.Helper()
	rate, err := s.IntroduceRate(context.Background(),
		decimal.RequireFromString("10.00"), decimal.RequireFromString(perMinute), at)
	require.NoError(t, err)
	return rate
}

func TestOccupancyLifecycle(t *testing.T) {
	eng, s, gormDB, clock := newTestEngine(t)
	ctx := context.Background()

	seedRate(t, s, clock.Now().Add(-time.Hour), "0.17")
	spot, err := s.CreateSpot(ctx, "A1")
	require.NoError(t, err)

	var occ model.Occupancy
	t.Run("Open", func(t *testing.T) {
		occ, err = eng.OpenOccupancy(ctx, spot.ID, "abc1234")
		require.NoError(t, err)
		assert.Equal(t, "ABC1234", occ.VehiclePlate, "plate is normalized to uppercase")
		assert.True(t, occ.Active)
		assert.Equal(t, clock.Now(), occ.EntryTime.UTC())

		got, err := s.SpotByID(ctx, spot.ID)
		require.NoError(t, err)
		assert.True(t, got.Occupied)
		require.NotNil(t, got.LastOccupiedAt)

		assertFlagLedgerInvariant(t, gormDB)
	})

	t.Run("Second open on the same spot is rejected", func(t *testing.T) {
		_, err := eng.OpenOccupancy(ctx, spot.ID, "XYZ9876")
		assert.ErrorIs(t, err, ErrSpotOccupied)

		var count int64
		gormDB.Model(&model.Occupancy{}).Count(&count)
		assert.Equal(t, int64(1), count, "no new record may be created")
		assertFlagLedgerInvariant(t, gormDB)
	})

	t.Run("Close after 125 seconds bills three minutes", func(t *testing.T) {
		clock.Advance(125 * time.Second)

		closed, err := eng.CloseOccupancy(ctx, occ.ID)
		require.NoError(t, err)
		assert.False(t, closed.Active)
		require.NotNil(t, closed.ExitTime)
		require.NotNil(t, closed.FeePaid)
		// ceil(125s / 60s) = 3 minutes at 0.17/minute.
		assert.True(t, closed.FeePaid.Equal(decimal.RequireFromString("0.51")),
			"expected fee 0.51, got %s", closed.FeePaid)

		got, err := s.SpotByID(ctx, spot.ID)
		require.NoError(t, err)
		assert.False(t, got.Occupied)

		assertFlagLedgerInvariant(t, gormDB)
	})

	t.Run("Spot can be reopened after close", func(t *testing.T) {
		_, err := eng.OpenOccupancy(ctx, spot.ID, "NEW4567")
		require.NoError(t, err)
		assertFlagLedgerInvariant(t, gormDB)
	})
}

func TestOpenOccupancyValidation(t *testing.T) {
	eng, s, gormDB, clock := newTestEngine(t)
	ctx := context.Background()

	seedRate(t, s, clock.Now().Add(-time.Hour), "0.17")
	spot, err := s.CreateSpot(ctx, "A1")
	require.NoError(t, err)

	t.Run("Unknown spot", func(t *testing.T) {
		_, err := eng.OpenOccupancy(ctx, 9999, "ABC1234")
		assert.ErrorIs(t, err, store.ErrSpotNotFound)
	})

	t.Run("Plate too short", func(t *testing.T) {
		_, err := eng.OpenOccupancy(ctx, spot.ID, "AB12")
		assert.ErrorIs(t, err, ErrInvalidPlate)
	})

	t.Run("Plate too long", func(t *testing.T) {
		_, err := eng.OpenOccupancy(ctx, spot.ID, "ABCDEF12345")
		assert.ErrorIs(t, err, ErrInvalidPlate)
	})

	var count int64
	gormDB.Model(&model.Occupancy{}).Count(&count)
	assert.Zero(t, count, "rejected opens must not create records")
}

func TestOpenOccupancyDriftGuard(t *testing.T) {
	eng, s, gormDB, clock := newTestEngine(t)
	ctx := context.Background()

	seedRate(t, s, clock.Now().Add(-time.Hour), "0.17")
	spot, err := s.CreateSpot(ctx, "A1")
	require.NoError(t, err)

	// Simulate drift from a manual edit: an active ledger record exists but
	// the spot flag was reset by hand.
	_, err = s.OpenOccupancy(ctx, spot.ID, "OLD1234", clock.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = eng.OpenOccupancy(ctx, spot.ID, "NEW5678")
	assert.ErrorIs(t, err, store.ErrActiveOccupancyExists)

	var count int64
	gormDB.Model(&model.Occupancy{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCloseOccupancy(t *testing.T) {
	eng, s, _, clock := newTestEngine(t)
	ctx := context.Background()

	seedRate(t, s, clock.Now().Add(-time.Hour), "0.17")
	spot, err := s.CreateSpot(ctx, "A1")
	require.NoError(t, err)

	occ, err := eng.OpenOccupancy(ctx, spot.ID, "ABC1234")
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)
	closed, err := eng.CloseOccupancy(ctx, occ.ID)
	require.NoError(t, err)

	t.Run("Closing twice is rejected and changes nothing", func(t *testing.T) {
		clock.Advance(time.Hour)
		_, err := eng.CloseOccupancy(ctx, occ.ID)
		assert.ErrorIs(t, err, store.ErrOccupancyClosed)

		got, err := s.OccupancyByID(ctx, occ.ID)
		require.NoError(t, err)
		assert.Equal(t, closed.ExitTime.Unix(), got.ExitTime.Unix())
		assert.True(t, got.FeePaid.Equal(*closed.FeePaid))
	})

	t.Run("Unknown occupancy", func(t *testing.T) {
		_, err := eng.CloseOccupancy(ctx, 9999)
		assert.ErrorIs(t, err, store.ErrOccupancyNotFound)
	})
}

func TestCloseWithoutActiveRate(t *testing.T) {
	eng, s, gormDB, clock := newTestEngine(t)
	ctx := context.Background()

	spot, err := s.CreateSpot(ctx, "A1")
	require.NoError(t, err)
	occ, err := eng.OpenOccupancy(ctx, spot.ID, "ABC1234")
	require.NoError(t, err)

	clock.Advance(30 * time.Minute)
	_, err = eng.CloseOccupancy(ctx, occ.ID)
	assert.ErrorIs(t, err, store.ErrNoActiveRate)

	// The failed close must not partially apply: spot still occupied, the
	// occupancy still active.
	got, err := s.OccupancyByID(ctx, occ.ID)
	require.NoError(t, err)
	assert.True(t, got.Active)
	assert.Nil(t, got.ExitTime)
	assert.Nil(t, got.FeePaid)

	spotNow, err := s.SpotByID(ctx, spot.ID)
	require.NoError(t, err)
	assert.True(t, spotNow.Occupied)

	assertFlagLedgerInvariant(t, gormDB)
}

func TestComputeFee(t *testing.T) {
	eng, s, _, clock := newTestEngine(t)
	ctx := context.Background()

	rate := seedRate(t, s, clock.Now().Add(-time.Hour), "0.17")
	spot, err := s.CreateSpot(ctx, "A1")
	require.NoError(t, err)
	occ, err := eng.OpenOccupancy(ctx, spot.ID, "ABC1234")
	require.NoError(t, err)

	t.Run("One-minute floor applies immediately", func(t *testing.T) {
		fee, err := eng.ComputeFee(ctx, occ.ID)
		require.NoError(t, err)
		assert.True(t, fee.Equal(rate.PerMinute), "a zero-duration quote still bills one minute")
	})

	t.Run("Quote is monotonically non-decreasing", func(t *testing.T) {
		var previous decimal.Decimal
		for _, advance := range []time.Duration{30 * time.Second, 31 * time.Second, 4 * time.Minute, time.Hour} {
			clock.Advance(advance)
			fee, err := eng.ComputeFee(ctx, occ.ID)
			require.NoError(t, err)
			assert.True(t, fee.GreaterThanOrEqual(previous), "fee %s must not be below %s", fee, previous)
			previous = fee
		}
	})

	t.Run("Quote does not persist anything", func(t *testing.T) {
		got, err := s.OccupancyByID(ctx, occ.ID)
		require.NoError(t, err)
		assert.True(t, got.Active)
		assert.Nil(t, got.FeePaid)
	})

	t.Run("Unknown occupancy", func(t *testing.T) {
		_, err := eng.ComputeFee(ctx, 9999)
		assert.ErrorIs(t, err, store.ErrOccupancyNotFound)
	})
}

func TestComputeFeeClockSkew(t *testing.T) {
	eng, s, gormDB, clock := newTestEngine(t)
	ctx := context.Background()

	rate := seedRate(t, s, clock.Now().Add(-time.Hour), "0.17")
	spot, err := s.CreateSpot(ctx, "A1")
	require.NoError(t, err)
	occ, err := eng.OpenOccupancy(ctx, spot.ID, "ABC1234")
	require.NoError(t, err)

	// Force an entry time in the future, as a manual data correction or a
	// backwards clock step would. The floor bills one minute instead of
	// producing a negative fee.
	future := clock.Now().Add(45 * time.Minute)
	require.NoError(t, gormDB.Model(&model.Occupancy{}).
		Where("id = ?", occ.ID).Update("entry_time", future).Error)

	fee, err := eng.ComputeFee(ctx, occ.ID)
	require.NoError(t, err)
	assert.True(t, fee.Equal(rate.PerMinute))
}

func TestFeeUsesRateInForceAtExit(t *testing.T) {
	eng, s, _, clock := newTestEngine(t)
	ctx := context.Background()

	seedRate(t, s, clock.Now().Add(-time.Hour), "0.17")
	spot, err := s.CreateSpot(ctx, "A1")
	require.NoError(t, err)
	occ, err := eng.OpenOccupancy(ctx, spot.ID, "ABC1234")
	require.NoError(t, err)

	// A new rate takes over mid-session; the close must bill the whole
	// session at the rate in force at the exit instant.
	clock.Advance(5 * time.Minute)
	seedRate(t, s, clock.Now(), "0.20")

	clock.Advance(5 * time.Minute)
	closed, err := eng.CloseOccupancy(ctx, occ.ID)
	require.NoError(t, err)
	require.NotNil(t, closed.FeePaid)
	// 10 minutes at 0.20/minute.
	assert.True(t, closed.FeePaid.Equal(decimal.RequireFromString("2.00")),
		"expected fee 2.00, got %s", closed.FeePaid)
}
