package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/lotus-ledger/internal/domain/model"
	"github.com/okian/lotus-ledger/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// gameRow is the SQL shape of a game. Seq fixes the natural (insertion) order;
// ID holds the ObjectID hex so identifiers look the same on every driver.
type gameRow struct {
	Seq     uint64 `gorm:"column:seq;primaryKey;autoIncrement"`
	ID      string `gorm:"column:id;size:24;not null;uniqueIndex"`
	Player1 uint8  `gorm:"column:player1;not null"`
	Player2 uint8  `gorm:"column:player2;not null"`
	Player3 uint8  `gorm:"column:player3;not null"`
	Player4 uint8  `gorm:"column:player4;not null"`
}

func (gameRow) TableName() string { return "game" }

func (r gameRow) toGame() (model.Game, error) {
	oid, err := model.ParseID(r.ID)
	if err != nil {
		return model.Game{}, fmt.Errorf("row %d: %w", r.Seq, err)
	}
	return model.Game{
		ID:      oid,
		Player1: r.Player1,
		Player2: r.Player2,
		Player3: r.Player3,
		Player4: r.Player4,
	}, nil
}

// SQLStore keeps games in a relational table through gorm.
type SQLStore struct {
	db     *gorm.DB
	driver string
	logger logger.Logger
}

// OpenSQL opens a sqlite or postgres database and makes sure the game table exists.
func OpenSQL(ctx context.Context, driver, dsn string, opts ...Option) (*SQLStore, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, storeError("connect", err)
	}
	if driver == DriverSQLite {
		// one connection so ":memory:" databases are shared and writes serialize
		sqlDB, err := db.DB()
		if err != nil {
			return nil, storeError("connect", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.WithContext(ctx).AutoMigrate(&gameRow{}); err != nil {
		return nil, storeError("connect", err)
	}

	return NewSQLStore(db, driver, opts...), nil
}

// NewSQLStore wraps an open gorm handle whose game table already exists.
func NewSQLStore(db *gorm.DB, driver string, opts ...Option) *SQLStore {
	o := buildOptions(opts)
	return &SQLStore{db: db, driver: driver, logger: o.logger}
}

// Driver implements Store.
func (s *SQLStore) Driver() string { return s.driver }

// Create implements Store.
func (s *SQLStore) Create(ctx context.Context, fields model.Fields) (model.Game, error) {
	g := model.NewGame(fields)
	row := gameRow{
		ID:      model.NewID().Hex(),
		Player1: g.Player1,
		Player2: g.Player2,
		Player3: g.Player3,
		Player4: g.Player4,
	}
	db := s.db.WithContext(ctx)
	if err := db.Create(&row).Error; err != nil {
		return model.Game{}, storeError("create", err)
	}

	var stored gameRow
	if err := db.Where("id = ?", row.ID).First(&stored).Error; err != nil {
		return model.Game{}, storeError("create", err)
	}
	out, err := stored.toGame()
	if err != nil {
		return model.Game{}, storeError("create", err)
	}
	return out, nil
}

// List implements Store.
func (s *SQLStore) List(ctx context.Context, page model.Page) ([]model.Game, error) {
	games := make([]model.Game, 0)
	if page.Bounded() && page.Limit == 0 {
		return games, nil
	}

	q := s.db.WithContext(ctx).Order("seq")
	if page.Offset > 0 {
		q = q.Offset(int(page.Offset))
	}
	if page.Bounded() {
		q = q.Limit(int(page.Limit))
	}

	var rows []gameRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, storeError("list", err)
	}
	for _, r := range rows {
		g, err := r.toGame()
		if err != nil {
			return nil, storeError("list", err)
		}
		games = append(games, g)
	}
	return games, nil
}

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, id string) (model.Game, error) {
	if _, err := model.ParseID(id); err != nil {
		return model.Game{}, notFound("get", id)
	}
	var row gameRow
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Game{}, notFound("get", id)
		}
		return model.Game{}, storeError("get", err)
	}
	g, err := row.toGame()
	if err != nil {
		return model.Game{}, storeError("get", err)
	}
	return g, nil
}

// Update implements Store. The read-modify-read runs in one transaction so
// the returned record is the one this update produced.
func (s *SQLStore) Update(ctx context.Context, id string, fields model.Fields) (model.Game, error) {
	if _, err := model.ParseID(id); err != nil {
		return model.Game{}, notFound("update", id)
	}

	var row gameRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&row).Error; err != nil {
			return err
		}
		if fields.Empty() {
			return nil
		}
		changes := make(map[string]interface{}, 4)
		for k, v := range fields.Changes() {
			changes[k] = v
		}
		if err := tx.Model(&row).Updates(changes).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&row).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Game{}, notFound("update", id)
		}
		return model.Game{}, storeError("update", err)
	}

	g, err := row.toGame()
	if err != nil {
		return model.Game{}, storeError("update", err)
	}
	return g, nil
}

// Delete implements Store.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	if _, err := model.ParseID(id); err != nil {
		return notFound("delete", id)
	}
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&gameRow{})
	if res.Error != nil {
		return storeError("delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("delete", id)
	}
	return nil
}

// Count implements Store.
func (s *SQLStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&gameRow{}).Count(&n).Error; err != nil {
		return 0, storeError("count", err)
	}
	return n, nil
}

// Ping implements Store.
func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return storeError("ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return storeError("ping", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLStore) Close(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return storeError("close", err)
	}
	if err := sqlDB.Close(); err != nil {
		return storeError("close", err)
	}
	return nil
}
