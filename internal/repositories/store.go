package repositories

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/spf13/afero"
	"gorm.io/gorm"

	"farmdirect/internal/models"
)

// Store bundles the repositories of one storage backend.
type Store struct {
	Users    UserRepository
	Products ProductRepository
	Orders   OrderRepository
	Contacts ContactRepository

	ping  func(ctx context.Context) error
	close func() error
}

// Ping checks that the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the backend.
func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Migrate creates or updates the relational schema.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&orderRecord{},
		&orderItemRecord{},
		&models.ContactMessage{},
	)
	if err != nil {
		return errors.Wrap(err, "auto migrate")
	}
	return nil
}

// NewGORMStore wires the GORM repositories around db.
func NewGORMStore(db *gorm.DB) *Store {
	return &Store{
		Users:    NewGORMUserRepository(db),
		Products: NewGORMProductRepository(db),
		Orders:   NewGORMOrderRepository(db),
		Contacts: NewGORMContactRepository(db),
		ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return errors.Wrap(err, "get sql db")
			}
			return sqlDB.PingContext(ctx)
		},
		close: func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return errors.Wrap(err, "get sql db")
			}
			return sqlDB.Close()
		},
	}
}

// NewJSONStore loads the JSON document repositories from dir on fs.
func NewJSONStore(fs afero.Fs, dir string) (*Store, error) {
	files, err := newFileStore(fs, dir)
	if err != nil {
		return nil, err
	}
	users, err := newJSONUserRepository(files)
	if err != nil {
		return nil, err
	}
	products, err := newJSONProductRepository(files)
	if err != nil {
		return nil, err
	}
	orders, err := newJSONOrderRepository(files)
	if err != nil {
		return nil, err
	}
	contacts, err := newJSONContactRepository(files)
	if err != nil {
		return nil, err
	}
	return &Store{
		Users:    users,
		Products: products,
		Orders:   orders,
		Contacts: contacts,
		ping: func(context.Context) error {
			return files.ping()
		},
	}, nil
}
