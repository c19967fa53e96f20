package dbbadger

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	"github.com/maskwallet/walletd/internal/core/domain"
	"github.com/maskwallet/walletd/internal/core/ports"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"
)

const walletDir = "wallet"

type repoManager struct {
	store *badgerhold.Store

	walletRepository     domain.WalletRepository
	passwordRepository   domain.PasswordRepository
	accountRepository    domain.AccountRepository
	connectionRepository domain.ConnectionRepository
}

// NewRepoManager opens (or creates if not exists) the badger store on disk.
// An empty baseDbDir opens an in-memory store.
func NewRepoManager(
	baseDbDir string, logger badger.Logger,
) (ports.RepoManager, error) {
	var dbDir string
	if len(baseDbDir) > 0 {
		dbDir = filepath.Join(baseDbDir, walletDir)
	}

	store, err := createDb(dbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening wallet db: %w", err)
	}

	return &repoManager{
		store:                store,
		walletRepository:     newWalletRepository(store),
		passwordRepository:   newPasswordRepository(store),
		accountRepository:    newAccountRepository(store),
		connectionRepository: newConnectionRepository(store),
	}, nil
}

func (m *repoManager) WalletRepository() domain.WalletRepository {
	return m.walletRepository
}

func (m *repoManager) PasswordRepository() domain.PasswordRepository {
	return m.passwordRepository
}

func (m *repoManager) AccountRepository() domain.AccountRepository {
	return m.accountRepository
}

func (m *repoManager) ConnectionRepository() domain.ConnectionRepository {
	return m.connectionRepository
}

func (m *repoManager) Close() {
	m.store.Close()
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}

	if !isInMemory {
		ticker := time.NewTicker(30 * time.Minute)

		go func() {
			for {
				<-ticker.C
				if err := db.Badger().RunValueLogGC(0.5); err != nil &&
					err != badger.ErrNoRewrite {
					log.Error(err)
				}
			}
		}()
	}

	return db, nil
}
