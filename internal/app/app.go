package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/maskwallet/walletd/internal/core/application/password"
	"github.com/maskwallet/walletd/internal/core/application/smartpay"
	"github.com/maskwallet/walletd/internal/core/application/wallet"
	"github.com/maskwallet/walletd/internal/core/domain"
	"github.com/maskwallet/walletd/internal/core/ports"
	"github.com/maskwallet/walletd/internal/infrastructure/chain"
	"github.com/maskwallet/walletd/internal/infrastructure/keyengine"
	"github.com/maskwallet/walletd/internal/infrastructure/persona"
	"github.com/maskwallet/walletd/internal/infrastructure/signer"
	smartpayclient "github.com/maskwallet/walletd/internal/infrastructure/smartpay"
	dbbadger "github.com/maskwallet/walletd/internal/infrastructure/storage/db/badger"
	"github.com/maskwallet/walletd/internal/infrastructure/storage/db/inmemory"
	"github.com/maskwallet/walletd/pkg/httputil"
	log "github.com/sirupsen/logrus"
)

const (
	DBBadger   = "badger"
	DBInMemory = "inmemory"
)

// Config holds everything needed to build the services. Smart pay
// components are only built when the related urls are set.
type Config struct {
	DBType         string
	DBDir          string
	LightScrypt    bool
	MaxDeriveCount int
	Metrics        ports.Metrics

	FunderURL         string
	OwnerURL          string
	BundlerURL        string
	ChainRPCURLs      map[uint64]string
	SupportedChainIDs []uint64
	PersonaAddresses  []string

	ReconcileMinInterval time.Duration
	HTTPTimeout          time.Duration
	HTTPCacheTTL         time.Duration
	HTTPRateLimit        int
}

func (c Config) validate() error {
	if c.DBType != DBBadger && c.DBType != DBInMemory {
		return fmt.Errorf("unknown db type %s", c.DBType)
	}
	if c.DBType == DBBadger && c.DBDir == "" {
		return fmt.Errorf("missing db dir")
	}
	if (c.OwnerURL == "") != (c.BundlerURL == "") {
		return fmt.Errorf("owner and bundler urls must be both set or unset")
	}
	return nil
}

func (c Config) smartPayEnabled() bool {
	return c.OwnerURL != "" && c.BundlerURL != ""
}

// App holds the services and the infrastructure they are built on.
type App struct {
	RepoManager ports.RepoManager
	Password    *password.Service
	Wallet      *wallet.Service
	Personas    *persona.Source
	// Reconciler and Funder are nil if smart pay is not configured.
	Reconciler *smartpay.Reconciler
	Funder     ports.FunderService

	receipts *chain.ReceiptFetcher
}

func New(cfg Config) (*App, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	repoManager, err := newRepoManager(cfg)
	if err != nil {
		return nil, err
	}

	engineOpts := keyengine.Opts{}
	if cfg.LightScrypt {
		engineOpts.ExportScryptN = keystore.LightScryptN
		engineOpts.ExportScryptP = keystore.LightScryptP
	}
	engine := keyengine.NewEngine(engineOpts)

	passwordSvc, err := password.NewService(repoManager, engine)
	if err != nil {
		repoManager.Close()
		return nil, err
	}
	walletSvc, err := wallet.NewService(
		repoManager, passwordSvc, engine, signer.NewSigner(), wallet.Opts{
			MaxDeriveCount: cfg.MaxDeriveCount,
			Metrics:        cfg.Metrics,
		},
	)
	if err != nil {
		repoManager.Close()
		return nil, err
	}
	personas, err := persona.NewSourceFromAddresses(cfg.PersonaAddresses)
	if err != nil {
		repoManager.Close()
		return nil, err
	}

	app := &App{
		RepoManager: repoManager,
		Password:    passwordSvc,
		Wallet:      walletSvc,
		Personas:    personas,
	}
	if err := app.initSmartPay(cfg); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

// UnlockFromFile unlocks the password gate with the password read from the
// given file. Trailing newlines are ignored.
func (a *App) UnlockFromFile(ctx context.Context, path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read password file: %w", err)
	}
	pwd := strings.TrimRight(string(buf), "\r\n")
	return a.Password.Unlock(ctx, pwd)
}

func (a *App) Close() {
	if a.Reconciler != nil {
		a.Reconciler.Stop()
	}
	if a.receipts != nil {
		a.receipts.Close()
	}
	a.RepoManager.Close()
}

func (a *App) initSmartPay(cfg Config) error {
	chains := domain.NewChainAllowList(cfg.SupportedChainIDs...)
	clientOpts := httputil.Opts{
		Timeout:           cfg.HTTPTimeout,
		RequestsPerSecond: cfg.HTTPRateLimit,
		CacheTTL:          cfg.HTTPCacheTTL,
	}

	if cfg.FunderURL != "" {
		client, err := httputil.NewClient("funder", cfg.FunderURL, clientOpts)
		if err != nil {
			return err
		}
		a.receipts = chain.NewReceiptFetcher(cfg.ChainRPCURLs, chains)
		funder, err := smartpayclient.NewFunderService(client, a.receipts, chains)
		if err != nil {
			return err
		}
		a.Funder = funder
	}

	if !cfg.smartPayEnabled() {
		log.Debug("smart pay services not configured")
		return nil
	}

	ownerClient, err := httputil.NewClient("owner", cfg.OwnerURL, clientOpts)
	if err != nil {
		return err
	}
	owner, err := smartpayclient.NewOwnerService(ownerClient, chains)
	if err != nil {
		return err
	}
	bundlerClient, err := httputil.NewClient("bundler", cfg.BundlerURL, clientOpts)
	if err != nil {
		return err
	}
	bundler, err := smartpayclient.NewBundlerService(bundlerClient, chains)
	if err != nil {
		return err
	}

	reconciler, err := smartpay.NewReconciler(
		a.Wallet, a.Personas, owner, bundler, a.RepoManager,
		smartpay.ReconcilerOpts{
			MinInterval: cfg.ReconcileMinInterval,
			Metrics:     cfg.Metrics,
		},
	)
	if err != nil {
		return err
	}
	a.Reconciler = reconciler
	return nil
}

func newRepoManager(cfg Config) (ports.RepoManager, error) {
	if cfg.DBType == DBInMemory {
		return inmemory.NewRepoManager(), nil
	}
	return dbbadger.NewRepoManager(cfg.DBDir, log.StandardLogger())
}
