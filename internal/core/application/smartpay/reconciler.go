package smartpay

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/maskwallet/walletd/internal/core/application/wallet"
	"github.com/maskwallet/walletd/internal/core/domain"
	"github.com/maskwallet/walletd/internal/core/ports"
	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
)

const defaultMinInterval = time.Second

// WalletSource is the subset of the wallet service the reconciler uses.
type WalletSource interface {
	GetWallets(ctx context.Context) ([]wallet.WalletInfo, error)
	SubscribeWalletsChanged(ch chan<- wallet.WalletsChangedEvent) event.Subscription
	RenameWallet(ctx context.Context, address, name string) error
	RemoveWallet(ctx context.Context, address, password string) error
}

// AccountsEvent is published every time the account list changes.
type AccountsEvent struct {
	Accounts []domain.Account
}

// ReconcilerOpts ...
type ReconcilerOpts struct {
	// MinInterval is the min spacing between two consecutive updates.
	MinInterval time.Duration
	Metrics     ports.Metrics
}

// Reconciler keeps the account list in sync with the wallet registry, the
// personas and the smart accounts deployed on-chain for them. Updates run on
// a single worker; triggers received while an update is running collapse
// into one follow-up run.
type Reconciler struct {
	wallets     WalletSource
	personas    ports.PersonaSource
	owner       ports.OwnerService
	bundler     ports.BundlerService
	repoManager ports.RepoManager
	metrics     ports.Metrics
	limiter     ratelimit.Limiter

	lock     *sync.RWMutex
	accounts []domain.Account
	paused   bool
	started  bool
	stopped  bool

	feed      event.Feed
	triggerCh chan struct{}
	quitCh    chan struct{}
	wg        *sync.WaitGroup
	now       func() time.Time
}

func NewReconciler(
	wallets WalletSource, personas ports.PersonaSource,
	owner ports.OwnerService, bundler ports.BundlerService,
	repoManager ports.RepoManager, opts ReconcilerOpts,
) (*Reconciler, error) {
	if wallets == nil {
		return nil, fmt.Errorf("missing wallet source")
	}
	if personas == nil {
		return nil, fmt.Errorf("missing persona source")
	}
	if owner == nil {
		return nil, fmt.Errorf("missing owner service")
	}
	if bundler == nil {
		return nil, fmt.Errorf("missing bundler service")
	}
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if opts.MinInterval <= 0 {
		opts.MinInterval = defaultMinInterval
	}
	if opts.Metrics == nil {
		opts.Metrics = noopMetrics{}
	}

	return &Reconciler{
		wallets:     wallets,
		personas:    personas,
		owner:       owner,
		bundler:     bundler,
		repoManager: repoManager,
		metrics:     opts.Metrics,
		limiter: ratelimit.New(
			1, ratelimit.Per(opts.MinInterval), ratelimit.WithoutSlack,
		),
		lock:      &sync.RWMutex{},
		triggerCh: make(chan struct{}, 1),
		quitCh:    make(chan struct{}),
		wg:        &sync.WaitGroup{},
		now:       time.Now,
	}, nil
}

// Start loads the persisted accounts, subscribes to wallet and persona
// changes and schedules a first update.
func (r *Reconciler) Start(ctx context.Context) error {
	r.lock.Lock()
	if r.started {
		r.lock.Unlock()
		return fmt.Errorf("reconciler already started")
	}
	if r.stopped {
		r.lock.Unlock()
		return fmt.Errorf("reconciler can't be restarted once stopped")
	}
	r.started = true
	r.lock.Unlock()

	if err := r.init(ctx); err != nil {
		return err
	}

	walletsCh := make(chan wallet.WalletsChangedEvent, 8)
	walletsSub := r.wallets.SubscribeWalletsChanged(walletsCh)
	personasCh := make(chan []domain.Persona, 8)
	personasSub := r.personas.SubscribePersonas(personasCh)

	r.wg.Add(2)
	go r.listen(walletsSub, personasSub, walletsCh, personasCh)
	go r.work()

	r.Trigger()
	log.Debug("smart pay reconciler started")
	return nil
}

// Stop terminates the worker and waits for the running update, if any.
// A stopped reconciler can't be started again.
func (r *Reconciler) Stop() {
	r.lock.Lock()
	if !r.started {
		r.lock.Unlock()
		return
	}
	r.started = false
	r.stopped = true
	r.lock.Unlock()

	close(r.quitCh)
	r.wg.Wait()
	log.Debug("smart pay reconciler stopped")
}

// Trigger schedules an update. It never blocks.
func (r *Reconciler) Trigger() {
	select {
	case r.triggerCh <- struct{}{}:
	default:
	}
}

// Pause makes updates no-ops until Resume is called.
func (r *Reconciler) Pause() {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.paused = true
}

func (r *Reconciler) Resume() {
	r.lock.Lock()
	r.paused = false
	r.lock.Unlock()

	r.Trigger()
}

// Accounts returns a copy of the current account list.
func (r *Reconciler) Accounts() []domain.Account {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return append([]domain.Account(nil), r.accounts...)
}

// SubscribeAccounts delivers an AccountsEvent at every change of the list.
func (r *Reconciler) SubscribeAccounts(ch chan<- AccountsEvent) event.Subscription {
	return r.feed.Subscribe(ch)
}

// Connection returns the currently selected account and chain.
func (r *Reconciler) Connection(ctx context.Context) (*domain.Connection, error) {
	return r.repoManager.ConnectionRepository().GetConnection(ctx)
}

// Reconcile runs one update: it gathers the owners, looks up their smart
// accounts, merges everything with the persisted list and persists the
// result only if it differs.
func (r *Reconciler) Reconcile(ctx context.Context) (err error) {
	r.lock.RLock()
	paused := r.paused
	r.lock.RUnlock()
	if paused {
		return nil
	}

	start := time.Now()
	var merged []domain.Account
	defer func() {
		r.metrics.ObserveReconcile(time.Since(start).Seconds(), len(merged), err)
	}()

	wallets, err := r.wallets.GetWallets(ctx)
	if err != nil {
		return err
	}
	personas, err := r.personas.GetPersonas(ctx)
	if err != nil {
		return err
	}
	chainID, err := r.bundler.GetSupportedChainID(ctx)
	if err != nil {
		return err
	}
	entries, err := r.owner.GetAccountsByOwners(
		ctx, chainID, owners(wallets, personas),
	)
	if err != nil {
		return err
	}

	accountRepo := r.repoManager.AccountRepository()
	persisted, err := accountRepo.GetAccounts(ctx)
	if err != nil {
		return err
	}

	merged = domain.MergeAccounts(
		persisted, ownedAccounts(wallets), entries, personas, r.now(),
	)
	if !domain.AccountsEqual(merged, persisted) {
		if err := accountRepo.UpdateAccounts(ctx, merged); err != nil {
			return err
		}
		log.Debugf("persisted %d accounts", len(merged))
	}

	r.publish(merged)
	if err := r.autoConnect(ctx, merged); err != nil {
		log.WithError(err).Warn("failed to select default account")
	}
	return nil
}

// RenameAccount renames a smart account in the persisted list, or forwards
// the request to the wallet registry for key-held accounts.
func (r *Reconciler) RenameAccount(ctx context.Context, address, name string) error {
	name, err := domain.ValidateWalletName(name)
	if err != nil {
		return err
	}

	accountRepo := r.repoManager.AccountRepository()
	persisted, err := accountRepo.GetAccounts(ctx)
	if err != nil {
		return err
	}
	for i, a := range persisted {
		if !a.IsSmartContract() || !domain.IsSameAddress(a.Address, address) {
			continue
		}
		persisted[i].Name = name
		persisted[i].UpdatedAt = r.now()
		if err := accountRepo.UpdateAccounts(ctx, persisted); err != nil {
			return err
		}
		r.publish(persisted)
		return nil
	}

	return r.wallets.RenameWallet(ctx, address, name)
}

// RemoveAccount removes a key-held wallet together with the smart accounts
// it owns.
func (r *Reconciler) RemoveAccount(
	ctx context.Context, address, password string,
) error {
	if err := r.wallets.RemoveWallet(ctx, address, password); err != nil {
		return err
	}

	accountRepo := r.repoManager.AccountRepository()
	persisted, err := accountRepo.GetAccounts(ctx)
	if err != nil {
		return err
	}
	remaining := make([]domain.Account, 0, len(persisted))
	for _, a := range persisted {
		if domain.IsSameAddress(a.Address, address) ||
			(a.IsSmartContract() && domain.IsSameAddress(a.Owner, address)) {
			continue
		}
		remaining = append(remaining, a)
	}
	if len(remaining) != len(persisted) {
		if err := accountRepo.UpdateAccounts(ctx, remaining); err != nil {
			return err
		}
		r.publish(remaining)
	}
	if err := r.autoConnect(ctx, remaining); err != nil {
		log.WithError(err).Warn("failed to select default account")
	}

	r.Trigger()
	return nil
}

func (r *Reconciler) init(ctx context.Context) error {
	persisted, err := r.repoManager.AccountRepository().GetAccounts(ctx)
	if err != nil {
		return err
	}
	wallets, err := r.wallets.GetWallets(ctx)
	if err != nil {
		return err
	}

	accounts := make([]domain.Account, 0, len(persisted)+len(wallets))
	accounts = append(accounts, persisted...)
	accounts = append(accounts, ownedAccounts(wallets)...)

	r.lock.Lock()
	r.accounts = domain.SortAccounts(accounts)
	r.lock.Unlock()
	return nil
}

func (r *Reconciler) listen(
	walletsSub, personasSub event.Subscription,
	walletsCh <-chan wallet.WalletsChangedEvent,
	personasCh <-chan []domain.Persona,
) {
	defer r.wg.Done()
	defer walletsSub.Unsubscribe()
	defer personasSub.Unsubscribe()

	for {
		select {
		case <-r.quitCh:
			return
		case <-walletsCh:
			r.Trigger()
		case <-personasCh:
			r.Trigger()
		case err := <-walletsSub.Err():
			if err != nil {
				log.WithError(err).Warn("wallet subscription closed")
			}
			return
		case err := <-personasSub.Err():
			if err != nil {
				log.WithError(err).Warn("persona subscription closed")
			}
			return
		}
	}
}

func (r *Reconciler) work() {
	defer r.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-r.quitCh
		cancel()
	}()

	for {
		select {
		case <-r.quitCh:
			return
		case <-r.triggerCh:
			r.limiter.Take()
			if err := r.Reconcile(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				log.WithError(err).Warn("failed to reconcile smart pay accounts")
			}
		}
	}
}

// publish replaces the in-memory list and notifies the subscribers if it
// changed.
func (r *Reconciler) publish(accounts []domain.Account) {
	r.lock.Lock()
	changed := !domain.AccountsEqual(r.accounts, accounts)
	r.accounts = append([]domain.Account(nil), accounts...)
	r.lock.Unlock()

	if !changed {
		return
	}
	r.feed.Send(AccountsEvent{append([]domain.Account(nil), accounts...)})
}

func (r *Reconciler) autoConnect(
	ctx context.Context, accounts []domain.Account,
) error {
	connectionRepo := r.repoManager.ConnectionRepository()
	connection, err := connectionRepo.GetConnection(ctx)
	if err != nil {
		return err
	}
	// A connection to an account that went away counts as no connection.
	if !connection.IsZero() {
		if hasAccount(accounts, connection.Account) {
			return nil
		}
		log.Debugf("selected account %s is gone", connection.Account)
	}
	if len(accounts) == 0 {
		if connection.IsZero() {
			return nil
		}
		return connectionRepo.UpdateConnection(ctx, domain.Connection{})
	}

	first := accounts[0]
	chainID := domain.ChainIDMainnet
	if first.Owner != "" {
		chainID, err = r.bundler.GetSupportedChainID(ctx)
		if err != nil {
			return err
		}
	}

	log.Debugf("selecting account %s on chain %d", first.Address, chainID)
	return connectionRepo.UpdateConnection(ctx, domain.Connection{
		Account:    first.Address,
		Owner:      first.Owner,
		Identifier: first.Identifier,
		ChainID:    chainID,
	})
}

func hasAccount(accounts []domain.Account, address string) bool {
	for _, a := range accounts {
		if domain.IsSameAddress(a.Address, address) {
			return true
		}
	}
	return false
}

func owners(wallets []wallet.WalletInfo, personas []domain.Persona) []string {
	seen := make(map[string]struct{}, len(wallets)+len(personas))
	owners := make([]string, 0, len(wallets)+len(personas))
	add := func(address string) {
		key := strings.ToLower(address)
		if address == "" {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		owners = append(owners, address)
	}
	for _, w := range wallets {
		add(w.Address)
	}
	for _, p := range personas {
		add(p.Address)
	}
	return owners
}

func ownedAccounts(wallets []wallet.WalletInfo) []domain.Account {
	accounts := make([]domain.Account, 0, len(wallets))
	for _, w := range wallets {
		kind := domain.AccountKindImported
		if w.HasDerivationPath() {
			kind = domain.AccountKindDerived
		}
		accounts = append(accounts, domain.Account{
			Address:    w.Address,
			Name:       w.Name,
			Kind:       kind,
			Owner:      w.Owner,
			Identifier: w.Identifier,
			CreatedAt:  w.CreatedAt,
			UpdatedAt:  w.UpdatedAt,
		})
	}
	return accounts
}

type noopMetrics struct{}

func (noopMetrics) ObserveDerivation(string, int) {}
func (noopMetrics) ObserveReconcile(float64, int, error) {}
