package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/maskwallet/walletd/internal/core/domain"
	"github.com/spf13/viper"
)

const (
	// DatadirKey is the local data directory to store the internal state of daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"
	// MaxDeriveCountKey is the max number of paths tried by a single wallet
	// derivation
	MaxDeriveCountKey = "MAX_DERIVE_COUNT"
	// ReconcileMinIntervalKey is the min spacing between two consecutive
	// updates of the account list
	ReconcileMinIntervalKey = "RECONCILE_MIN_INTERVAL"
	// ReconcileIntervalKey is the interval of the periodic account list refresh
	ReconcileIntervalKey = "RECONCILE_INTERVAL"
	// FunderURLKey is the base url of the smart pay funder API
	FunderURLKey = "FUNDER_URL"
	// OwnerURLKey is the base url of the smart pay owner API
	OwnerURLKey = "OWNER_URL"
	// BundlerURLKey is the base url of the smart pay bundler API
	BundlerURLKey = "BUNDLER_URL"
	// ChainRPCURLsKey is the comma separated list of <chainID>=<url> of the
	// JSON-RPC nodes used to fetch receipts
	ChainRPCURLsKey = "CHAIN_RPC_URLS"
	// SupportedChainIDsKey is the comma separated list of chains the smart pay
	// services are allowed to be queried for
	SupportedChainIDsKey = "SUPPORTED_CHAIN_IDS"
	// PersonaAddressesKey is the comma separated list of persona addresses
	// whose smart accounts are tracked
	PersonaAddressesKey = "PERSONA_ADDRESSES"
	// MetricsAddrKey is the address <host:port> the prometheus endpoint listens on.
	// Metrics are disabled if empty
	MetricsAddrKey = "METRICS_ADDR"
	// UnlockPasswordFileKey defines full path to a file that contains the
	// password for unlocking the wallet, if provided wallet will be unlocked
	// automatically
	UnlockPasswordFileKey = "UNLOCK_PASSWORD_FILE"
	// LightScryptKey makes the key engine use the light scrypt params for
	// exported keystore files too
	LightScryptKey = "LIGHT_SCRYPT"
	// HTTPTimeoutKey is the timeout of requests to the smart pay services
	HTTPTimeoutKey = "HTTP_TIMEOUT"
	// HTTPCacheTTLKey is for how long responses of the smart pay services are cached
	HTTPCacheTTLKey = "HTTP_CACHE_TTL"
	// HTTPRateLimitKey is the max number of requests per second to each of the
	// smart pay services
	HTTPRateLimitKey = "HTTP_RATE_LIMIT"
	// EnableProfilerKey enables periodic logging of memory statistics
	EnableProfilerKey = "ENABLE_PROFILER"
	// StatsIntervalKey defines interval for printing basic statistics
	StatsIntervalKey = "STATS_INTERVAL"

	DbLocation       = "db"
	ProfilerLocation = "stats"

	DBBadger   = "badger"
	DBInMemory = "inmemory"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("walletd", false)

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("WALLET")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DBTypeKey, DBBadger)
	vip.SetDefault(MaxDeriveCountKey, domain.DefaultMaxDeriveCount)
	vip.SetDefault(ReconcileMinIntervalKey, time.Second)
	vip.SetDefault(ReconcileIntervalKey, 5*time.Minute)
	vip.SetDefault(SupportedChainIDsKey, fmt.Sprintf(
		"%d,%d", domain.ChainIDMatic, domain.ChainIDMumbai,
	))
	vip.SetDefault(LightScryptKey, false)
	vip.SetDefault(HTTPTimeoutKey, 30*time.Second)
	vip.SetDefault(HTTPCacheTTLKey, 15*time.Second)
	vip.SetDefault(HTTPRateLimitKey, 10)
	vip.SetDefault(EnableProfilerKey, false)
	vip.SetDefault(StatsIntervalKey, 10*time.Minute)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

// GetSupportedChainIDs returns the parsed list of supported chains.
func GetSupportedChainIDs() []uint64 {
	ids, _ := parseChainIDs(GetString(SupportedChainIDsKey))
	return ids
}

// GetChainRPCURLs returns the parsed map of chainID to rpc node url.
func GetChainRPCURLs() map[uint64]string {
	urls, _ := parseChainRPCURLs(GetString(ChainRPCURLsKey))
	return urls
}

func GetPersonaAddresses() []string {
	return splitList(GetString(PersonaAddressesKey))
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	dbType := GetString(DBTypeKey)
	if dbType != DBBadger && dbType != DBInMemory {
		return fmt.Errorf(
			"%s must be one of %s, %s", DBTypeKey, DBBadger, DBInMemory,
		)
	}

	if GetInt(MaxDeriveCountKey) <= 0 {
		return fmt.Errorf("%s must be greater than 0", MaxDeriveCountKey)
	}
	if GetDuration(ReconcileMinIntervalKey) <= 0 {
		return fmt.Errorf("%s must be greater than 0", ReconcileMinIntervalKey)
	}
	if GetDuration(ReconcileIntervalKey) < GetDuration(ReconcileMinIntervalKey) {
		return fmt.Errorf(
			"%s must not be lower than %s",
			ReconcileIntervalKey, ReconcileMinIntervalKey,
		)
	}
	if GetInt(HTTPRateLimitKey) <= 0 {
		return fmt.Errorf("%s must be greater than 0", HTTPRateLimitKey)
	}

	for _, key := range []string{FunderURLKey, OwnerURLKey, BundlerURLKey} {
		if u := GetString(key); u != "" {
			if _, err := url.ParseRequestURI(u); err != nil {
				return fmt.Errorf("invalid %s: %s", key, err)
			}
		}
	}

	chainIDs, err := parseChainIDs(GetString(SupportedChainIDsKey))
	if err != nil {
		return fmt.Errorf("invalid %s: %s", SupportedChainIDsKey, err)
	}
	if len(chainIDs) <= 0 {
		return fmt.Errorf("%s must not be empty", SupportedChainIDsKey)
	}
	if _, err := parseChainRPCURLs(GetString(ChainRPCURLsKey)); err != nil {
		return fmt.Errorf("invalid %s: %s", ChainRPCURLsKey, err)
	}
	for _, a := range GetPersonaAddresses() {
		if _, err := domain.ChecksumAddress(a); err != nil {
			return fmt.Errorf("invalid persona address %s", a)
		}
	}

	return nil
}

func initDatadir() error {
	datadir := GetDatadir()
	if GetString(DBTypeKey) == DBBadger {
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, DbLocation)); err != nil {
			return err
		}
	}

	profilerEnabled := GetBool(EnableProfilerKey)
	if profilerEnabled {
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, ProfilerLocation)); err != nil {
			return err
		}
	}
	return nil
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}

func parseChainIDs(list string) ([]uint64, error) {
	items := splitList(list)
	ids := make([]uint64, 0, len(items))
	for _, item := range items {
		id, err := strconv.ParseUint(item, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chain id %s", item)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseChainRPCURLs(list string) (map[uint64]string, error) {
	urls := make(map[uint64]string)
	for _, item := range splitList(list) {
		parts := strings.SplitN(item, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%s must be in the form <chainID>=<url>", item)
		}
		id, err := strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chain id %s", parts[0])
		}
		if _, err := url.ParseRequestURI(parts[1]); err != nil {
			return nil, fmt.Errorf("invalid url for chain %d: %s", id, err)
		}
		urls[id] = parts[1]
	}
	return urls, nil
}

func splitList(list string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
