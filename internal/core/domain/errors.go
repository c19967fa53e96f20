package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Specific errors below wrap one of these so that callers can
// branch on the kind with errors.Is.
var (
	// ErrAuth is returned when the password is missing, wrong or the gate is
	// locked.
	ErrAuth = errors.New("auth error")
	// ErrImport is returned when a secret cannot be imported.
	ErrImport = errors.New("import error")
	// ErrDerivation is returned when an account cannot be derived.
	ErrDerivation = errors.New("derivation error")
	// ErrExport is returned when a secret cannot be exported.
	ErrExport = errors.New("export error")
	// ErrExceedMaxDerivation is returned when no free derivation path was found
	// within the allowed number of attempts.
	ErrExceedMaxDerivation = errors.New("exceed the max derivation times")
	// ErrIllegalOperation ...
	ErrIllegalOperation = errors.New("illegal operation")
	// ErrUnsupportedChain is returned for chains outside of the allow-list.
	ErrUnsupportedChain = errors.New("unsupported chain")
	// ErrNotFound ...
	ErrNotFound = errors.New("not found")
)

var (
	// ErrPasswordNotSet is returned when an operation requires a password but
	// none was set yet.
	ErrPasswordNotSet = fmt.Errorf("%w: password not set", ErrAuth)
	// ErrPasswordAlreadySet ...
	ErrPasswordAlreadySet = fmt.Errorf("%w: password already set", ErrAuth)
	// ErrInvalidPassword is returned when the given password doesn't match.
	ErrInvalidPassword = fmt.Errorf("%w: incorrect password", ErrAuth)
	// ErrWeakPassword is returned when a new password doesn't meet the rules.
	ErrWeakPassword = fmt.Errorf(
		"%w: password must be 8 to 20 characters long and contain at least "+
			"two of numbers, lowercase letters, uppercase letters and symbols",
		ErrAuth,
	)
	// ErrLocked is returned when secret material is requested while the
	// password is set but not unlocked.
	ErrLocked = fmt.Errorf("%w: wallet is locked", ErrAuth)

	// ErrInvalidMnemonic ...
	ErrInvalidMnemonic = fmt.Errorf("%w: invalid mnemonic", ErrImport)
	// ErrInvalidPrivateKey ...
	ErrInvalidPrivateKey = fmt.Errorf("%w: invalid private key", ErrImport)
	// ErrInvalidKeyStoreJSON ...
	ErrInvalidKeyStoreJSON = fmt.Errorf("%w: invalid keystore json", ErrImport)
	// ErrUnsupportedCoin ...
	ErrUnsupportedCoin = fmt.Errorf("%w: unsupported coin", ErrImport)

	// ErrInvalidDerivationPath is returned for paths that don't have the
	// m/purpose'/coin'/account'/change/index shape.
	ErrInvalidDerivationPath = fmt.Errorf(
		"%w: invalid derivation path", ErrDerivation,
	)
	// ErrPathOnPrivateKey is returned when a derivation path is given for a
	// secret that is a single private key.
	ErrPathOnPrivateKey = fmt.Errorf(
		"%w: cannot derive a path from a private key", ErrDerivation,
	)

	// ErrNotMnemonic is returned when exporting mnemonic words of a wallet
	// that wasn't imported from a mnemonic.
	ErrNotMnemonic = fmt.Errorf("%w: wallet has no mnemonic", ErrExport)
	// ErrMissingPathOnMnemonic is returned when exporting the private key of
	// a mnemonic without specifying the path.
	ErrMissingPathOnMnemonic = fmt.Errorf(
		"%w: a derivation path is required for mnemonic keys", ErrExport,
	)

	// ErrDeleteDerivedWallet ...
	ErrDeleteDerivedWallet = fmt.Errorf(
		"%w: cannot delete a wallet with derivation path", ErrIllegalOperation,
	)
	// ErrWalletAlreadyExists ...
	ErrWalletAlreadyExists = fmt.Errorf(
		"%w: wallet already exists", ErrIllegalOperation,
	)
	// ErrInvalidWalletName is returned for names that are empty or longer than
	// MaxWalletNameLength once trimmed.
	ErrInvalidWalletName = fmt.Errorf(
		"%w: wallet name must be 1 to %d characters long",
		ErrIllegalOperation, MaxWalletNameLength,
	)
	// ErrInvalidAddress ...
	ErrInvalidAddress = fmt.Errorf("%w: invalid address", ErrIllegalOperation)

	// ErrWalletNotFound ...
	ErrWalletNotFound = fmt.Errorf("wallet %w", ErrNotFound)
	// ErrNoPrimaryWallet is returned when deriving without any mnemonic wallet
	// or from one that has no derivation path.
	ErrNoPrimaryWallet = fmt.Errorf("primary wallet %w", ErrNotFound)
	// ErrAccountNotFound ...
	ErrAccountNotFound = fmt.Errorf("account %w", ErrNotFound)
)

// DerivationError carries the path at which a derivation failed.
type DerivationError struct {
	Path string
	Err  error
}

func (e *DerivationError) Error() string {
	return fmt.Sprintf("failed to derive account at path %s: %s", e.Path, e.Err)
}

func (e *DerivationError) Unwrap() error {
	return e.Err
}

func (e *DerivationError) Is(target error) bool {
	return target == ErrDerivation
}
