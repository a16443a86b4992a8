// Package store implements the filesystem-backed artifact store spec.md §6 describes: three namespaces
// (on_chain/common, on_chain per-user, off_chain per-user) addressed by fixed filenames, with off-chain secrets
// sealed at rest under a holder-supplied passphrase. It is the external collaborator spec.md §1 places outside the
// protocol core: it only serializes bytes the mercat package already produced and routes them between roles,
// grounded on the teacher's own artifact conventions (original_source/mercat/common/src/account_create.rs's
// save_object/load_object) adapted from Substrate's codec onto this module's own codec package.
package store

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mercat-network/mercat/schemes/basic/aead"
	"github.com/mercat-network/mercat/schemes/basic/mhf"
)

const (
	onChainDir  = "on_chain"
	offChainDir = "off_chain"
	commonUser  = "common"
)

// ErrNotFound is returned when a requested artifact does not exist.
var ErrNotFound = errors.New("store: artifact not found")

// Store roots every namespace at a single base directory, matching spec.md §6's three-namespace layout:
// on_chain/{user|common}/<file> and off_chain/<user>/<file>.
type Store struct {
	BaseDir string
}

// New returns a Store rooted at baseDir, creating it if necessary.
func New(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}
	return &Store{BaseDir: baseDir}, nil
}

func (s *Store) onChainPath(user, filename string) string {
	return filepath.Join(s.BaseDir, onChainDir, user, filename)
}

func (s *Store) offChainPath(user, filename string) string {
	return filepath.Join(s.BaseDir, offChainDir, user, filename)
}

// SaveOnChain writes a world-readable artifact under on_chain/<user>/<filename>.
func (s *Store) SaveOnChain(user, filename string, data []byte) error {
	return writeFile(s.onChainPath(user, filename), data)
}

// LoadOnChain reads a world-readable artifact from on_chain/<user>/<filename>.
func (s *Store) LoadOnChain(user, filename string) ([]byte, error) {
	return readFile(s.onChainPath(user, filename))
}

// SaveCommon writes an artifact shared across all users, under on_chain/common/<filename> (e.g. the asset-id
// allowlist, or the last-validated tx id).
func (s *Store) SaveCommon(filename string, data []byte) error {
	return s.SaveOnChain(commonUser, filename, data)
}

// LoadCommon reads a shared artifact from on_chain/common/<filename>.
func (s *Store) LoadCommon(filename string) ([]byte, error) {
	return s.LoadOnChain(commonUser, filename)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

const (
	sealDomain  = "mercat/store/seal"
	saltSize    = 16
	nonceSize   = 24
	keySize     = 32
	mhfCost     = 10 // ~5MiB working set; tuned for interactive CLI use, not offline password cracking
)

// SaveOffChain seals data under passphrase and writes it to off_chain/<user>/<filename>. Only the holder who knows
// passphrase can recover the plaintext; the store itself never sees it in the clear once sealed (spec.md §6 leaves
// at-rest protection of off-chain secrets to the implementation, spec.md §9 "Zeroization" for the in-memory half).
func (s *Store) SaveOffChain(user, filename string, data, passphrase []byte) error {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return err
	}
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return err
	}

	key := mhf.Hash(sealDomain, mhfCost, salt, passphrase, nil, keySize)
	sealed := aead.New(sealDomain, key, nonceSize).Seal(nil, nonce, data, []byte(filename))

	out := make([]byte, 0, saltSize+nonceSize+len(sealed))
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, sealed...)

	return writeFile(s.offChainPath(user, filename), out)
}

// LoadOffChain reads and unseals an artifact written by SaveOffChain.
func (s *Store) LoadOffChain(user, filename string, passphrase []byte) ([]byte, error) {
	raw, err := readFile(s.offChainPath(user, filename))
	if err != nil {
		return nil, err
	}
	if len(raw) < saltSize+nonceSize {
		return nil, fmt.Errorf("store: sealed artifact %q is truncated", filename)
	}

	salt := raw[:saltSize]
	nonce := raw[saltSize : saltSize+nonceSize]
	sealed := raw[saltSize+nonceSize:]

	key := mhf.Hash(sealDomain, mhfCost, salt, passphrase, nil, keySize)
	return aead.New(sealDomain, key, nonceSize).Open(nil, nonce, sealed, []byte(filename))
}

// Filenames per spec.md §6.

// SecretAccountFile names an account holder's secret account material for ticker.
func SecretAccountFile(ticker string) string { return fmt.Sprintf("secret_account_%s", ticker) }

// PublicAccountFile names an account's public, ordered state for ticker.
func PublicAccountFile(ticker string) string { return fmt.Sprintf("public_account_%s", ticker) }

// AccountTxFile names an account-creation transaction artifact.
func AccountTxFile(txID uint32, user, ticker string) string {
	return fmt.Sprintf("account_tx_%d_%s_%s", txID, user, ticker)
}

// TxFile names a transfer or issuance transaction artifact at a given protocol state.
func TxFile(txID uint32, user, state string) string {
	return fmt.Sprintf("tx_%d_%s_%s", txID, user, state)
}

// MediatorPublicAccountFile names the mediator's shared public account memo.
const MediatorPublicAccountFile = "mediator_public_account"

// LastValidatedTxIDFile names the validator's watermark of the last tx_id it committed.
const LastValidatedTxIDFile = "last_validated_tx_id"

// AssetIDsFile names the shared asset-id allowlist.
const AssetIDsFile = "asset_ids"
