package mercat

import "fmt"

// InputError reports malformed bytes, a non-canonical point/scalar, or an unknown asset-id (spec.md §7).
type InputError struct {
	Reason string
}

func (e *InputError) Error() string { return fmt.Sprintf("mercat: input error: %s", e.Reason) }

// ProofError wraps a failing zero-knowledge proof check, preserving the original discriminator from package proofs
// (spec.md §7, "each proof carries a distinct failing-check discriminator").
type ProofError struct {
	Proof string
	Err   error
}

func (e *ProofError) Error() string { return fmt.Sprintf("mercat: %s proof failed: %v", e.Proof, e.Err) }
func (e *ProofError) Unwrap() error { return e.Err }

// SignatureError reports a signature that does not verify under the attested public key.
type SignatureError struct {
	Role string
}

func (e *SignatureError) Error() string {
	return fmt.Sprintf("mercat: signature verification failed for role %q", e.Role)
}

// StateError reports an operation invoked against a transaction in the wrong state, or a tx_id out of order.
type StateError struct {
	Reason string
}

func (e *StateError) Error() string { return fmt.Sprintf("mercat: state error: %s", e.Reason) }

// CryptoError wraps a decryption failure — a plaintext outside the searched range.
type CryptoError struct {
	Err error
}

func (e *CryptoError) Error() string { return fmt.Sprintf("mercat: crypto error: %v", e.Err) }
func (e *CryptoError) Unwrap() error { return e.Err }

// PolicyError reports a mediator rejection. It is always terminal: a rejected transaction never re-enters the
// protocol under the same tx_id (spec.md §7, "PolicyError: mediator-rejected; terminal").
type PolicyError struct {
	Reason string
}

func (e *PolicyError) Error() string { return fmt.Sprintf("mercat: rejected by mediator: %s", e.Reason) }

// AccountVerificationError is returned by the account-creation validator on any proof or signature failure
// (spec.md §4.5).
type AccountVerificationError struct {
	Err error
}

func (e *AccountVerificationError) Error() string {
	return fmt.Sprintf("mercat: account verification failed: %v", e.Err)
}
func (e *AccountVerificationError) Unwrap() error { return e.Err }
