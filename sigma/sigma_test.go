package sigma_test

import (
	"testing"

	"github.com/mercat-network/mercat/proofs"
	"github.com/mercat-network/mercat/sigma"
)

// The three proof families in package proofs with a first-move struct (correctness, well-formedness, cipher
// equality) each implement sigma.InitialMessage directly rather than sharing one generic struct; this just confirms the interface is actually satisfied and that each Label matches its
// proof's own domain-separator constant.
func TestInitialMessagesSatisfyLabelInterface(t *testing.T) {
	cases := []struct {
		name  string
		msg   sigma.InitialMessage
		label string
	}{
		{"correctness", proofs.CorrectnessInitialMessage{}, proofs.CorrectnessLabel},
		{"wellformedness", proofs.WellFormednessInitialMessage{}, proofs.WellFormednessLabel},
		{"cipherequality", proofs.CipherEqualityInitialMessage{}, proofs.CipherEqualityLabel},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.msg.Label(); got != c.label {
				t.Errorf("Label() = %q, want %q", got, c.label)
			}
		})
	}
}
