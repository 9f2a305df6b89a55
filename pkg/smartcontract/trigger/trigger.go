// Package trigger enumerates the reasons an Application Engine invocation
// runs, each imposing a
// different call-flag baseline and gas-accounting policy.
package trigger

// Type identifies why an Application Engine invocation was started.
type Type byte

const (
	// OnPersist runs system-level native updates before any transaction
	// in a block is applied. System-only, full state access, unmetered.
	OnPersist Type = 0x01
	// PostPersist runs system-level native updates after every
	// transaction in a block has been applied. System-only, unmetered.
	PostPersist Type = 0x02
	// Verification runs a signer's verification script. Read-only, may
	// not emit notifications or call arbitrary contracts.
	Verification Type = 0x20
	// Application runs a transaction's entry script under a gas budget
	// equal to its systemFee.
	Application Type = 0x40
	// All is used only for filtering notification subscriptions; it is
	// never the trigger of an actual invocation.
	All = OnPersist | PostPersist | Verification | Application
)

// String renders the trigger name for diagnostics/logging.
func (t Type) String() string {
	switch t {
	case OnPersist:
		return "OnPersist"
	case PostPersist:
		return "PostPersist"
	case Verification:
		return "Verification"
	case Application:
		return "Application"
	default:
		return "Unknown"
	}
}
