// Package scanflow models the two-step disposal scan as an explicit state
// machine. The ledger itself is stateless; the flow lives with the caller.
package scanflow

import (
	"errors"
	"strings"

	"plastscan/internal/domain"
	"plastscan/internal/ledger"
)

type Step string

const (
	AwaitingProduct Step = "awaiting-product-scan"
	AwaitingBin     Step = "awaiting-bin-code"
	ResultShown     Step = "result-shown"
)

var (
	ErrInvalidTransition = errors.New("scanflow: invalid transition")
	ErrEmptyBinCode      = errors.New("scanflow: empty bin code")
	ErrEmptyBarcode      = errors.New("scanflow: empty product barcode")
)

// Flow is the per-session disposal progress. The zero value is a fresh flow.
type Flow struct {
	Step           Step                `json:"step"`
	ProductBarcode string              `json:"productBarcode,omitempty"`
	Result         *domain.ScanOutcome `json:"result,omitempty"`
}

func New() Flow { return Flow{Step: AwaitingProduct} }

// Current normalizes the zero value and unknown steps to AwaitingProduct.
func (f Flow) Current() Step {
	switch f.Step {
	case AwaitingBin, ResultShown:
		return f.Step
	default:
		return AwaitingProduct
	}
}

// ScanProduct records the decoded product barcode and moves to the bin step.
func (f Flow) ScanProduct(barcode string) (Flow, error) {
	if f.Current() != AwaitingProduct {
		return f, ErrInvalidTransition
	}
	if strings.TrimSpace(barcode) == "" {
		return f, ErrEmptyBarcode
	}
	return Flow{Step: AwaitingBin, ProductBarcode: barcode}, nil
}

// Composite returns the ledger input for the entered bin code. It does not
// advance the flow; ShowResult does.
func (f Flow) Composite(binCode string) (string, error) {
	if f.Current() != AwaitingBin {
		return "", ErrInvalidTransition
	}
	if strings.TrimSpace(binCode) == "" {
		return "", ErrEmptyBinCode
	}
	return ledger.Composite(f.ProductBarcode, binCode), nil
}

func (f Flow) ShowResult(o domain.ScanOutcome) (Flow, error) {
	if f.Current() != AwaitingBin {
		return f, ErrInvalidTransition
	}
	return Flow{Step: ResultShown, ProductBarcode: f.ProductBarcode, Result: &o}, nil
}

// Reset is allowed from any step.
func (f Flow) Reset() Flow { return New() }
