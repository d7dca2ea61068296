package billing

import "context"

// EntityInfo is the registered legal entity resolved from a tax id
type EntityInfo struct {
	Name     string
	TaxID    string
	TaxSubID string
	RegNum   string
	Address  string
}

// EntityLookup resolves a tax id to registered entity details. It is an
// advisory capability: implementations return (nil, nil) when nothing is
// found, and callers treat any error the same way as no match.
type EntityLookup interface {
	LookupByTaxID(ctx context.Context, taxID string) (*EntityInfo, error)
}

// NopLookup is an EntityLookup that never finds anything. Used in tests and
// when no registry credentials are configured.
type NopLookup struct{}

// LookupByTaxID always reports no match
func (NopLookup) LookupByTaxID(ctx context.Context, taxID string) (*EntityInfo, error) {
	return nil, nil
}

var _ EntityLookup = NopLookup{}
