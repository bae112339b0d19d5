package provider

import (
	"fmt"

	"bulkfix/internal/diag"
)

// NameOf returns p.Name(). When Name panics the dynamic type is used, so a
// broken provider can still be named in warnings.
func NameOf(p interface{ Name() string }) (name string) {
	defer func() {
		if recover() != nil {
			name = fmt.Sprintf("%T", p)
		}
	}()
	return p.Name()
}

// FixableCodesOf calls f.FixableCodes through Invoke. A failing fixer
// declares nothing.
func FixableCodesOf(f Fixer) ([]diag.Code, error) {
	var codes []diag.Code
	err := Invoke(NameOf(f), "declare", "", func() error {
		codes = f.FixableCodes()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return codes, nil
}

// CodesOf is FixableCodesOf for analyzers.
func CodesOf(a Analyzer) ([]diag.Code, error) {
	var codes []diag.Code
	err := Invoke(NameOf(a), "declare", "", func() error {
		codes = a.Codes()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return codes, nil
}
