// Package builtin provides Go functions callable from documentation examples.
//
// Example fragments have no implicit access to the host program. A document
// author exposes helpers through a [Registry]; fragments invoke them with
// the call-go primitive:
//
//	registry := builtin.NewRegistry()
//	registry.Register("doc-version", func(ctx context.Context, args []*golisp.Data) (*golisp.Data, error) {
//	    return golisp.StringWithValue("1.4.0"), nil
//	})
//
// Then, inside an example block:
//
//	(call-go "doc-version")  ; => "1.4.0"
//
// Registered functions must be deterministic: rendered documents are
// required to be byte-identical between builds, so helpers that return
// timestamps, random values, or other run-dependent data will make builds
// unreproducible.
package builtin
