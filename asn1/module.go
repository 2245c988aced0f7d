package asn1

// Module is the schema tree produced by parsing one ASN.1 module. Types
// holds every named type assignment; Values holds every named value
// assignment (used almost exclusively for OBJECT IDENTIFIER literals, e.g.
// `id-ce-keyUsage OBJECT IDENTIFIER ::= {id-ce 15}`).
type Module struct {
	Name   string
	Types  map[string]*Node
	Values map[string]*Node
	src    string
}

// ModuleSet is a namespace shared by several parsed modules, so that a type
// defined in one (e.g. an X.509 PKIX module) can reference a type defined
// in another (e.g. the PKIX algorithm-identifier module) without either
// having to re-declare it. x509cert and cms each load their ASN.1 source
// into one ModuleSet before decoding.
type ModuleSet struct {
	types  map[string]*Node
	values map[string]*Node
}

// NewModuleSet returns an empty namespace.
func NewModuleSet() *ModuleSet {
	return &ModuleSet{types: map[string]*Node{}, values: map[string]*Node{}}
}

// Parse parses src and merges its type/value assignments into the set,
// overwriting any earlier binding a later module redefines (matching the
// ordinary ASN.1 convention that IMPORTS make foreign names locally visible
// under the importer's own name).
func (ms *ModuleSet) Parse(src string) (*Module, error) {
	mod, err := parseModule(src)
	if err != nil {
		return nil, err
	}
	for name, n := range mod.Types {
		n.module = nil
		ms.types[name] = n
	}
	for name, n := range mod.Values {
		ms.values[name] = n
	}
	if err := resolveSet(ms); err != nil {
		return nil, err
	}
	return mod, nil
}

// Lookup returns a freshly cloned copy of the named type, with its own
// top-level TYPE_REF resolved against the set. Nested TYPE_REF children are
// left unresolved (per asn1.Node's doc comment) — der.Decode resolves those
// on demand as it walks down into them.
func (ms *ModuleSet) Lookup(name string) (*Node, error) {
	n, ok := ms.types[name]
	if !ok {
		return nil, &Error{Kind: SchemaReference, Msg: "undefined type " + name}
	}
	if n.Kind == TYPE_REF {
		return ms.Resolve(n)
	}
	return n.Clone(), nil
}

// Resolve looks up the type named by a TYPE_REF node (or returns n itself
// if it isn't one), following alias chains. It is exported so der.Decode
// can expand a reference it has walked down into.
func (ms *ModuleSet) Resolve(n *Node) (*Node, error) {
	seen := map[string]bool{}
	for n.Kind == TYPE_REF {
		if seen[n.TypeName] {
			return nil, &Error{Kind: SchemaReference, Msg: "cyclic type reference at " + n.TypeName}
		}
		seen[n.TypeName] = true
		target, ok := ms.types[n.TypeName]
		if !ok {
			return nil, &Error{Kind: SchemaReference, Msg: "undefined type " + n.TypeName}
		}
		clone := target.Clone()
		// The reference site's own tag/optional/default annotations take
		// precedence over the target's, mirroring IMPLICIT/EXPLICIT
		// overrides applied at the field that names the reference.
		if n.Tag != nil {
			clone.Tag = n.Tag
		}
		clone.Optional = n.Optional || clone.Optional
		if n.Default != nil {
			clone.Default = n.Default
		}
		clone.Name = n.Name
		n = clone
	}
	return n, nil
}

// ResolveOIDValue returns the OID literal bound to a value assignment,
// following named references such as `{id-ce 15}`.
func (ms *ModuleSet) ResolveOIDValue(name string) (OID, error) {
	n, ok := ms.values[name]
	if !ok {
		return nil, &Error{Kind: SchemaReference, Msg: "undefined value " + name}
	}
	oid, ok := n.Value.(OID)
	if !ok {
		return nil, &Error{Kind: SchemaReference, Msg: name + " is not an OBJECT IDENTIFIER"}
	}
	return oid, nil
}
