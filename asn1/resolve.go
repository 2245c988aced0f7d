package asn1

// resolveSet re-derives NamedInts for every TYPE_REF chain in the set so
// that, e.g., a field declared as `KeyUsage` (itself `BIT STRING
// {digitalSignature(0), ...}`) exposes its named bits without the caller
// following the reference manually. This mirrors the teacher's
// resolveTypes fixed-point pass, collapsed to a single pass since this
// loader does not inline TYPE_REFs (see asn1.Node's doc comment) — it only
// needs to propagate metadata, not structure.
func resolveSet(ms *ModuleSet) error {
	for _, n := range ms.types {
		if err := propagateNamedInts(ms, n, map[string]bool{}); err != nil {
			return err
		}
	}
	return nil
}

func propagateNamedInts(ms *ModuleSet, n *Node, seen map[string]bool) error {
	if n.Kind == TYPE_REF {
		if seen[n.TypeName] {
			return &Error{Kind: SchemaReference, Msg: "cyclic type alias at " + n.TypeName}
		}
		target, ok := ms.types[n.TypeName]
		if !ok {
			// Forward reference to a module not yet merged into the set;
			// resolved lazily by ModuleSet.Resolve at decode time instead.
			return nil
		}
		seen2 := map[string]bool{}
		for k := range seen {
			seen2[k] = true
		}
		seen2[n.TypeName] = true
		if err := propagateNamedInts(ms, target, seen2); err != nil {
			return err
		}
		if n.NamedInts == nil {
			n.NamedInts = target.NamedInts
		}
		return nil
	}
	for _, c := range n.Children {
		if err := propagateNamedInts(ms, c, seen); err != nil {
			return err
		}
	}
	return nil
}
