/*
Package tether synchronizes an externally owned block-tree document with a
subscription-based editor store, solving the controlled-value feedback loop:
internal edits must be reported to the host exactly once, classified as
durable changes or transient input, while host-supplied values must reset
internal state without echoing back out as fresh changes.

# Tether

A Tether observes one store and mediates both directions:

	Store → observer → onChange/onInput → host
	host  → SetValue → ReplaceBlocks    → Store

Internal edits flow outward through the change observer, which compares the
store's blocks against its last snapshot (by identity, or structurally when
the store reports controlled inner regions) and emits one classified
notification per meaningful change. Host values flow inward through SetValue,
which recognizes the engine's own emissions echoed back — those never touch
the store — and installs genuinely new values with an armed marker so the
resulting notification is not re-emitted.

# Echo Tracking

Every outward emission is remembered by identity until the host supplies it
back. An inbound value matching the most recent emission completes the
round-trip and clears the pending set; a match on an older emission leaves
newer expectations in place; anything else is a genuine host change and
abandons them. Identity, not structure, is the discriminant throughout: a
deep-equal tree under a new identity is an intentional host replacement.

# Persistence Classification

Stores report whether their last block change is persistent. A persistent
change emits onChange; a transient one emits onInput. The two-step pattern
where a transient edit is later marked persistent, without further block
mutation, emits one additional onChange carrying the same tree. Detecting
that pattern requires stores to notify subscribers synchronously, one
notification per mutation.

# Feeds and Relays

When the canonical document lives outside process memory, a Feed watches a
Source (for example a FileSource built on fsnotify), decodes Documents
through a Codec, validates them, and applies them to the Tether as inbound
updates. A Relay runs the opposite direction: it wraps a fallible host sink
in a pipz pipeline with retry, backoff, and timeout protection, and plugs
into OnChange to persist durable changes.

# Example

	store := memstore.New()
	t := tether.New[*tether.BlockList](store).
	    OnChange(func(tree *tether.BlockList, sel tether.Selection) {
	        save(tree)
	    }).
	    OnInput(func(tree *tether.BlockList, sel tether.Selection) {
	        markDirty()
	    })

	if err := t.Attach(ctx, doc.Tree(), settings); err != nil {
	    return err
	}
	defer t.Close()

	// Host pushes a replacement document; the store resets, nothing echoes.
	t.SetValue(replacement, tether.Selection{})
*/
package tether
