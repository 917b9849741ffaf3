package events

// Envelope is the wire shape persisted by the event store: a type tag plus
// opaque payload bytes, decoded by the Registry into a concrete Event
// (after any registered Upcaster has brought it to the current version). Keeping
// this separate from the Event interface lets the store stay agnostic of
// the growing event union.
type Envelope struct {
	Type    Type
	Stream  Stream
	Version int
	Payload []byte
}

// Decoder turns a raw envelope payload into a concrete Event, given the
// already-stamped base fields (sequence, caused_by, run, timestamp are
// applied by the caller via WithSequence after Decode returns).
type Decoder func(payload []byte) (Event, error)

// Upcaster rewrites an older envelope version to the current version
// before decoding, so replay never has to understand every historical
// wire shape directly. Section 9 requires this for "extensibility for new
// event variants without breaking replay" — every event variant carries an
// explicit tag string, and new fields are optional with documented
// defaults, so the common case is simply a no-op identity upcast.
type Upcaster func(version int, payload []byte) (int, []byte, error)

// Registry binds event type tags to decoders and (optionally) upcasters.
// The eventlog package uses it to decode rows read back from storage; it
// has no persistent state of its own beyond the maps.
type Registry struct {
	decoders  map[Type]Decoder
	upcasters map[Type]Upcaster
}

// NewRegistry returns an empty registry. Callers register one decoder per
// event type they expect to read back; unregistered types fail to decode
// with ErrUnknownType so a partially-wired registry fails loudly rather
// than silently dropping events.
func NewRegistry() *Registry {
	return &Registry{
		decoders:  make(map[Type]Decoder),
		upcasters: make(map[Type]Upcaster),
	}
}

// Register binds a decoder for the given event type. An optional upcaster
// may be nil, meaning the current wire version is assumed.
func (r *Registry) Register(t Type, dec Decoder, up Upcaster) {
	r.decoders[t] = dec
	if up != nil {
		r.upcasters[t] = up
	}
}

// Decode upcasts (if a rule is registered) then decodes the envelope.
func (r *Registry) Decode(env Envelope) (Event, error) {
	version, payload := env.Version, env.Payload
	if up, ok := r.upcasters[env.Type]; ok {
		v, p, err := up(version, payload)
		if err != nil {
			return nil, err
		}
		version, payload = v, p
	}
	_ = version
	dec, ok := r.decoders[env.Type]
	if !ok {
		return nil, ErrUnknownType{Type: env.Type}
	}
	return dec(payload)
}

// ErrUnknownType is returned by Decode when no decoder is registered for
// the envelope's type tag.
type ErrUnknownType struct {
	Type Type
}

func (e ErrUnknownType) Error() string {
	return "events: no decoder registered for type " + string(e.Type)
}
