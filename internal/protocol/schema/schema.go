package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/danmuck/obsidian/internal/protocol/frame"
	"github.com/danmuck/obsidian/internal/protocol/wire"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnknownMessage   = errors.New("schema: unknown message")
	ErrDuplicateMessage = errors.New("schema: duplicate message")
)

// Message binds a packet id to the descriptor of its payload.
type Message struct {
	ID         uint32
	Name       string
	Descriptor wire.Descriptor
}

type ValidationError struct {
	MessageID uint32
	Field     int
	Reason    string
}

func (e ValidationError) Error() string {
	if e.Field < 0 {
		return fmt.Sprintf("schema: message_id=%d: %s", e.MessageID, e.Reason)
	}
	return fmt.Sprintf("schema: message_id=%d field=%d: %s", e.MessageID, e.Field, e.Reason)
}

// Registry holds the known messages of a protocol.
type Registry struct {
	codec  *wire.Codec
	byID   map[uint32]Message
	byName map[string]uint32
}

// NewRegistry builds a registry. A nil codec selects wire.Default().
func NewRegistry(codec *wire.Codec, msgs ...Message) (*Registry, error) {
	if codec == nil {
		codec = wire.Default()
	}
	r := &Registry{
		codec:  codec,
		byID:   make(map[uint32]Message, len(msgs)),
		byName: make(map[string]uint32, len(msgs)),
	}
	for _, m := range msgs {
		if err := r.add(m); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) add(m Message) error {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return errors.Errorf("schema: message_id=%d missing name", m.ID)
	}
	if _, ok := r.byID[m.ID]; ok {
		return errors.Wrapf(ErrDuplicateMessage, "id %d", m.ID)
	}
	if _, ok := r.byName[m.Name]; ok {
		return errors.Wrapf(ErrDuplicateMessage, "name %q", m.Name)
	}
	r.byID[m.ID] = m
	r.byName[m.Name] = m.ID
	return nil
}

func (r *Registry) Lookup(id uint32) (Message, bool) {
	m, ok := r.byID[id]
	return m, ok
}

func (r *Registry) LookupName(name string) (Message, bool) {
	id, ok := r.byName[name]
	if !ok {
		return Message{}, false
	}
	return r.byID[id], true
}

// Messages returns the registered messages ordered by id.
func (r *Registry) Messages() []Message {
	out := make([]Message, 0, len(r.byID))
	for _, m := range r.byID {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Validate checks that fields match the descriptor registered for id.
func (r *Registry) Validate(id uint32, fields []wire.Field) error {
	log.Debug().Uint32("message_id", id).Int("fields", len(fields)).Msg("schema.Validate")
	m, ok := r.byID[id]
	if !ok {
		log.Error().Uint32("message_id", id).Msg("schema.Validate unknown message")
		return errors.Wrapf(ErrUnknownMessage, "id %d", id)
	}
	if len(fields) != len(m.Descriptor) {
		log.Error().
			Uint32("message_id", id).
			Int("got", len(fields)).
			Int("want", len(m.Descriptor)).
			Msg("schema.Validate field count mismatch")
		return ValidationError{MessageID: id, Field: -1, Reason: fmt.Sprintf("expected %d fields, got %d", len(m.Descriptor), len(fields))}
	}
	for i, k := range m.Descriptor {
		if fields[i].Kind != k {
			log.Error().
				Uint32("message_id", id).
				Int("field", i).
				Stringer("got", fields[i].Kind).
				Stringer("want", k).
				Msg("schema.Validate type mismatch")
			return ValidationError{MessageID: id, Field: i, Reason: "type mismatch"}
		}
	}
	return nil
}

// Encode validates fields and packs them into a frame for id.
func (r *Registry) Encode(id uint32, fields ...wire.Field) (frame.Frame, error) {
	if err := r.Validate(id, fields); err != nil {
		return frame.Frame{}, err
	}
	payload, err := r.codec.Encode(fields...)
	if err != nil {
		return frame.Frame{}, errors.Wrapf(err, "schema: encode %s", r.byID[id].Name)
	}
	return frame.Frame{ID: id, Payload: payload}, nil
}

// Decode unpacks a frame payload with the descriptor registered for its id.
// Bytes left after the last field are rejected.
func (r *Registry) Decode(f frame.Frame) ([]wire.Field, error) {
	m, ok := r.byID[f.ID]
	if !ok {
		log.Error().Uint32("message_id", f.ID).Msg("schema.Decode unknown message")
		return nil, errors.Wrapf(ErrUnknownMessage, "id %d", f.ID)
	}
	fields, n, err := r.codec.Decode(wire.NewReader(f.Payload), m.Descriptor)
	if err != nil {
		return nil, errors.Wrapf(err, "schema: decode %s", m.Name)
	}
	if n != len(f.Payload) {
		return nil, ValidationError{MessageID: f.ID, Field: -1, Reason: fmt.Sprintf("%d trailing bytes", len(f.Payload)-n)}
	}
	log.Debug().Uint32("message_id", f.ID).Str("message", m.Name).Int("bytes", n).Msg("schema.Decode ok")
	return fields, nil
}
