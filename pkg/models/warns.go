package models

import (
	"bytes"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// isoLayout matches the fixed-width form used to compare warn dates against
// user supplied prefixes.
const isoLayout = "2006-01-02T15:04:05.000Z"

// Warn representa una advertencia individual
type Warn struct {
	ID        string     `bson:"id,omitempty" json:"id,omitempty"`
	Date      time.Time  `bson:"date,omitempty" json:"date,omitempty"`
	Reason    WarnReason `bson:"reason" json:"reason"`
	Moderator string     `bson:"moderator,omitempty" json:"moderator,omitempty"`
}

// NewWarn builds a warn with a plain text reason.
func NewWarn(id string, date time.Time, reason string) Warn {
	return Warn{ID: id, Date: date, Reason: TextReason(reason)}
}

// HasDate reports whether the warn carries a timestamp. Old records may not.
func (w Warn) HasDate() bool {
	return !w.Date.IsZero()
}

// ISOString returns the UTC timestamp with millisecond precision, or "" when
// the warn has no date.
func (w Warn) ISOString() string {
	if !w.HasDate() {
		return ""
	}
	return w.Date.UTC().Format(isoLayout)
}

// Render returns the text shown to moderators for this warn. Legacy reasons
// that were not stored as strings are rendered in their raw form. A warn
// without reason text renders as the raw record so it stays identifiable.
func (w Warn) Render() string {
	if text := w.Reason.String(); text != "" {
		return text
	}
	raw, err := bson.MarshalExtJSON(w, false, false)
	if err != nil {
		return fmt.Sprintf("%+v", w)
	}
	return string(raw)
}

// Equal reports whether two warns denote the same record.
func (w Warn) Equal(other Warn) bool {
	if w.ID != "" && other.ID != "" {
		return w.ID == other.ID
	}
	return w.ID == other.ID && w.Date.Equal(other.Date) && w.Reason.Equal(other.Reason)
}

// IsWarnActive reports whether w has not expired at now. A non-positive
// expireAfter disables expiry; undated warns never expire.
func IsWarnActive(w Warn, now time.Time, expireAfter time.Duration) bool {
	if expireAfter <= 0 || !w.HasDate() {
		return true
	}
	return w.Date.Add(expireAfter).After(now)
}

// ActiveWarns filters warns keeping their original order.
func ActiveWarns(warns []Warn, now time.Time, expireAfter time.Duration) []Warn {
	active := make([]Warn, 0, len(warns))
	for _, w := range warns {
		if IsWarnActive(w, now, expireAfter) {
			active = append(active, w)
		}
	}
	return active
}

// RemoveWarn returns a copy of warns without the first element equal to
// target. The boolean is false when nothing matched.
func RemoveWarn(warns []Warn, target Warn) ([]Warn, bool) {
	for i, w := range warns {
		if w.Equal(target) {
			out := make([]Warn, 0, len(warns)-1)
			out = append(out, warns[:i]...)
			return append(out, warns[i+1:]...), true
		}
	}
	return warns, false
}

// WarnReason is the reason attached to a warn. Historically some records
// stored something other than a string here; those values are kept verbatim
// so that re-saving a user never rewrites them.
type WarnReason struct {
	text   string
	legacy bson.RawValue
}

// TextReason wraps a plain string reason.
func TextReason(s string) WarnReason {
	return WarnReason{text: s}
}

// IsLegacy reports whether the stored value was not a string.
func (r WarnReason) IsLegacy() bool {
	return r.legacy.Type != 0
}

// String returns the reason text, or the raw form of a legacy value.
func (r WarnReason) String() string {
	if r.IsLegacy() {
		if r.legacy.Type == bsontype.Null || r.legacy.Type == bsontype.Undefined {
			return ""
		}
		return r.legacy.String()
	}
	return r.text
}

// Equal compares two reasons by value.
func (r WarnReason) Equal(other WarnReason) bool {
	if r.IsLegacy() != other.IsLegacy() {
		return false
	}
	if r.IsLegacy() {
		return r.legacy.Type == other.legacy.Type && bytes.Equal(r.legacy.Value, other.legacy.Value)
	}
	return r.text == other.text
}

// MarshalBSONValue implements bson.ValueMarshaler.
func (r WarnReason) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if r.IsLegacy() {
		return r.legacy.Type, r.legacy.Value, nil
	}
	return bson.MarshalValue(r.text)
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler.
func (r *WarnReason) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: append([]byte(nil), data...)}
	if s, ok := raw.StringValueOK(); ok {
		*r = WarnReason{text: s}
		return nil
	}
	if err := raw.Validate(); err != nil {
		return fmt.Errorf("invalid warn reason: %w", err)
	}
	*r = WarnReason{legacy: raw}
	return nil
}

// MarshalJSON renders the reason as a JSON string.
func (r WarnReason) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}
