// Package entrylist converts alarm entries to and from the [[hour, minute], ...]
// list representation shared by the alarms file and the control API.
package entrylist

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/flipclock/internal/domain/alarm"
)

// pairLength is the number of values in one [hour, minute] pair.
const pairLength = 2

// ErrMalformed is returned when the list does not hold valid [hour, minute] pairs.
var ErrMalformed = errors.New("malformed alarm list")

// ToProto converts entries to a list of [hour, minute] number pairs.
func ToProto(entries []alarm.Entry) *structpb.ListValue {
	values := make([]*structpb.Value, 0, len(entries))
	for _, e := range entries {
		values = append(values, structpb.NewListValue(&structpb.ListValue{
			Values: []*structpb.Value{
				structpb.NewNumberValue(float64(e.Hour)),
				structpb.NewNumberValue(float64(e.Minute)),
			},
		}))
	}

	return &structpb.ListValue{Values: values}
}

// FromProto converts a list of [hour, minute] pairs into entries.
// Every pair must hold two integral numbers in range.
func FromProto(list *structpb.ListValue) ([]alarm.Entry, error) {
	entries := make([]alarm.Entry, 0, len(list.GetValues()))

	for i, value := range list.GetValues() {
		pair := value.GetListValue()
		if pair == nil || len(pair.GetValues()) != pairLength {
			return nil, fmt.Errorf("%w: item %d is not a pair", ErrMalformed, i)
		}

		hour, err := integral(pair.GetValues()[0])
		if err != nil {
			return nil, fmt.Errorf("item %d hour: %w", i, err)
		}

		minute, err := integral(pair.GetValues()[1])
		if err != nil {
			return nil, fmt.Errorf("item %d minute: %w", i, err)
		}

		entry := alarm.Entry{Hour: hour, Minute: minute}
		if err = entry.Validate(); err != nil {
			return nil, fmt.Errorf("%w: item %d: %w", ErrMalformed, i, err)
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// Marshal encodes entries as a JSON array of pairs.
func Marshal(entries []alarm.Entry) ([]byte, error) {
	data, err := protojson.Marshal(ToProto(entries))
	if err != nil {
		return nil, fmt.Errorf("encode alarm list: %w", err)
	}

	return data, nil
}

// Unmarshal decodes a JSON array of pairs.
func Unmarshal(data []byte) ([]alarm.Entry, error) {
	var list structpb.ListValue
	if err := protojson.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	return FromProto(&list)
}

func integral(v *structpb.Value) (int, error) {
	number, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%w: not a number", ErrMalformed)
	}

	if number.NumberValue != math.Trunc(number.NumberValue) {
		return 0, fmt.Errorf("%w: %v is not an integer", ErrMalformed, number.NumberValue)
	}

	return int(number.NumberValue), nil
}
