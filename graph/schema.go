package graph

import (
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"sort"
)

// Reducer merges a node's update for a single field into the current value.
// Fields without a reducer are simply overwritten, last writer wins.
type Reducer func(current, update any) (any, error)

// Schema declares the fixed set of state fields for a graph, each with a
// default value and an optional reducer. Every state snapshot produced by the
// engine contains every declared field; updates touching undeclared fields
// are rejected.
type Schema struct {
	fields map[string]schemaField
	names  []string
}

type schemaField struct {
	def     any
	reducer Reducer
}

// NewSchema creates an empty schema. Chain AddField / AddReducedField to
// declare the state shape.
func NewSchema() *Schema {
	return &Schema{fields: make(map[string]schemaField)}
}

// AddField declares a field with a default value and overwrite semantics.
func (s *Schema) AddField(name string, def any) *Schema {
	if _, ok := s.fields[name]; !ok {
		s.names = append(s.names, name)
	}
	s.fields[name] = schemaField{def: def}
	return s
}

// AddReducedField declares a field whose updates are merged by the given
// reducer instead of overwriting the current value.
func (s *Schema) AddReducedField(name string, def any, r Reducer) *Schema {
	if _, ok := s.fields[name]; !ok {
		s.names = append(s.names, name)
	}
	s.fields[name] = schemaField{def: def, reducer: r}
	return s
}

// Fields returns the declared field names in declaration order.
func (s *Schema) Fields() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Has reports whether the field is declared.
func (s *Schema) Has(name string) bool {
	_, ok := s.fields[name]
	return ok
}

// HasReducer reports whether the field merges through a reducer.
func (s *Schema) HasReducer(name string) bool {
	f, ok := s.fields[name]
	return ok && f.reducer != nil
}

// Init returns a fresh state with every declared field set to its default.
func (s *Schema) Init() State {
	state := make(State, len(s.fields))
	for name, f := range s.fields {
		state[name] = f.def
	}
	return state
}

// Revive coerces a state loaded from a serialized checkpoint back to the
// declared field types. JSON-backed stores hand numbers back as float64 and
// typed slices as []any; any value whose type differs from the type of the
// field's non-nil default is round-tripped through JSON into that type.
// Undeclared fields, nil values, and values that fail to coerce pass through
// as loaded.
func (s *Schema) Revive(state State) State {
	if state == nil {
		return nil
	}
	out := make(State, len(state))
	for name, value := range state {
		out[name] = s.reviveField(name, value)
	}
	return out
}

func (s *Schema) reviveField(name string, value any) any {
	f, ok := s.fields[name]
	if !ok || value == nil || f.def == nil {
		return value
	}
	want := reflect.TypeOf(f.def)
	if reflect.TypeOf(value) == want {
		return value
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return value
	}
	target := reflect.New(want)
	if err := json.Unmarshal(raw, target.Interface()); err != nil {
		return value
	}
	return target.Elem().Interface()
}

// Update merges a partial update into the current state and returns the new
// state. The current state is not mutated. Fields absent from the update keep
// their current value; declared fields missing from both get their default.
// Update keys are applied in sorted order so reducer application is
// deterministic.
func (s *Schema) Update(current, update State) (State, error) {
	next := make(State, len(s.fields))
	for name, f := range s.fields {
		next[name] = f.def
	}
	maps.Copy(next, current)

	keys := make([]string, 0, len(update))
	for k := range update {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		f, ok := s.fields[k]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUndeclaredField, k)
		}
		if f.reducer == nil {
			next[k] = update[k]
			continue
		}
		merged, err := f.reducer(next[k], update[k])
		if err != nil {
			return nil, fmt.Errorf("reduce field %s: %w", k, err)
		}
		next[k] = merged
	}

	return next, nil
}

// OverwriteReducer replaces the current value with the update. Identical to a
// field declared without a reducer; useful for making the policy explicit.
func OverwriteReducer(current, update any) (any, error) {
	return update, nil
}

// AppendReducer appends the update to the current slice. A slice update is
// concatenated element-wise; a scalar update is appended as a single element.
func AppendReducer(current, update any) (any, error) {
	if update == nil {
		return current, nil
	}

	updVal := reflect.ValueOf(update)
	if current == nil {
		if updVal.Kind() == reflect.Slice {
			return update, nil
		}
		slice := reflect.MakeSlice(reflect.SliceOf(updVal.Type()), 0, 1)
		return reflect.Append(slice, updVal).Interface(), nil
	}

	currVal := reflect.ValueOf(current)
	if currVal.Kind() != reflect.Slice {
		return nil, fmt.Errorf("current value is %T, not a slice", current)
	}

	if updVal.Kind() != reflect.Slice {
		if currVal.Type().Elem() != updVal.Type() && currVal.Type().Elem().Kind() != reflect.Interface {
			return nil, fmt.Errorf("cannot append %T to %T", update, current)
		}
		return reflect.Append(currVal, updVal).Interface(), nil
	}

	if currVal.Type().Elem() == updVal.Type().Elem() {
		return reflect.AppendSlice(currVal, updVal).Interface(), nil
	}

	// Element types differ; fall back to []any.
	out := make([]any, 0, currVal.Len()+updVal.Len())
	for i := 0; i < currVal.Len(); i++ {
		out = append(out, currVal.Index(i).Interface())
	}
	for i := 0; i < updVal.Len(); i++ {
		out = append(out, updVal.Index(i).Interface())
	}
	return out, nil
}
