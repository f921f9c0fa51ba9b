// Package domain contains pure, dependency-free domain models and types
// for computing and evaluating medal boundaries.
package domain

import (
	"fmt"
	"maps"
	"reflect"
	"time"
)

// Key represents a type-safe generic key for accessing values in State.
// The type parameter T ensures compile-time type safety when getting and
// setting values, eliminating the need for runtime type assertions.
type Key[T any] struct{ name string }

// NewKey creates a new Key with the specified name and type.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// Name returns the key's name.
func (k Key[T]) Name() string { return k.name }

// Predefined state keys used while a rule runs over an instance.
var (
	// KeyStats stores the cumulative score statistics of the instance.
	KeyStats = Key[CumulativeStats]{"stats"}

	// KeyGoal stores the goal proportions of the award tiers.
	KeyGoal = Key[Goal]{"goal"}

	// KeyBoundaries stores the boundaries resolved so far. Units read it,
	// fill in the positions they are responsible for and write it back.
	KeyBoundaries = Key[Boundaries]{"boundaries"}

	// KeyRuleID stores the identifier of the rule being applied.
	KeyRuleID = Key[string]{"execution.rule_id"}

	// KeyCompetition stores the competition name of the instance.
	KeyCompetition = Key[string]{"execution.competition"}

	// KeyEventID stores the event identifier of the instance.
	KeyEventID = Key[int]{"execution.event_id"}
)

// deepCopyValue creates a deep copy of a value to ensure true immutability.
// It handles slices, maps, and other reference types that would otherwise
// allow external modification of State data.
func deepCopyValue(value any) any {
	if value == nil {
		return nil
	}

	// time.Time is immutable and can be returned directly.
	if val, ok := value.(time.Time); ok {
		return val
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Slice:
		if v.IsNil() {
			return value
		}
		newSlice := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			newSlice.Index(i).Set(reflect.ValueOf(deepCopyValue(v.Index(i).Interface())))
		}
		return newSlice.Interface()

	case reflect.Map:
		newMap := reflect.MakeMap(v.Type())
		for _, key := range v.MapKeys() {
			copiedKey := deepCopyValue(key.Interface())
			copiedValue := deepCopyValue(v.MapIndex(key).Interface())
			newMap.SetMapIndex(reflect.ValueOf(copiedKey), reflect.ValueOf(copiedValue))
		}
		return newMap.Interface()

	case reflect.Ptr:
		if v.IsNil() {
			return v.Interface()
		}
		newPtr := reflect.New(v.Elem().Type())
		newPtr.Elem().Set(reflect.ValueOf(deepCopyValue(v.Elem().Interface())))
		return newPtr.Interface()

	default:
		// Primitive types are returned as-is since they are copied by value.
		return value
	}
}

// State represents an immutable collection of data that flows through a
// rule's units. It uses copy-on-write semantics so a unit can never change
// the state seen by another.
type State struct {
	data map[string]any
}

// NewState creates a new empty State.
func NewState() State {
	return State{
		data: make(map[string]any),
	}
}

// Get retrieves a value from the State with compile-time type safety.
// It returns the value and a boolean indicating whether the key exists
// and contains a value of the correct type. The returned value is a deep
// copy to maintain immutability.
//
// Example:
//
//	stats, ok := Get(state, KeyStats)
//	if !ok {
//	    // handle missing value
//	}
func Get[T any](s State, key Key[T]) (T, bool) {
	var zero T
	value, exists := s.data[key.name]
	if !exists {
		return zero, false
	}

	copied := deepCopyValue(value)
	val, ok := copied.(T)
	return val, ok
}

// MustGet is like Get but reports a missing key as a *StateError.
func MustGet[T any](s State, key Key[T]) (T, error) {
	val, ok := Get(s, key)
	if !ok {
		return val, NewStateError(key.name, "Get", ErrKeyNotFound)
	}
	return val, nil
}

// With creates a new State with the specified key-value pair added or
// updated, leaving the original unchanged.
//
// Example:
//
//	newState := With(state, KeyGoal, Goal{1, 2, 3, 6})
func With[T any](s State, key Key[T], value T) State {
	newData := maps.Clone(s.data)
	if newData == nil {
		newData = make(map[string]any)
	}
	newData[key.name] = deepCopyValue(value)
	return State{data: newData}
}

// WithMultiple creates a new State with multiple key-value pairs added
// or updated in a single clone.
func (s State) WithMultiple(updates map[string]any) State {
	newData := maps.Clone(s.data)
	if newData == nil {
		newData = make(map[string]any)
	}
	for k, v := range updates {
		newData[k] = deepCopyValue(v)
	}
	return State{data: newData}
}

// Keys returns all keys present in the State.
func (s State) Keys() []string {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}

// String returns a string representation of the State for debugging purposes.
func (s State) String() string {
	return fmt.Sprintf("State%v", s.data)
}

// NewInstanceState seeds a State for applying a rule to an instance: the
// cumulative statistics, the goal, and a boundary vector in which only the
// contestant total is known.
func NewInstanceState(ruleID string, in Instance, goal Goal) State {
	return NewState().WithMultiple(map[string]any{
		KeyStats.name:       in.Stats,
		KeyGoal.name:        goal,
		KeyBoundaries.name:  NewBoundaries(goal, in.Stats.Total()),
		KeyRuleID.name:      ruleID,
		KeyCompetition.name: in.Competition,
		KeyEventID.name:     in.EventID,
	})
}
